package imagepipe

import (
	"testing"

	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/pixelfmt"
)

type fakeBuffer struct{}

func (b *fakeBuffer) AsBufferView() pixelfmt.BufferView { return nil }
func (b *fakeBuffer) AsTexture(d pixelfmt.TextureDescriptor, rowBytes uint32) (pixelfmt.Texture, bool) {
	return nil, false
}
func (b *fakeBuffer) Release() {}

type fakeAllocator struct{}

func (a *fakeAllocator) CreateBuffer(d pixelfmt.BufferDescriptor) (pixelfmt.DeviceBuffer, error) {
	return &fakeBuffer{}, nil
}
func (a *fakeAllocator) CreateTexture(d pixelfmt.TextureDescriptor) (pixelfmt.Texture, error) {
	return nil, nil
}
func (a *fakeAllocator) MinBytesPerRow(f pixelfmt.Format) uint32 { return 0 }
func (a *fakeAllocator) MaxTextureSize() geom.Size               { return geom.Size{Width: 4096, Height: 4096} }

// uncompressedDescriptor is a fake Descriptor serving raw RGBA8 pixels.
type uncompressedDescriptor struct {
	info     ImageInfo
	rowBytes int
	data     []byte
}

func (d *uncompressedDescriptor) ImageInfo() ImageInfo      { return d.info }
func (d *uncompressedDescriptor) IsCompressed() bool        { return false }
func (d *uncompressedDescriptor) RowBytes() int             { return d.rowBytes }
func (d *uncompressedDescriptor) Data() []byte              { return d.data }
func (d *uncompressedDescriptor) GetPixels(pixmap []byte) bool { return false }
func (d *uncompressedDescriptor) GetScaledDimensions(factor float32) (uint32, uint32) {
	w := uint32(float32(d.info.Width) * factor)
	h := uint32(float32(d.info.Height) * factor)
	return w, h
}

func newUncompressed(width, height uint32, colorType SourceColorType) *uncompressedDescriptor {
	bpp := 4
	switch colorType {
	case SourceRGBAFloat16:
		bpp = 8
	case SourceRGBAFloat32:
		bpp = 16
	}
	rowBytes := int(width) * bpp
	data := make([]byte, rowBytes*int(height))
	for i := range data {
		data[i] = 0xFF
	}
	return &uncompressedDescriptor{
		info:     ImageInfo{Width: width, Height: height, ColorType: colorType, AlphaType: AlphaOpaque, ColorSpace: SRGB},
		rowBytes: rowBytes,
		data:     data,
	}
}

// compressedDescriptor is a fake Descriptor simulating a codec that decodes
// directly at the requested scaled dimensions.
type compressedDescriptor struct {
	info ImageInfo
}

func (d *compressedDescriptor) ImageInfo() ImageInfo { return d.info }
func (d *compressedDescriptor) IsCompressed() bool   { return true }
func (d *compressedDescriptor) RowBytes() int        { return 0 }
func (d *compressedDescriptor) Data() []byte         { return nil }
func (d *compressedDescriptor) GetPixels(pixmap []byte) bool {
	for i := range pixmap {
		pixmap[i] = 0x80
	}
	return true
}
func (d *compressedDescriptor) GetScaledDimensions(factor float32) (uint32, uint32) {
	w := uint32(float32(d.info.Width) * factor)
	if w < 500 {
		w = 500
	}
	h := uint32(float32(d.info.Height) * factor)
	if h < 500 {
		h = 500
	}
	return w, h
}

func TestDecompressUncompressedExactSizeNoResample(t *testing.T) {
	d := newUncompressed(8, 8, SourceRGBA8)
	result, err := Decompress(d, geom.Size{Width: 8, Height: 8}, geom.Size{Width: 4096, Height: 4096}, false, 0, &fakeAllocator{})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if result.Info.Width != 8 || result.Info.Height != 8 {
		t.Fatalf("Info size = %dx%d, want 8x8", result.Info.Width, result.Info.Height)
	}
	if !result.Bitmap.IsImmutable() {
		t.Fatalf("expected the uncompressed decode path to mark its bitmap immutable")
	}
}

func TestDecompressF32SourceDegradesToF16WithoutWideGamut(t *testing.T) {
	d := newUncompressed(8, 8, SourceRGBAFloat32)
	result, err := Decompress(d, geom.Size{Width: 8, Height: 8}, geom.Size{Width: 4096, Height: 4096}, false, 0, &fakeAllocator{})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if result.Bitmap.Format != pixelfmt.FormatRGBAFloat16 {
		t.Fatalf("Format = %v, want RGBAFloat16", result.Bitmap.Format)
	}
}

func TestDecompressZeroTargetClampsToMaxTextureSize(t *testing.T) {
	d := newUncompressed(8, 8, SourceRGBA8)
	max := geom.Size{Width: 16, Height: 16}
	result, err := Decompress(d, geom.Size{}, max, false, 0, &fakeAllocator{})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if result.Info.Width != max.Width || result.Info.Height != max.Height {
		t.Fatalf("Info size = %dx%d, want %dx%d", result.Info.Width, result.Info.Height, max.Width, max.Height)
	}
}

func TestDecompressCompressedReachesTargetSize(t *testing.T) {
	d := &compressedDescriptor{info: ImageInfo{Width: 2000, Height: 2000, ColorType: SourceRGBA8, AlphaType: AlphaOpaque, ColorSpace: SRGB}}
	result, err := Decompress(d, geom.Size{Width: 500, Height: 500}, geom.Size{Width: 4096, Height: 4096}, false, 0, &fakeAllocator{})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if result.Info.Width != 500 || result.Info.Height != 500 {
		t.Fatalf("Info size = %dx%d, want 500x500", result.Info.Width, result.Info.Height)
	}
	if !result.Bitmap.IsImmutable() {
		t.Fatalf("expected the returned bitmap to be marked immutable")
	}
}

func TestDecompressWideGamutOpaquePicksBGR101010XR(t *testing.T) {
	d := newUncompressed(4, 4, SourceRGBA8)
	d.info.ColorSpace = DisplayP3
	result, err := Decompress(d, geom.Size{Width: 4, Height: 4}, geom.Size{Width: 4096, Height: 4096}, true, 0, &fakeAllocator{})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if result.Bitmap.Format != pixelfmt.FormatBGR101010XR {
		t.Fatalf("Format = %v, want BGR101010XR", result.Bitmap.Format)
	}
}

func TestColorSpaceGamutAreaOrdering(t *testing.T) {
	if SRGB.GamutArea() >= DisplayP3.GamutArea() {
		t.Fatalf("expected DisplayP3's gamut area to exceed sRGB's")
	}
	if SRGB.GamutArea() < 0.09 || SRGB.GamutArea() > 0.1 {
		t.Fatalf("sRGB gamut area = %v, want close to 0.0982", SRGB.GamutArea())
	}
}

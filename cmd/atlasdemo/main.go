// Command atlasdemo exercises the atlas builder and image decoder against
// an in-memory software allocator, so the pipeline can be driven without a
// real GPU context. It is a thin external driver, not part of the core.
package main

import (
	"flag"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/atlaspipe/atlas"
	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/glyphset"
	"github.com/gogpu/atlaspipe/imagepipe"
	"github.com/gogpu/atlaspipe/pipeconfig"
	"github.com/gogpu/atlaspipe/pipelog"
	"github.com/gogpu/atlaspipe/pixelfmt"
	"github.com/gogpu/atlaspipe/rasterize"
)

var log = pipelog.For("atlasdemo")

func main() {
	var (
		glyphCount = flag.Int("glyphs", 96, "number of synthetic glyphs to pack")
		configPath = flag.String("config", "", "optional TOML pipeline config")
	)
	flag.Parse()

	config := pipeconfig.Defaults()
	if *configPath != "" {
		loaded, err := pipeconfig.Load(*configPath)
		if err != nil {
			log.Fatal("load config", "error", err)
		}
		config = loaded
	}

	allocator := newSoftwareAllocator()
	gctx := &softwareContext{allocator: allocator}
	caps := softwareCapabilities{}
	backend := &countingBackend{}

	builder := atlas.NewBuilder(gctx, caps, backend, nil, config)
	ctx := atlas.NewContext()

	frame := syntheticFrame(*glyphCount)
	it := glyphset.NewSliceIterator([]*glyphset.TextFrame{frame})

	built, err := builder.Build(atlas.AlphaBitmap, ctx, it)
	if err != nil {
		log.Fatal("build atlas", "error", err)
	}
	fmt.Printf("atlas: type=%s size=%v glyphs=%d draws=%d\n", built.Type, built.Size, built.Len(), backend.draws.Load())

	result, err := imagepipe.Decompress(&syntheticDescriptor{width: 8, height: 8}, geom.Size{Width: 4, Height: 4}, geom.Size{Width: 4096, Height: 4096}, false, 0, allocator)
	if err != nil {
		log.Fatal("decompress", "error", err)
	}
	fmt.Printf("decoded image: %dx%d format=%s\n", result.Info.Width, result.Info.Height, result.Bitmap.Format)
}

func syntheticFrame(count int) *glyphset.TextFrame {
	font := glyphset.NewFont(1, 24, glyphset.Metrics{Scale: 1})
	positions := make([]glyphset.GlyphPosition, count)
	for i := range positions {
		positions[i] = glyphset.GlyphPosition{
			Glyph: glyphset.Glyph{Index: uint32(i), Bounds: geom.RectF{W: 10, H: 12}},
		}
	}
	return &glyphset.TextFrame{Runs: []glyphset.TextRun{{Font: font, Positions: positions}}}
}

// countingBackend is a FontBackend that counts draws without touching the
// canvas, standing in for textface.Backend, which needs a loaded font face.
type countingBackend struct {
	draws atomic.Int64
}

func (b *countingBackend) DrawGlyph(canvas rasterize.Canvas, glyphIndex uint32, dest, origin geom.Point, transform rasterize.Transform, paint rasterize.Paint) error {
	b.draws.Add(1)
	return nil
}

// syntheticDescriptor is a minimal imagepipe.Descriptor serving a flat gray
// uncompressed image, for demo purposes only.
type syntheticDescriptor struct {
	width, height uint32
}

func (d *syntheticDescriptor) ImageInfo() imagepipe.ImageInfo {
	return imagepipe.ImageInfo{Width: d.width, Height: d.height, ColorType: imagepipe.SourceRGBA8, AlphaType: imagepipe.AlphaOpaque, ColorSpace: imagepipe.SRGB}
}
func (d *syntheticDescriptor) IsCompressed() bool { return false }
func (d *syntheticDescriptor) RowBytes() int      { return int(d.width) * 4 }
func (d *syntheticDescriptor) Data() []byte {
	data := make([]byte, d.RowBytes()*int(d.height))
	for i := range data {
		data[i] = 0x7F
	}
	return data
}
func (d *syntheticDescriptor) GetPixels(pixmap []byte) bool { return true }
func (d *syntheticDescriptor) GetScaledDimensions(factor float32) (uint32, uint32) {
	return d.width, d.height
}

// --- software GPU abstraction, for driving the pipeline with no real device ---

type softwareBuffer struct {
	data []byte
}

func (b *softwareBuffer) AsBufferView() pixelfmt.BufferView { return b }
func (b *softwareBuffer) AsTexture(descriptor pixelfmt.TextureDescriptor, rowBytes uint32) (pixelfmt.Texture, bool) {
	return &softwareTexture{descriptor: descriptor, contents: b.data}, true
}
func (b *softwareBuffer) Release() {}

type softwareTexture struct {
	descriptor pixelfmt.TextureDescriptor
	label      string
	contents   []byte
}

func (t *softwareTexture) SetContents(m pixelfmt.Mapping) bool {
	t.contents = append([]byte(nil), m.Bytes...)
	if m.Release != nil {
		m.Release()
	}
	return true
}
func (t *softwareTexture) SetLabel(label string)                 { t.label = label }
func (t *softwareTexture) Descriptor() pixelfmt.TextureDescriptor { return t.descriptor }
func (t *softwareTexture) IsValid() bool                          { return true }
func (t *softwareTexture) Release()                               {}

type softwareAllocator struct {
	mu sync.Mutex
}

func newSoftwareAllocator() *softwareAllocator { return &softwareAllocator{} }

func (a *softwareAllocator) CreateBuffer(descriptor pixelfmt.BufferDescriptor) (pixelfmt.DeviceBuffer, error) {
	return &softwareBuffer{data: make([]byte, descriptor.Size)}, nil
}
func (a *softwareAllocator) CreateTexture(descriptor pixelfmt.TextureDescriptor) (pixelfmt.Texture, error) {
	return &softwareTexture{descriptor: descriptor}, nil
}
func (a *softwareAllocator) MinBytesPerRow(format pixelfmt.Format) uint32 { return 0 }
func (a *softwareAllocator) MaxTextureSize() geom.Size                   { return geom.Size{Width: 8192, Height: 8192} }

type softwareCommandBuffer struct{}

func (c *softwareCommandBuffer) CreateBlitPass() (pixelfmt.BlitPass, error) { return &softwareBlitPass{}, nil }
func (c *softwareCommandBuffer) Submit() bool                               { return true }
func (c *softwareCommandBuffer) WaitUntilScheduled()                        {}

type softwareBlitPass struct{}

func (p *softwareBlitPass) AddCopy(src pixelfmt.BufferView, dst pixelfmt.Texture) {}
func (p *softwareBlitPass) GenerateMipmap(tex pixelfmt.Texture)                   {}
func (p *softwareBlitPass) Encode(allocator pixelfmt.Allocator) bool              { return true }
func (p *softwareBlitPass) SetLabel(label string)                                 {}

type softwareContext struct {
	allocator *softwareAllocator
}

func (c *softwareContext) CreateCommandBuffer() (pixelfmt.CommandBuffer, error) {
	return &softwareCommandBuffer{}, nil
}
func (c *softwareContext) ResourceAllocator() pixelfmt.Allocator { return c.allocator }

type softwareCapabilities struct{}

func (softwareCapabilities) SupportsSharedDeviceBufferTextureMemory() bool { return true }
func (softwareCapabilities) SupportsWideGamut() bool                      { return false }

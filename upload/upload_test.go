package upload

import (
	"testing"

	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/hostalloc"
	"github.com/gogpu/atlaspipe/pixelfmt"
)

type fakeTexture struct {
	descriptor pixelfmt.TextureDescriptor
	label      string
	contents   []byte
	released   bool
	failSet    bool
}

func (t *fakeTexture) SetContents(m pixelfmt.Mapping) bool {
	if t.failSet {
		return false
	}
	t.contents = m.Bytes
	if m.Release != nil {
		m.Release()
	}
	return true
}
func (t *fakeTexture) SetLabel(label string)               { t.label = label }
func (t *fakeTexture) Descriptor() pixelfmt.TextureDescriptor { return t.descriptor }
func (t *fakeTexture) IsValid() bool                        { return !t.released }
func (t *fakeTexture) Release()                             { t.released = true }

type fakeBufferView struct{}

type fakeBuffer struct {
	aliasable bool
	view      fakeBufferView
}

func (b *fakeBuffer) AsBufferView() pixelfmt.BufferView { return b.view }
func (b *fakeBuffer) AsTexture(descriptor pixelfmt.TextureDescriptor, rowBytes uint32) (pixelfmt.Texture, bool) {
	if !b.aliasable {
		return nil, false
	}
	return &fakeTexture{descriptor: descriptor}, true
}
func (b *fakeBuffer) Release() {}

type fakeAllocator struct {
	createErr   error
	minBytesRow uint32
}

func (a *fakeAllocator) CreateBuffer(d pixelfmt.BufferDescriptor) (pixelfmt.DeviceBuffer, error) {
	return &fakeBuffer{}, nil
}
func (a *fakeAllocator) CreateTexture(d pixelfmt.TextureDescriptor) (pixelfmt.Texture, error) {
	if a.createErr != nil {
		return nil, a.createErr
	}
	return &fakeTexture{descriptor: d}, nil
}
func (a *fakeAllocator) MinBytesPerRow(f pixelfmt.Format) uint32 { return a.minBytesRow }
func (a *fakeAllocator) MaxTextureSize() geom.Size               { return geom.Size{Width: 8192, Height: 8192} }

type fakeBlitPass struct {
	copies  int
	mipped  bool
	label   string
	failEnc bool
}

func (p *fakeBlitPass) AddCopy(src pixelfmt.BufferView, dst pixelfmt.Texture) { p.copies++ }
func (p *fakeBlitPass) GenerateMipmap(tex pixelfmt.Texture)                   { p.mipped = true }
func (p *fakeBlitPass) Encode(allocator pixelfmt.Allocator) bool              { return !p.failEnc }
func (p *fakeBlitPass) SetLabel(label string)                                 { p.label = label }

type fakeCommandBuffer struct {
	blit       *fakeBlitPass
	failSubmit bool
	scheduled  bool
}

func (c *fakeCommandBuffer) CreateBlitPass() (pixelfmt.BlitPass, error) {
	c.blit = &fakeBlitPass{}
	return c.blit, nil
}
func (c *fakeCommandBuffer) Submit() bool        { return !c.failSubmit }
func (c *fakeCommandBuffer) WaitUntilScheduled() { c.scheduled = true }

type fakeContext struct {
	allocator *fakeAllocator
}

func (c *fakeContext) CreateCommandBuffer() (pixelfmt.CommandBuffer, error) {
	return &fakeCommandBuffer{}, nil
}
func (c *fakeContext) ResourceAllocator() pixelfmt.Allocator { return c.allocator }

type fakeCaps struct {
	shared bool
}

func (c fakeCaps) SupportsSharedDeviceBufferTextureMemory() bool { return c.shared }
func (c fakeCaps) SupportsWideGamut() bool                      { return false }

func testBitmap(t *testing.T, allocator pixelfmt.Allocator) *hostalloc.Bitmap {
	t.Helper()
	b, err := hostalloc.New(allocator, geom.Size{Width: 4, Height: 4}, pixelfmt.FormatA8)
	if err != nil {
		t.Fatalf("hostalloc.New: %v", err)
	}
	return b
}

func TestToSharedAliasesWhenSupported(t *testing.T) {
	allocator := &fakeAllocator{}
	bitmap := testBitmap(t, allocator)
	caps := fakeCaps{shared: true}
	gctx := &fakeContext{allocator: allocator}

	tex, err := ToShared(gctx, caps, bitmap, pixelfmt.TextureDescriptor{Label: "GlyphAtlas"}, false)
	if err != nil {
		t.Fatalf("ToShared: %v", err)
	}
	ft := tex.(*fakeTexture)
	if ft.label != "GlyphAtlas" {
		t.Fatalf("label = %q, want GlyphAtlas", ft.label)
	}
	if ft.contents != nil {
		t.Fatalf("expected no SetContents call on the aliased path")
	}
}

func TestToSharedFallsBackToCopyWhenUnsupported(t *testing.T) {
	allocator := &fakeAllocator{}
	bitmap := testBitmap(t, allocator)
	caps := fakeCaps{shared: false}
	gctx := &fakeContext{allocator: allocator}

	tex, err := ToShared(gctx, caps, bitmap, pixelfmt.TextureDescriptor{Label: "GlyphAtlas"}, false)
	if err != nil {
		t.Fatalf("ToShared: %v", err)
	}
	ft := tex.(*fakeTexture)
	if ft.contents == nil {
		t.Fatalf("expected SetContents to be called on the copy path")
	}
}

func TestToPrivateEncodesBlitCopy(t *testing.T) {
	allocator := &fakeAllocator{}
	gctx := &fakeContext{allocator: allocator}
	buf := &fakeBuffer{}

	tex, err := ToPrivate(gctx, buf, pixelfmt.TextureDescriptor{Label: "Image", MipCount: 4})
	if err != nil {
		t.Fatalf("ToPrivate: %v", err)
	}
	if tex.(*fakeTexture).label != "Image" {
		t.Fatalf("label not set on private texture")
	}
}

func TestToSharedSurfacesCreateTextureFailure(t *testing.T) {
	allocator := &fakeAllocator{}
	bitmap := testBitmap(t, allocator)
	caps := fakeCaps{shared: false}
	gctx := &fakeContext{allocator: allocator}

	origCreate := allocator.createErr
	_ = origCreate

	// Exercise the create-texture failure path on the copy fallback.
	allocator.createErr = errBoom
	if _, err := ToShared(gctx, caps, bitmap, pixelfmt.TextureDescriptor{}, false); err == nil {
		t.Fatalf("expected error when CreateTexture fails")
	}
}

var errBoom = &boomError{}

type boomError struct{}

func (e *boomError) Error() string { return "boom" }

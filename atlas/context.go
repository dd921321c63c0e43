package atlas

import (
	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/hostalloc"
	"github.com/gogpu/atlaspipe/pack"
)

// Context stores the last-built atlas, its packer, and its bitmap across
// frames (§4.I, §9 "global atlas context"). A Context is process-wide state
// created at renderer init and torn down at shutdown; it is NOT
// thread-safe and must be accessed from a single thread, matching §5's
// "atlas context is NOT thread-safe" rule. There is no internal locking: the
// contract is enforced by convention, not by the type.
//
// Either all three of atlas, packer, and bitmap are nil, or all three
// describe the same atlas generation (§3).
type Context struct {
	atlas  *GlyphAtlas
	packer pack.Packer
	bitmap *hostalloc.Bitmap
}

// NewContext creates an empty atlas context.
func NewContext() *Context {
	return &Context{}
}

// Atlas returns the currently cached atlas, or nil.
func (c *Context) Atlas() *GlyphAtlas { return c.atlas }

// RectPacker returns the packer in sync with the cached atlas's size, or
// nil.
func (c *Context) RectPacker() pack.Packer { return c.packer }

// AtlasSize returns the cached atlas's size, or a zero Size if none is
// cached.
func (c *Context) AtlasSize() geom.Size {
	if c.atlas == nil {
		return geom.Size{}
	}
	return c.atlas.Size
}

// Bitmap returns the host bitmap backing the cached atlas, or nil.
func (c *Context) Bitmap() *hostalloc.Bitmap { return c.bitmap }

// UpdateAtlas replaces the cached atlas. The context keeps no size of its
// own; AtlasSize reads it from the cached atlas.
func (c *Context) UpdateAtlas(a *GlyphAtlas) {
	c.atlas = a
}

// UpdateRectPacker replaces the cached packer.
func (c *Context) UpdateRectPacker(p pack.Packer) {
	c.packer = p
}

// UpdateBitmap replaces the cached bitmap, closing the previous one if it
// differs. Passing the same bitmap back (the incremental-append path,
// where rasterization mutates the existing bitmap in place) is a no-op.
func (c *Context) UpdateBitmap(b *hostalloc.Bitmap) {
	if c.bitmap != nil && c.bitmap != b {
		c.bitmap.Close()
	}
	c.bitmap = b
}

// Close releases the cached bitmap and clears the context, for use at
// renderer shutdown.
func (c *Context) Close() {
	if c.bitmap != nil {
		c.bitmap.Close()
	}
	c.atlas = nil
	c.packer = nil
	c.bitmap = nil
}

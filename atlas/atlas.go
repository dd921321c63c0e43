// Package atlas owns the glyph atlas (§4.H), the process-local atlas
// context that caches it across frames (§4.I), and the builder that
// orchestrates reuse, rebuild, packing, rasterization, and upload (§4.J).
package atlas

import (
	"github.com/google/uuid"

	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/glyphset"
	"github.com/gogpu/atlaspipe/pixelfmt"
)

// Type is the tagged variant of atlas a GlyphAtlas holds (§3).
type Type uint8

const (
	// AlphaBitmap atlases store 8-bit alpha coverage (format A8).
	AlphaBitmap Type = iota

	// ColorBitmap atlases store 32-bit RGBA (format RGBA8).
	ColorBitmap

	// SignedDistanceField atlases store an 8-bit SDF (format A8),
	// post-processed in place by sdf.Transform before upload.
	SignedDistanceField
)

// String names the atlas type, for logging only.
func (t Type) String() string {
	switch t {
	case AlphaBitmap:
		return "AlphaBitmap"
	case ColorBitmap:
		return "ColorBitmap"
	case SignedDistanceField:
		return "SignedDistanceField"
	default:
		return "Unknown"
	}
}

// PixelFormat returns the pixel format implied by t (§4.J step 4: A8 for
// Alpha/SDF, RGBA8 for Color).
func (t Type) PixelFormat() pixelfmt.Format {
	if t == ColorBitmap {
		return pixelfmt.FormatRGBA8
	}
	return pixelfmt.FormatA8
}

type entry struct {
	pair glyphset.FontGlyphPair
	rect geom.RectU
}

// GlyphAtlas owns the packed positions, pixel type, and (once uploaded)
// texture handle for one atlas generation. A GlyphAtlas is immutable from
// the outside once built, except through AddPosition during an incremental
// append (§4.J step 3) and SetTexture after upload; both calls are made
// only by the builder on the single thread that owns the atlas context.
type GlyphAtlas struct {
	// GenerationID identifies this atlas build for log correlation only;
	// no invariant depends on it.
	GenerationID uuid.UUID

	Type Type
	Size geom.Size

	entries map[glyphset.PairKey]entry
	texture pixelfmt.Texture
}

// newAtlas creates an empty atlas of the given type and size.
func newAtlas(t Type, size geom.Size) *GlyphAtlas {
	return &GlyphAtlas{
		GenerationID: uuid.New(),
		Type:         t,
		Size:         size,
		entries:      make(map[glyphset.PairKey]entry),
	}
}

// AddPosition records where pair was packed. On a duplicate key the
// previous rectangle is overwritten; callers (the builder) guarantee keys
// are unique because positions only come from newly-collected glyphs that
// were not already present (§4.H).
func (a *GlyphAtlas) AddPosition(pair glyphset.FontGlyphPair, rect geom.RectU) {
	a.entries[pair.Key()] = entry{pair: pair, rect: rect}
}

// Find returns the packed rectangle for pair, if present.
func (a *GlyphAtlas) Find(pair glyphset.FontGlyphPair) (geom.RectU, bool) {
	e, ok := a.entries[pair.Key()]
	return e.rect, ok
}

// Len returns the number of packed positions.
func (a *GlyphAtlas) Len() int {
	return len(a.entries)
}

// Iterate calls cb for every packed (pair, rect), in unspecified order.
// cb may return false to abort early.
func (a *GlyphAtlas) Iterate(cb func(pair glyphset.FontGlyphPair, rect geom.RectU) bool) {
	for _, e := range a.entries {
		if !cb(e.pair, e.rect) {
			return
		}
	}
}

// SetTexture attaches the uploaded texture handle.
func (a *GlyphAtlas) SetTexture(t pixelfmt.Texture) {
	a.texture = t
}

// Texture returns the atlas's texture handle, or nil before the first
// upload.
func (a *GlyphAtlas) Texture() pixelfmt.Texture {
	return a.texture
}

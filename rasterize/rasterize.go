// Package rasterize draws a single glyph at a sub-bitmap offset using an
// external font backend (§4.F). The font shaper and layout engine are
// external collaborators (§1); this package only issues one draw call per
// glyph against whatever backend implements FontBackend.
package rasterize

import (
	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/glyphset"
)

// Canvas is an opaque target surface supplied by the caller. This package
// never inspects it; it is passed straight through to FontBackend.DrawGlyph.
type Canvas interface{}

// Transform is the uniform scale/skew/embolden applied before drawing,
// taken directly from the font's Metrics (§4.F: "apply a uniform scale
// metrics.scale").
type Transform struct {
	Scale    float32
	ScaleX   float32
	SkewX    float32
	Embolden float32
}

// Paint selects the glyph's fill color. Per §4.F, color atlases paint
// opaque white and alpha/SDF atlases paint opaque black; there is no other
// color choice at this layer.
type Paint struct {
	White bool
}

// FontBackend draws one glyph into a canvas. Implementations are expected
// to reset any incoming transform on the canvas before applying Transform
// and to use anti-aliased edging and slight hinting. DrawGlyph receives only
// the destination rectangle's origin, not its size, and Draw does not clip
// the canvas, so nothing at this layer keeps a glyph inside its packed
// rectangle.
type FontBackend interface {
	DrawGlyph(canvas Canvas, glyphIndex uint32, dest geom.Point, origin geom.Point, transform Transform, paint Paint) error
}

// Draw rasterizes pair into canvas at dest, which must have been obtained
// from the rectangle packer and have the same dimensions as
// ceil(pair.Glyph.Bounds.Size * pair.Font.Metrics().Scale). hasColor
// selects the atlas type being rendered into: true paints opaque white
// (color atlas), false paints opaque black (alpha/SDF atlas).
func Draw(backend FontBackend, canvas Canvas, pair glyphset.FontGlyphPair, dest geom.RectU, hasColor bool) error {
	metrics := pair.Font.Metrics()
	transform := Transform{
		Scale:    metrics.Scale,
		ScaleX:   metrics.ScaleX,
		SkewX:    metrics.SkewX,
		Embolden: metrics.Embolden,
	}
	// Origin places the glyph's unscaled bounding-box top-left at the
	// destination rectangle's origin, once the canvas has been scaled.
	origin := geom.Pt(-pair.Glyph.Bounds.X, -pair.Glyph.Bounds.Y)
	destPoint := geom.Pt(float32(dest.X), float32(dest.Y))

	return backend.DrawGlyph(canvas, pair.Glyph.Index, destPoint, origin, transform, Paint{White: hasColor})
}

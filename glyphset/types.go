// Package glyphset defines the font/glyph/run data model consumed by the
// atlas builder and implements the unique-pair collector (§4.E). The font
// shaper and layout engine that produce TextRuns are external collaborators
// (§1 non-goals); this package only consumes their output.
package glyphset

import "github.com/gogpu/atlaspipe/geom"

// Metrics carries the per-size rendering parameters a font backend reports
// for a given point size.
type Metrics struct {
	PointSize float32
	Scale     float32
	ScaleX    float32
	SkewX     float32
	Embolden  float32
}

// Font is an opaque handle to a sized typeface. Identity (for hashing and
// equality) is the triple (TypefaceID, PointSize bits, embolden bits is
// intentionally excluded: two Fonts with the same typeface and point size
// but different embolden still collide on purpose, matching the source's
// "scaled point size discriminator").
type Font struct {
	TypefaceID uint64
	PointSize  float32
	metrics    Metrics
}

// NewFont builds a Font handle for a typeface at a given point size and
// metrics.
func NewFont(typefaceID uint64, pointSize float32, metrics Metrics) Font {
	return Font{TypefaceID: typefaceID, PointSize: pointSize, metrics: metrics}
}

// Metrics returns the font's rendering metrics.
func (f Font) Metrics() Metrics { return f.metrics }

// key is the hashable identity of a Font for pair deduplication: typeface
// identity plus a scaled point size discriminator. Point size is quantized
// to avoid float equality hazards across repeated frames.
func (f Font) key() uint64 {
	return f.TypefaceID<<16 ^ uint64(uint32(f.PointSize*64))
}

// Glyph is a single glyph index plus its design-space bounding box, prior
// to scaling by the font's metrics.
type Glyph struct {
	Index  uint32
	Bounds geom.RectF
}

// FontGlyphPair is a (font, glyph) key. Equality and hash follow the
// triple (typeface identity, scaled point size discriminator, glyph
// index), per §3.
type FontGlyphPair struct {
	Font  Font
	Glyph Glyph
}

// Key returns a hashable, comparable identity for use as a Go map key.
// Font.metrics is intentionally excluded from the comparable struct so two
// pairs that differ only in embolden still collide, matching Font.key.
func (p FontGlyphPair) Key() PairKey {
	return PairKey{fontKey: p.Font.key(), glyphIndex: p.Glyph.Index}
}

// PairKey is the comparable map key derived from a FontGlyphPair.
type PairKey struct {
	fontKey    uint64
	glyphIndex uint32
}

// GlyphPosition pairs a glyph with where it was placed by the layout
// engine within its run.
type GlyphPosition struct {
	Glyph    Glyph
	X, Y     float32
	HasColor bool
}

// TextRun is an ordered sequence of glyph positions sharing one Font.
type TextRun struct {
	Font      Font
	Positions []GlyphPosition
}

// TextFrame is a finite sequence of TextRuns, produced externally.
type TextFrame struct {
	Runs []TextRun
}

// FrameIterator is a lazy, finite producer of *TextFrame references. Next
// returns nil once exhausted. Implementations are not required to support
// being restarted.
type FrameIterator interface {
	Next() *TextFrame
}

// SliceIterator adapts a pre-built []*TextFrame into a FrameIterator, for
// tests and for callers that already have the whole frame set in memory.
type SliceIterator struct {
	frames []*TextFrame
	pos    int
}

// NewSliceIterator wraps frames as a FrameIterator.
func NewSliceIterator(frames []*TextFrame) *SliceIterator {
	return &SliceIterator{frames: frames}
}

// Next implements FrameIterator.
func (it *SliceIterator) Next() *TextFrame {
	if it.pos >= len(it.frames) {
		return nil
	}
	f := it.frames[it.pos]
	it.pos++
	return f
}

// Package textface adapts a github.com/go-text/typesetting font.Face into a
// rasterize.FontBackend. It uses the Face only for outline extraction
// (Face.GlyphData), never for shaping or layout: turning a run of runes into
// positioned glyph indices is the external collaborator's job (§1), and by
// the time a FontGlyphPair reaches rasterize.Draw that work is already done.
package textface

import (
	"fmt"
	"image"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/vector"

	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/hostalloc"
	"github.com/gogpu/atlaspipe/pipeerr"
	"github.com/gogpu/atlaspipe/pixelfmt"
	"github.com/gogpu/atlaspipe/rasterize"
)

// Backend draws glyph outlines from a single go-text/typesetting Face. One
// Backend serves one typeface; a caller juggling several typefaces keeps one
// Backend per Font.TypefaceID.
type Backend struct {
	Face *gotext.Face
}

// NewBackend wraps face for use as a rasterize.FontBackend.
func NewBackend(face *gotext.Face) *Backend {
	return &Backend{Face: face}
}

// DrawGlyph fills glyphIndex's outline, transformed by transform and placed
// at dest+origin, into canvas, which must be a *hostalloc.Bitmap. Coverage
// is written as raw alpha for FormatA8 canvases, or as an opaque white/black
// fill masked by coverage for FormatRGBA8 canvases, per paint.White.
func (b *Backend) DrawGlyph(canvas rasterize.Canvas, glyphIndex uint32, dest, origin geom.Point, transform rasterize.Transform, paint rasterize.Paint) error {
	bitmap, ok := canvas.(*hostalloc.Bitmap)
	if !ok {
		return fmt.Errorf("textface: %w: canvas is not a *hostalloc.Bitmap", pipeerr.ErrInvalidDescriptor)
	}

	data := b.Face.GlyphData(gotext.GID(glyphIndex))
	outline, ok := data.(gotext.GlyphOutline)
	if !ok {
		return fmt.Errorf("textface: %w: glyph %d has no vector outline", pipeerr.ErrInvalidDescriptor, glyphIndex)
	}

	upem := float32(b.Face.Upem())
	if upem <= 0 {
		upem = 1000
	}
	scale := transform.Scale / upem

	width, height := int(bitmap.Size.Width), int(bitmap.Size.Height)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("textface: %w: empty canvas", pipeerr.ErrInvalidDescriptor)
	}

	raster := vector.NewRasterizer(width, height)
	place := func(p gotext.Point) (float32, float32) {
		x := (p.X+origin.X)*scale + dest.X
		// Font outlines have Y growing up; bitmaps have Y growing down.
		y := (-p.Y+origin.Y)*scale + dest.Y
		return x, y
	}

	for _, seg := range outline.Segments {
		switch seg.Op {
		case gotext.SegmentOpMoveTo:
			x, y := place(seg.Args[0])
			raster.MoveTo(x, y)
		case gotext.SegmentOpLineTo:
			x, y := place(seg.Args[0])
			raster.LineTo(x, y)
		case gotext.SegmentOpQuadTo:
			cx, cy := place(seg.Args[0])
			x, y := place(seg.Args[1])
			raster.QuadTo(cx, cy, x, y)
		case gotext.SegmentOpCubeTo:
			c1x, c1y := place(seg.Args[0])
			c2x, c2y := place(seg.Args[1])
			x, y := place(seg.Args[2])
			raster.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	raster.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return blend(bitmap, mask, paint)
}

// blend composites an alpha coverage mask into bitmap, honoring its pixel
// format and the requested paint color.
func blend(bitmap *hostalloc.Bitmap, mask *image.Alpha, paint rasterize.Paint) error {
	width, height := int(bitmap.Size.Width), int(bitmap.Size.Height)

	switch bitmap.Format {
	case pixelfmt.FormatA8:
		for y := 0; y < height; y++ {
			row := bitmap.Row(uint32(y))
			srcRow := mask.Pix[y*mask.Stride : y*mask.Stride+width]
			for x := 0; x < width; x++ {
				if c := srcRow[x]; c != 0 && c > row[x] {
					row[x] = c
				}
			}
		}
	case pixelfmt.FormatRGBA8:
		ink := byte(0)
		if paint.White {
			ink = 0xFF
		}
		for y := 0; y < height; y++ {
			row := bitmap.Row(uint32(y))
			srcRow := mask.Pix[y*mask.Stride : y*mask.Stride+width]
			for x := 0; x < width; x++ {
				c := srcRow[x]
				if c == 0 {
					continue
				}
				p := row[x*4 : x*4+4]
				if c > p[3] {
					p[0], p[1], p[2], p[3] = ink, ink, ink, c
				}
			}
		}
	default:
		return fmt.Errorf("textface: %w: unsupported atlas format %s", pipeerr.ErrUnsupportedPixelFormat, bitmap.Format)
	}
	return nil
}

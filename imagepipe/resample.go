package imagepipe

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/hostalloc"
	"github.com/gogpu/atlaspipe/pipeerr"
	"github.com/gogpu/atlaspipe/pixelfmt"
)

// resample allocates a new bitmap at size and linearly filters src into it
// with no mip generation (§4.K step 7). Only FormatRGBA8 is supported:
// the wide-gamut target formats (BGR101010XR, RGBAFloat16) have no
// golang.org/x/image/draw-compatible image.Image representation in this
// pipeline, so a resample request against one of them fails rather than
// silently reinterpreting its bytes.
func resample(allocator pixelfmt.Allocator, src *hostalloc.Bitmap, size geom.Size) (*hostalloc.Bitmap, error) {
	if src.Format != pixelfmt.FormatRGBA8 {
		return nil, fmt.Errorf("%w: resample unsupported for format %s", pipeerr.ErrUnsupportedPixelFormat, src.Format)
	}

	srcImg := &image.RGBA{
		Pix:    src.Pixels,
		Stride: int(src.RowBytes),
		Rect:   image.Rect(0, 0, int(src.Size.Width), int(src.Size.Height)),
	}

	dst, err := hostalloc.New(allocator, size, pixelfmt.FormatRGBA8)
	if err != nil {
		return nil, fmt.Errorf("allocate resample target: %w", err)
	}
	dstImg := &image.RGBA{
		Pix:    dst.Pixels,
		Stride: int(dst.RowBytes),
		Rect:   image.Rect(0, 0, int(size.Width), int(size.Height)),
	}

	draw.BiLinear.Scale(dstImg, dstImg.Rect, srcImg, srcImg.Rect, draw.Src, nil)
	return dst, nil
}

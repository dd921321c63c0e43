// Package imagepipe decodes and resamples compressed or uncompressed image
// descriptors into a host-visible bitmap ready for upload (§4.K). The codec
// itself — JPEG/PNG/etc. decoding, scaled-dimension selection — is an
// external collaborator behind Descriptor; this package only orchestrates
// color-type selection, allocation, decode dispatch, and resample.
package imagepipe

import "math"

// SourceColorType names the pixel layout a Descriptor's source data is
// encoded in, as reported by its ImageInfo.
type SourceColorType uint8

const (
	// SourceRGBA8 is 8-bit RGBA.
	SourceRGBA8 SourceColorType = iota

	// SourceRGBAFloat16 is half-float RGBA.
	SourceRGBAFloat16

	// SourceRGBAFloat32 is full-float RGBA. Outside the wide-gamut path it
	// degrades to SourceRGBAFloat16's GPU target, since no GPU pixel format
	// in this pipeline accepts F32 (§4.K step 3).
	SourceRGBAFloat32
)

// AlphaType names how a source's alpha channel, if any, is encoded.
type AlphaType uint8

const (
	// AlphaOpaque means every pixel is fully opaque; alpha need not be
	// stored in the chosen target format.
	AlphaOpaque AlphaType = iota

	// AlphaPremultiplied means color channels are already multiplied by
	// alpha.
	AlphaPremultiplied

	// AlphaUnpremultiplied means color and alpha are stored independently.
	AlphaUnpremultiplied
)

// ColorSpace names a source's color primaries in CIE xy chromaticity
// coordinates, sufficient to compute the gamut-triangle area used by the
// wide-gamut test (§4.K step 3).
type ColorSpace struct {
	Name                   string
	RedX, RedY             float64
	GreenX, GreenY         float64
	BlueX, BlueY           float64
}

// GamutArea computes the area of the triangle formed by the color space's
// red, green, and blue primaries in CIE xy space, via the shoelace formula.
// sRGB's own primaries yield approximately 0.0982, the threshold this
// pipeline compares against to decide wide-gamut handling.
func (c ColorSpace) GamutArea() float64 {
	area := c.RedX*(c.GreenY-c.BlueY) + c.GreenX*(c.BlueY-c.RedY) + c.BlueX*(c.RedY-c.GreenY)
	return math.Abs(area) / 2
}

// SRGB is the standard sRGB color space's primaries.
var SRGB = ColorSpace{Name: "sRGB", RedX: 0.64, RedY: 0.33, GreenX: 0.30, GreenY: 0.60, BlueX: 0.15, BlueY: 0.06}

// DisplayP3 is a common wide-gamut color space's primaries, for callers
// that need a ready-made example exceeding the sRGB gamut area.
var DisplayP3 = ColorSpace{Name: "Display P3", RedX: 0.680, RedY: 0.320, GreenX: 0.265, GreenY: 0.690, BlueX: 0.150, BlueY: 0.060}

// ImageInfo describes a source image's dimensions and pixel semantics,
// independent of how it is encoded on disk.
type ImageInfo struct {
	Width, Height uint32
	ColorType     SourceColorType
	AlphaType     AlphaType
	ColorSpace    ColorSpace
}

// Descriptor is the external collaborator that knows how to decode one
// source image, compressed or not (§6 "Image descriptor").
type Descriptor interface {
	// ImageInfo reports the source's dimensions and pixel semantics.
	ImageInfo() ImageInfo

	// IsCompressed reports whether Data holds an encoded codec stream
	// (true) or raw uncompressed pixels (false).
	IsCompressed() bool

	// RowBytes is the stride of the source's raw pixel data; meaningful
	// only when IsCompressed is false.
	RowBytes() int

	// Data returns the descriptor's raw bytes: an encoded stream if
	// IsCompressed, otherwise packed pixels at RowBytes stride.
	Data() []byte

	// GetPixels decodes into pixmap, which is sized for the target
	// dimensions and format chosen by Decompress. It returns false on
	// decode failure.
	GetPixels(pixmap []byte) bool

	// GetScaledDimensions asks the codec for the smallest size it can
	// decode directly that still covers scaling by factor, for codecs
	// that support decoding at a reduced resolution.
	GetScaledDimensions(factor float32) (width, height uint32)
}

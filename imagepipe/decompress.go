package imagepipe

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/hostalloc"
	"github.com/gogpu/atlaspipe/pipeerr"
	"github.com/gogpu/atlaspipe/pipelog"
	"github.com/gogpu/atlaspipe/pixelfmt"
)

// titleCaser renders a ColorSpace.Name for log output. Names are plain
// ASCII strings ("sRGB", "Display P3"); golang.org/x/text/cases gives
// locale-correct title casing instead of a hand-rolled ASCII upper-first.
var titleCaser = cases.Title(language.Und)

var log = pipelog.For("imagepipe")

// DefaultSRGBGamutArea is the sRGB gamut-triangle area the wide-gamut test
// compares against when no pipeconfig.PipelineConfig value is supplied.
const DefaultSRGBGamutArea = 0.0982

// DecompressResult carries the decoded bitmap and the device buffer backing
// it, plus the resolved image metadata.
type DecompressResult struct {
	GenerationID uuid.UUID
	DeviceBuffer pixelfmt.DeviceBuffer
	Bitmap       *hostalloc.Bitmap
	Info         ImageInfo
}

// Decompress decodes descriptor into a host-visible bitmap sized for
// targetSize (clamped to maxTextureSize), choosing a pixel format per
// §4.K step 3 and resampling if the decode size differs from the clamped
// target. gamutThreshold is the sRGB gamut-triangle area to compare the
// source color space against; pass DefaultSRGBGamutArea (or a resolved
// pipeconfig.PipelineConfig.SRGBGamutArea) when in doubt.
func Decompress(descriptor Descriptor, targetSize geom.Size, maxTextureSize geom.Size, supportsWideGamut bool, gamutThreshold float64, allocator pixelfmt.Allocator) (*DecompressResult, error) {
	if descriptor == nil {
		return nil, fmt.Errorf("imagepipe: %w: nil descriptor", pipeerr.ErrInvalidDescriptor)
	}

	// Step 1: clamp targetSize by maxTextureSize.
	clamped := targetSize.Clamp(maxTextureSize)
	if clamped.IsEmpty() {
		clamped = maxTextureSize
	}

	info := descriptor.ImageInfo()
	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("imagepipe: %w: zero-sized source image", pipeerr.ErrInvalidDescriptor)
	}

	// Step 2: determine the decode size.
	decodeSize := geom.Size{Width: info.Width, Height: info.Height}
	if descriptor.IsCompressed() {
		factor := float32(clamped.Width) / float32(info.Width)
		if hf := float32(clamped.Height) / float32(info.Height); hf > factor {
			factor = hf
		}
		w, h := descriptor.GetScaledDimensions(factor)
		decodeSize = geom.Size{Width: w, Height: h}
	}

	// Step 3: choose target color type/alpha/space.
	if gamutThreshold <= 0 {
		gamutThreshold = DefaultSRGBGamutArea
	}
	format, resultSpace := chooseFormat(info, supportsWideGamut, gamutThreshold)
	log.Debug("chose pixel format", "format", format, "color_space", titleCaser.String(resultSpace.Name))

	// Step 4: reject unsupported formats.
	if !format.HasGPUEquivalent() {
		return nil, fmt.Errorf("imagepipe: %w: %s has no GPU equivalent", pipeerr.ErrUnsupportedPixelFormat, format)
	}

	// Step 5: allocate the decode-size bitmap.
	bitmap, err := hostalloc.New(allocator, decodeSize, format)
	if err != nil {
		return nil, fmt.Errorf("imagepipe: allocate decode bitmap: %w", err)
	}

	// Step 6: decode.
	if descriptor.IsCompressed() {
		if !descriptor.GetPixels(bitmap.Pixels) {
			bitmap.Close()
			return nil, fmt.Errorf("imagepipe: %w: codec decode failed", pipeerr.ErrInvalidDescriptor)
		}
	} else {
		if err := copyConvert(descriptor, bitmap); err != nil {
			bitmap.Close()
			return nil, fmt.Errorf("imagepipe: uncompressed copy-convert: %w", err)
		}
	}
	bitmap.MarkImmutable()

	finalBitmap := bitmap
	finalInfo := ImageInfo{Width: decodeSize.Width, Height: decodeSize.Height, ColorType: info.ColorType, AlphaType: info.AlphaType, ColorSpace: resultSpace}

	// Step 7: resample if the decode size disagrees with the clamped
	// target.
	if decodeSize != clamped {
		scaled, err := resample(allocator, bitmap, clamped)
		if err != nil {
			log.Warn("resample failed, decode aborted", "from", decodeSize, "to", clamped, "error", err)
			bitmap.Close()
			return nil, fmt.Errorf("imagepipe: %w: %v", pipeerr.ErrAllocationFailure, err)
		}
		scaled.MarkImmutable()
		bitmap.Close()
		finalBitmap = scaled
		finalInfo.Width, finalInfo.Height = clamped.Width, clamped.Height
	}

	return &DecompressResult{
		GenerationID: uuid.New(),
		DeviceBuffer: finalBitmap.Backing(),
		Bitmap:       finalBitmap,
		Info:         finalInfo,
	}, nil
}

// chooseFormat implements §4.K step 3: wide-gamut sources that clear
// gamutThreshold get a 10-bit or half-float target at sRGB; everything else
// gets a conservative 8-bit target, with F32 sources degraded to F16.
func chooseFormat(info ImageInfo, supportsWideGamut bool, gamutThreshold float64) (pixelfmt.Format, ColorSpace) {
	if supportsWideGamut && info.ColorSpace.GamutArea() > gamutThreshold {
		if info.AlphaType == AlphaOpaque {
			return pixelfmt.FormatBGR101010XR, SRGB
		}
		return pixelfmt.FormatRGBAFloat16, SRGB
	}

	if info.ColorType == SourceRGBAFloat32 {
		return pixelfmt.FormatRGBAFloat16, info.ColorSpace
	}
	return pixelfmt.FormatRGBA8, info.ColorSpace
}

// copyConvert wraps descriptor's raw, uncompressed pixel data as an
// immutable source view and copies it row by row into bitmap, respecting
// each side's own stride. It assumes the source's byte layout already
// matches bitmap's chosen format; true format conversion (channel reorder,
// premultiplication, bit-depth change) belongs to the external descriptor,
// which is expected to hand back data already in the requested layout for
// the uncompressed path.
func copyConvert(descriptor Descriptor, bitmap *hostalloc.Bitmap) error {
	src := descriptor.Data()
	srcStride := descriptor.RowBytes()
	if srcStride <= 0 {
		return fmt.Errorf("%w: non-positive source stride", pipeerr.ErrInvalidDescriptor)
	}

	width := int(bitmap.Size.Width) * int(bitmap.Format.BytesPerPixel())
	for y := uint32(0); y < bitmap.Size.Height; y++ {
		start := int(y) * srcStride
		end := start + width
		if end > len(src) {
			return fmt.Errorf("%w: source data shorter than declared dimensions", pipeerr.ErrInvalidDescriptor)
		}
		copy(bitmap.Row(y)[:width], src[start:end])
	}
	return nil
}

// Package pipeerr defines the error taxonomy shared by the atlas and image
// pipelines (§7). Every stage returns (value, error); the sentinels here let
// callers use errors.Is/errors.As across wrapped layers instead of
// inspecting strings.
package pipeerr

import "errors"

// Sentinel errors, one per taxonomy class in §7. Wrap these with fmt.Errorf
// and "%w" to attach a cause.
var (
	// ErrAllocationFailure means a device buffer, texture, or host pixel
	// backing could not be obtained.
	ErrAllocationFailure = errors.New("pipeline: allocation failure")

	// ErrPackingImpossible means no atlas up to the configured maximum
	// size can fit every collected pair.
	ErrPackingImpossible = errors.New("pipeline: packing impossible")

	// ErrUnsupportedPixelFormat means a source color type has no GPU
	// pixel-format equivalent.
	ErrUnsupportedPixelFormat = errors.New("pipeline: unsupported pixel format")

	// ErrUploadFailure means command buffer creation, blit pass encoding,
	// or submission failed.
	ErrUploadFailure = errors.New("pipeline: upload failure")

	// ErrInvalidDescriptor means a nil descriptor or invalid dimensions
	// were supplied.
	ErrInvalidDescriptor = errors.New("pipeline: invalid descriptor")
)

// Is reports whether err is (or wraps) target, a thin re-export of
// errors.Is so call sites only need to import this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

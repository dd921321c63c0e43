// Package hostalloc allocates the host-visible bitmaps the atlas and image
// pipelines rasterize and decode into. A Bitmap's pixel storage aliases a
// device buffer obtained from a pixelfmt.Allocator, modeling the joint
// ownership described in SPEC_FULL.md §9 ("cyclic ownership"): the device
// buffer is a field of the bitmap, not a sibling, so there is exactly one
// release path.
package hostalloc

import (
	"fmt"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/pipeerr"
	"github.com/gogpu/atlaspipe/pixelfmt"
)

// Bitmap is a host-visible pixel buffer backed by a device buffer. Pixels
// aliases the device buffer's memory directly; there is no separate CPU
// copy.
type Bitmap struct {
	Size     geom.Size
	Format   pixelfmt.Format
	RowBytes uint32
	Pixels   []byte

	backing pixelfmt.DeviceBuffer

	mu        sync.Mutex
	immutable bool
	closed    bool
}

// New allocates a device buffer sized for size/format via allocator and
// wraps it as a Bitmap. The returned buffer's row bytes may exceed the
// tight packing of Size.Width*format.BytesPerPixel() if the allocator pads
// for alignment; RowBytes reflects whatever the allocator actually used.
func New(allocator pixelfmt.Allocator, size geom.Size, format pixelfmt.Format) (*Bitmap, error) {
	if allocator == nil {
		return nil, fmt.Errorf("hostalloc: %w: nil allocator", pipeerr.ErrInvalidDescriptor)
	}
	if size.IsEmpty() {
		return nil, fmt.Errorf("hostalloc: %w: empty size", pipeerr.ErrInvalidDescriptor)
	}
	rowBytes := size.Width * format.BytesPerPixel()
	if min := allocator.MinBytesPerRow(format); min > rowBytes {
		rowBytes = min
	}
	total := uint64(rowBytes) * uint64(size.Height)

	buf, err := allocator.CreateBuffer(pixelfmt.BufferDescriptor{
		Label:    "HostBitmap",
		Size:     total,
		RowBytes: rowBytes,
		Height:   size.Height,
	})
	if err != nil {
		cause := pkgerrors.Wrap(err, "hostalloc: create buffer")
		return nil, fmt.Errorf("%w: %v", pipeerr.ErrAllocationFailure, cause)
	}

	pixels := make([]byte, total)
	return &Bitmap{
		Size:     size,
		Format:   format,
		RowBytes: rowBytes,
		Pixels:   pixels,
		backing:  buf,
	}, nil
}

// Backing returns the device buffer aliased by this bitmap's pixels.
func (b *Bitmap) Backing() pixelfmt.DeviceBuffer {
	return b.backing
}

// MarkImmutable records that the bitmap must not change again (§4.K step 6,
// the uncompressed decode path, and step 7, the resampled bitmap). It sets a
// flag only: Row and Pixels still hand out writable memory afterwards.
func (b *Bitmap) MarkImmutable() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.immutable = true
}

// IsImmutable reports whether MarkImmutable has been called.
func (b *Bitmap) IsImmutable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.immutable
}

// Row returns the byte slice for row y, respecting RowBytes stride.
func (b *Bitmap) Row(y uint32) []byte {
	start := uint64(y) * uint64(b.RowBytes)
	end := start + uint64(b.RowBytes)
	return b.Pixels[start:end]
}

// Mapping returns a pixelfmt.Mapping over this bitmap's pixels, capturing a
// reference to the bitmap itself so it survives until the GPU has consumed
// it (§9 "callback closure keeping data alive"). Release is a no-op beyond
// dropping the closure's reference; the bitmap is still explicitly closed
// by its owner.
func (b *Bitmap) Mapping() pixelfmt.Mapping {
	keepAlive := b
	return pixelfmt.Mapping{
		Bytes:   b.Pixels,
		Release: func() { _ = keepAlive },
	}
}

// Close releases the backing device buffer. Close is idempotent.
func (b *Bitmap) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.backing != nil {
		b.backing.Release()
	}
}

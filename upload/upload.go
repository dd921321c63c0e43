// Package upload moves a rasterized or decoded host bitmap onto the GPU
// (§4.L). It implements the two upload modes the rest of the pipeline
// chooses between: a shared-memory fast path that reinterprets a device
// buffer's memory directly as a texture, and a private-texture path that
// allocates device-local storage and copies into it through a blit pass.
package upload

import (
	"fmt"

	"github.com/gogpu/atlaspipe/hostalloc"
	"github.com/gogpu/atlaspipe/pipeerr"
	"github.com/gogpu/atlaspipe/pipelog"
	"github.com/gogpu/atlaspipe/pixelfmt"
)

var log = pipelog.For("upload")

// ToShared uploads bitmap to a host-visible texture matching descriptor. On
// platforms that support aliasing a device buffer's memory as a texture
// (caps.SupportsSharedDeviceBufferTextureMemory), it reinterprets the
// bitmap's backing buffer directly with no copy; otherwise it creates a new
// texture and copies the bitmap's pixels in with SetContents (§4.J step 6,
// §9 "shared-memory fast path").
//
// When createMips is true and descriptor requests more than one mip level,
// the remaining levels are generated with a blit pass and its completion is
// only waited to be scheduled, not finished, matching the "cheap enough to
// not stall the caller" intent of a rebuild that the caller already knows
// is expensive.
func ToShared(gctx pixelfmt.Context, caps pixelfmt.Capabilities, bitmap *hostalloc.Bitmap, descriptor pixelfmt.TextureDescriptor, createMips bool) (pixelfmt.Texture, error) {
	if caps.SupportsSharedDeviceBufferTextureMemory() {
		if tex, ok := bitmap.Backing().AsTexture(descriptor, bitmap.RowBytes); ok {
			tex.SetLabel(descriptor.Label)
			if createMips && descriptor.MipCount > 1 {
				if err := generateMips(gctx, gctx.ResourceAllocator(), tex, true); err != nil {
					tex.Release()
					return nil, err
				}
			}
			log.Debug("uploaded via shared buffer-texture aliasing", "label", descriptor.Label)
			return tex, nil
		}
		log.Debug("shared aliasing declined by allocator, falling back to copy", "label", descriptor.Label)
	}

	allocator := gctx.ResourceAllocator()
	tex, err := allocator.CreateTexture(descriptor)
	if err != nil {
		return nil, fmt.Errorf("upload: create texture: %w: %v", pipeerr.ErrUploadFailure, err)
	}
	tex.SetLabel(descriptor.Label)

	if !tex.SetContents(bitmap.Mapping()) {
		tex.Release()
		return nil, fmt.Errorf("upload: %w: SetContents failed", pipeerr.ErrUploadFailure)
	}

	if createMips && descriptor.MipCount > 1 {
		if err := generateMips(gctx, allocator, tex, true); err != nil {
			tex.Release()
			return nil, err
		}
	}

	return tex, nil
}

// ToPrivate uploads buffer's contents to a newly created device-private
// texture matching descriptor, via a blit-pass copy, for decoded images that
// favor device-local storage over host-visible memory (§4.L, §9). No package
// in this module calls it; imagepipe.Decompress stops at the host bitmap.
func ToPrivate(gctx pixelfmt.Context, buffer pixelfmt.DeviceBuffer, descriptor pixelfmt.TextureDescriptor) (pixelfmt.Texture, error) {
	allocator := gctx.ResourceAllocator()
	tex, err := allocator.CreateTexture(descriptor)
	if err != nil {
		return nil, fmt.Errorf("upload: create private texture: %w: %v", pipeerr.ErrUploadFailure, err)
	}
	tex.SetLabel(descriptor.Label)

	cmd, err := gctx.CreateCommandBuffer()
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("upload: create command buffer: %w: %v", pipeerr.ErrUploadFailure, err)
	}
	blit, err := cmd.CreateBlitPass()
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("upload: create blit pass: %w: %v", pipeerr.ErrUploadFailure, err)
	}
	blit.SetLabel("Texture Upload Blit Pass")
	blit.AddCopy(buffer.AsBufferView(), tex)
	if descriptor.MipCount > 1 {
		blit.GenerateMipmap(tex)
	}
	if !blit.Encode(allocator) {
		tex.Release()
		return nil, fmt.Errorf("upload: %w: blit pass encode failed", pipeerr.ErrUploadFailure)
	}
	if !cmd.Submit() {
		tex.Release()
		return nil, fmt.Errorf("upload: %w: command buffer submit failed", pipeerr.ErrUploadFailure)
	}

	log.Debug("uploaded to private texture via blit copy", "label", descriptor.Label, "mips", descriptor.MipCount)
	return tex, nil
}

// generateMips encodes and submits a standalone blit pass that only
// generates mip levels for an already-populated tex, waiting for the pass
// to be scheduled but not for it to finish.
func generateMips(gctx pixelfmt.Context, allocator pixelfmt.Allocator, tex pixelfmt.Texture, wait bool) error {
	cmd, err := gctx.CreateCommandBuffer()
	if err != nil {
		return fmt.Errorf("upload: create mip command buffer: %w: %v", pipeerr.ErrUploadFailure, err)
	}
	blit, err := cmd.CreateBlitPass()
	if err != nil {
		return fmt.Errorf("upload: create mip blit pass: %w: %v", pipeerr.ErrUploadFailure, err)
	}
	blit.SetLabel("Mipmap Blit Pass")
	blit.GenerateMipmap(tex)
	if !blit.Encode(allocator) {
		return fmt.Errorf("upload: %w: mip blit pass encode failed", pipeerr.ErrUploadFailure)
	}
	if !cmd.Submit() {
		return fmt.Errorf("upload: %w: mip command buffer submit failed", pipeerr.ErrUploadFailure)
	}
	if wait {
		cmd.WaitUntilScheduled()
	}
	return nil
}

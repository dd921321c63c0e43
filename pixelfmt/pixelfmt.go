// Package pixelfmt enumerates the pixel formats and capability/descriptor
// types the atlas and image pipelines exchange with an external GPU
// abstraction. It does not talk to a GPU itself; concrete resource creation,
// command buffer transport, and pipeline/shader work stay with the
// collaborator that implements Allocator and Context.
package pixelfmt

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/atlaspipe/geom"
)

// Format identifies a pixel layout recognized by the GPU abstraction.
type Format uint32

const (
	// FormatUndefined is the zero value and never a valid upload target.
	FormatUndefined Format = iota

	// FormatA8 is 8-bit single-channel alpha, used for alpha-bitmap and
	// SDF glyph atlases.
	FormatA8

	// FormatRGBA8 is 8-bit RGBA, used for color glyph atlases and the
	// conservative image decode path.
	FormatRGBA8

	// FormatBGR101010XR is a 10-bit-per-channel wide-gamut format with no
	// alpha, chosen when the source is opaque and wide gamut is supported.
	FormatBGR101010XR

	// FormatRGBAFloat16 is half-float RGBA, chosen for wide-gamut sources
	// that carry alpha, and as the F16 degrade target for F32 sources.
	FormatRGBAFloat16

	// FormatRGBAFloat32 is full-float RGBA. No GPU pixel-format equivalent
	// is assumed to exist for this format in this pipeline; decode never
	// selects it, turning F32 sources into FormatRGBAFloat16 (or a
	// wide-gamut target) instead (§4.K step 3).
	FormatRGBAFloat32
)

// String renders a human-readable format name, used only in logging.
func (f Format) String() string {
	switch f {
	case FormatA8:
		return "A8"
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGR101010XR:
		return "BGR101010XR"
	case FormatRGBAFloat16:
		return "RGBAFloat16"
	case FormatRGBAFloat32:
		return "RGBAFloat32"
	default:
		return "Undefined"
	}
}

// BytesPerPixel returns the storage width of one pixel in this format, or 0
// for FormatUndefined.
func (f Format) BytesPerPixel() uint32 {
	switch f {
	case FormatA8:
		return 1
	case FormatRGBA8:
		return 4
	case FormatBGR101010XR:
		return 4
	case FormatRGBAFloat16:
		return 8
	case FormatRGBAFloat32:
		return 16
	default:
		return 0
	}
}

// HasGPUEquivalent reports whether this pipeline can upload the format to a
// texture at all. FormatUndefined and FormatRGBAFloat32 have none (§4.K
// step 4).
func (f Format) HasGPUEquivalent() bool {
	return f != FormatUndefined && f != FormatRGBAFloat32
}

// GPUTextureFormat maps f to the equivalent github.com/gogpu/gputypes
// texture format, for an external collaborator that describes its
// resources using that package's vocabulary the way the teacher's own
// GPU backend code did. ok is false for formats with no confirmed
// gputypes.TextureFormat equivalent, the same "no GPU equivalent" shape
// as HasGPUEquivalent.
func (f Format) GPUTextureFormat() (gputypes.TextureFormat, bool) {
	switch f {
	case FormatA8:
		return gputypes.TextureFormatR8Unorm, true
	case FormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm, true
	default:
		return gputypes.TextureFormatUndefined, false
	}
}

// StorageMode selects where a texture's backing memory lives.
type StorageMode uint8

const (
	// StorageHostVisible textures share memory with a host-visible
	// device buffer; no copy is required to populate them on platforms
	// that support it.
	StorageHostVisible StorageMode = iota

	// StorageDevicePrivate textures live in device-local memory reachable
	// only through blit/copy commands.
	StorageDevicePrivate
)

// Compression names the compression applied to a texture's storage, as
// opposed to the source image's codec.
type Compression uint8

const (
	// CompressionNone stores texels uncompressed.
	CompressionNone Compression = iota

	// CompressionLossy requests a device-private lossy compression scheme
	// where the platform offers one; used for private glyph-atlas and
	// image textures (§4.L).
	CompressionLossy
)

// TextureDescriptor describes a texture to be created by an Allocator.
type TextureDescriptor struct {
	Label       string
	Size        geom.Size
	Format      Format
	MipCount    uint32
	StorageMode StorageMode
	Compression Compression
}

// BufferDescriptor describes a host-visible device buffer request, sized to
// back a bitmap of RowBytes*Height plus the padding a concrete allocator may
// need for its own alignment rules.
type BufferDescriptor struct {
	Label    string
	Size     uint64
	RowBytes uint32
	Height   uint32
}

// DeviceBuffer is an opaque, reference-counted host-visible buffer produced
// by an Allocator. Implementations decide their own backing storage; this
// pipeline only needs the two conversions below.
type DeviceBuffer interface {
	// AsBufferView exposes the buffer for use as a blit-pass copy source.
	AsBufferView() BufferView

	// AsTexture attempts to reinterpret the buffer's memory directly as a
	// texture, for the shared-memory fast path (§4.L). It returns
	// ok=false if the platform's row-byte alignment rules make that
	// impossible for the given descriptor.
	AsTexture(descriptor TextureDescriptor, rowBytes uint32) (tex Texture, ok bool)

	// Release decrements the buffer's reference count, freeing it at
	// zero.
	Release()
}

// BufferView is an opaque handle suitable as a blit-pass copy source.
type BufferView interface{}

// Texture is an opaque, reference-counted GPU texture.
type Texture interface {
	// SetContents uploads mapping into the texture's base mip level. The
	// mapping must remain valid until the GPU has consumed it; callers
	// retain a reference to the data it wraps for exactly that long.
	SetContents(mapping Mapping) bool

	// SetLabel attaches a debug label.
	SetLabel(label string)

	// Descriptor returns the descriptor the texture was created with.
	Descriptor() TextureDescriptor

	// IsValid reports whether the texture was created successfully and
	// has not since been released.
	IsValid() bool

	// Release decrements the texture's reference count, freeing it at
	// zero.
	Release()
}

// Mapping is a non-owned view over pixel bytes, handed to Texture.SetContents.
// hostalloc.Bitmap.Mapping constructs one whose Release closes over the
// bitmap that keeps the bytes alive, so the data survives until the GPU has
// consumed it.
type Mapping struct {
	Bytes []byte

	// Release is invoked by the texture once it has consumed Bytes. It
	// may be nil if nothing needs releasing.
	Release func()
}

// Allocator is the external collaborator that creates device buffers and
// textures and reports device-specific limits.
type Allocator interface {
	CreateBuffer(descriptor BufferDescriptor) (DeviceBuffer, error)
	CreateTexture(descriptor TextureDescriptor) (Texture, error)
	MinBytesPerRow(format Format) uint32
	MaxTextureSize() geom.Size
}

// Capabilities reports device feature support relevant to the pipelines.
type Capabilities interface {
	// SupportsSharedDeviceBufferTextureMemory reports whether a device
	// buffer can be reinterpreted as a texture with no copy (§4.J step 6,
	// §4.L, §9 "shared-memory fast path").
	SupportsSharedDeviceBufferTextureMemory() bool

	// SupportsWideGamut reports whether the device accepts wide-gamut
	// texture formats for decoded images (§4.K step 3).
	SupportsWideGamut() bool
}

// CommandBuffer is a single-use GPU command buffer owned by the thread that
// builds it.
type CommandBuffer interface {
	CreateBlitPass() (BlitPass, error)
	Submit() bool
	WaitUntilScheduled()
}

// BlitPass is a GPU command group restricted to copies and mip generation.
type BlitPass interface {
	AddCopy(src BufferView, dst Texture)
	GenerateMipmap(tex Texture)
	Encode(allocator Allocator) bool
	SetLabel(label string)
}

// Context is the external collaborator that owns the GPU device handle and
// vends command buffers and the resource allocator; all GPU resource
// creation and submission is serialized through whichever thread owns it
// (§5, the IO thread).
type Context interface {
	CreateCommandBuffer() (CommandBuffer, error)
	ResourceAllocator() Allocator
}

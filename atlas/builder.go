package atlas

import (
	"fmt"

	"github.com/gogpu/atlaspipe/glyphset"
	"github.com/gogpu/atlaspipe/hostalloc"
	"github.com/gogpu/atlaspipe/pipeconfig"
	"github.com/gogpu/atlaspipe/pipeerr"
	"github.com/gogpu/atlaspipe/pipelog"
	"github.com/gogpu/atlaspipe/pixelfmt"
	"github.com/gogpu/atlaspipe/rasterize"
	"github.com/gogpu/atlaspipe/sdf"
	"github.com/gogpu/atlaspipe/upload"
)

var log = pipelog.For("atlas")

// Builder owns the external collaborators needed to build a glyph atlas
// (§4.J): a font backend to rasterize glyphs, a GPU context/allocator to
// stage and upload the result, and the resolved pipeline configuration.
type Builder struct {
	GPUContext pixelfmt.Context
	Caps       pixelfmt.Capabilities
	Backend    rasterize.FontBackend
	Canvas     rasterize.Canvas
	Config     pipeconfig.PipelineConfig
}

// NewBuilder constructs a Builder from its collaborators, resolving config
// against pipeconfig.Defaults().
func NewBuilder(gctx pixelfmt.Context, caps pixelfmt.Capabilities, backend rasterize.FontBackend, canvas rasterize.Canvas, config pipeconfig.PipelineConfig) *Builder {
	return &Builder{
		GPUContext: gctx,
		Caps:       caps,
		Backend:    backend,
		Canvas:     canvas,
		Config:     config.Resolve(),
	}
}

// Build implements §4.J's seven-step atlas build: collect unique pairs,
// check whether the cached atlas in ctx already covers them, try an
// incremental append into the existing texture, and otherwise rebuild from
// scratch at the smallest power-of-two size (up to AtlasMaxSide) that fits
// every pair. On success ctx is updated to hold the returned atlas, its
// packer, and its backing bitmap, all three in sync; on failure ctx is left
// untouched.
func (b *Builder) Build(t Type, ctx *Context, it glyphset.FrameIterator) (*GlyphAtlas, error) {
	// Step 1: collect every unique (font, glyph) pair referenced this frame.
	pairs := glyphset.Collect(it).All()
	if len(pairs) == 0 {
		return ctx.Atlas(), nil
	}

	prior := ctx.Atlas()

	// Step 2: classify against the cached atlas. If it's the right type and
	// already covers every pair, there is nothing to do.
	var newPairs []glyphset.FontGlyphPair
	reusable := prior != nil && prior.Type == t
	if reusable {
		for _, p := range pairs {
			if _, ok := prior.Find(p); !ok {
				newPairs = append(newPairs, p)
			}
		}
		if len(newPairs) == 0 {
			return prior, nil
		}
	}

	// Step 3: try an incremental append into the live packer and bitmap.
	// SDF atlases are excluded: the dead-reckoning transform consumes raw
	// coverage and is destructive once applied, so an atlas already holding
	// quantized distance values cannot have new glyphs blended into its
	// existing neighborhood without recomputing the whole field; those
	// always fall through to a rebuild.
	if reusable && t != SignedDistanceField && ctx.RectPacker() != nil && ctx.Bitmap() != nil {
		atlas, ok, err := b.tryAppend(prior, ctx, newPairs)
		if err != nil {
			return nil, err
		}
		if ok {
			return atlas, nil
		}
		log.Debug("incremental append did not fit, rebuilding", "atlas", prior.GenerationID, "new_glyphs", len(newPairs))
	}

	// Step 4: rebuild from scratch, sizing the atlas for every pair the
	// frame references, not just the newly collected ones.
	return b.rebuild(t, ctx, pairs)
}

// tryAppend packs newPairs into ctx's existing packer, rasterizes only
// those glyphs into the existing bitmap, records their positions on prior,
// and refreshes the GPU texture. ok is false if the new glyphs did not fit,
// in which case ctx and prior are left unmodified (the packer may have been
// partially mutated, but it is about to be discarded by a rebuild either
// way).
func (b *Builder) tryAppend(prior *GlyphAtlas, ctx *Context, newPairs []glyphset.FontGlyphPair) (*GlyphAtlas, bool, error) {
	sorted := glyphset.Sorted(newPairs)
	placements, remaining := packAll(ctx.RectPacker(), sorted)
	if remaining > 0 {
		return nil, false, nil
	}

	bitmap := ctx.Bitmap()
	hasColor := prior.Type == ColorBitmap
	for _, pl := range placements {
		if err := rasterize.Draw(b.Backend, bitmap, pl.pair, pl.rect, hasColor); err != nil {
			return nil, false, fmt.Errorf("atlas: append rasterize: %w", err)
		}
		prior.AddPosition(pl.pair, pl.rect)
	}

	if !b.Caps.SupportsSharedDeviceBufferTextureMemory() {
		tex := prior.Texture()
		if tex == nil || !tex.SetContents(bitmap.Mapping()) {
			return nil, false, fmt.Errorf("atlas: append upload: %w", pipeerr.ErrUploadFailure)
		}
	}

	log.Debug("appended glyphs into existing atlas", "atlas", prior.GenerationID, "added", len(placements))
	return prior, true, nil
}

// rebuild implements §4.J steps 4-7: size a fresh atlas for pairs, allocate
// its bitmap, rasterize everything into it, post-process SDF atlases, and
// upload.
func (b *Builder) rebuild(t Type, ctx *Context, pairs []glyphset.FontGlyphPair) (*GlyphAtlas, error) {
	sorted := glyphset.Sorted(pairs)
	format := t.PixelFormat()
	allocator := b.GPUContext.ResourceAllocator()

	minSide := b.Config.AtlasMinSide
	if rowMin := allocator.MinBytesPerRow(format); rowMin > minSide {
		minSide = rowMin
	}

	size, packer, placements := optimumSize(sorted, minSide, b.Config.AtlasMaxSide)
	if size.IsEmpty() {
		return nil, fmt.Errorf("atlas: rebuild %d pairs: %w", len(pairs), pipeerr.ErrPackingImpossible)
	}

	bitmap, err := hostalloc.New(allocator, size, format)
	if err != nil {
		return nil, fmt.Errorf("atlas: rebuild allocate bitmap: %w", err)
	}

	newAtlas := newAtlas(t, size)
	hasColor := t == ColorBitmap
	for _, pl := range placements {
		if err := rasterize.Draw(b.Backend, bitmap, pl.pair, pl.rect, hasColor); err != nil {
			bitmap.Close()
			return nil, fmt.Errorf("atlas: rebuild rasterize: %w", err)
		}
		newAtlas.AddPosition(pl.pair, pl.rect)
	}

	if t == SignedDistanceField {
		applySDF(bitmap, b.Config.SDFSpread)
	}

	descriptor := pixelfmt.TextureDescriptor{
		Label:       "GlyphAtlas",
		Size:        size,
		Format:      format,
		MipCount:    1,
		StorageMode: pixelfmt.StorageHostVisible,
	}
	tex, err := upload.ToShared(b.GPUContext, b.Caps, bitmap, descriptor, false)
	if err != nil {
		bitmap.Close()
		return nil, fmt.Errorf("atlas: rebuild upload: %w", err)
	}
	newAtlas.SetTexture(tex)

	ctx.UpdateAtlas(newAtlas)
	ctx.UpdateRectPacker(packer)
	ctx.UpdateBitmap(bitmap)

	log.Info("rebuilt atlas", "atlas", newAtlas.GenerationID, "type", t, "size", size, "glyphs", len(placements))
	return newAtlas, nil
}

// applySDF runs the dead-reckoning transform over bitmap's pixels, handling
// the case where the allocator's row-byte alignment leaves RowBytes wider
// than the tightly packed width sdf.Transform requires: rows are copied out
// to a tightly packed scratch buffer, transformed, and copied back.
func applySDF(bitmap *hostalloc.Bitmap, spread float64) {
	width := int(bitmap.Size.Width)
	height := int(bitmap.Size.Height)
	if int(bitmap.RowBytes) == width {
		sdf.Transform(bitmap.Pixels, width, height, spread)
		return
	}

	tight := make([]byte, width*height)
	for y := 0; y < height; y++ {
		copy(tight[y*width:(y+1)*width], bitmap.Row(uint32(y))[:width])
	}
	sdf.Transform(tight, width, height, spread)
	for y := 0; y < height; y++ {
		copy(bitmap.Row(uint32(y))[:width], tight[y*width:(y+1)*width])
	}
}

package atlas

import (
	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/glyphset"
	"github.com/gogpu/atlaspipe/pack"
)

// placement is a pair packed at a rectangle, computed speculatively during
// sizing before it is committed to a GlyphAtlas.
type placement struct {
	pair glyphset.FontGlyphPair
	rect geom.RectU
}

// sizeOf returns the unpadded size of a pair's glyph at its font's scale,
// ceil(bounds.size * scale). packAll adds the 2-pixel padding margin on each
// axis when it asks the packer for space (§4.D, §4.J step 3/4).
func sizeOf(pair glyphset.FontGlyphPair) (w, h uint32) {
	scale := pair.Font.Metrics().Scale
	w, h = pair.Glyph.Bounds.Scale(scale).CeilSize()
	return w, h
}

// packAll packs every pair into p, in the given order, and reports how many
// failed to fit along with the placements that succeeded.
func packAll(p pack.Packer, pairs []glyphset.FontGlyphPair) (placements []placement, remaining int) {
	placements = make([]placement, 0, len(pairs))
	for _, pair := range pairs {
		w, h := sizeOf(pair)
		x, y, ok := p.Add(w+2, h+2)
		if !ok {
			remaining++
			continue
		}
		placements = append(placements, placement{pair: pair, rect: geom.RectU{X: x, Y: y, W: w, H: h}})
	}
	return placements, remaining
}

// ceilDiv2 returns ceil(n / 2).
func ceilDiv2(n int) int {
	return (n + 1) / 2
}

// optimumSize implements the size-search in §4.J step 4: start at
// (minSide, minSide), pack everything, and on failure grow either the
// shorter side alone or both sides to the next power of two, depending on
// how much of the pair set failed to fit. Returns a zero Size if no size up
// to maxSide x maxSide fits every pair.
func optimumSize(pairs []glyphset.FontGlyphPair, minSide, maxSide uint32) (geom.Size, pack.Packer, []placement) {
	current := geom.Size{Width: minSide, Height: minSide}

	for {
		packer := pack.NewShelf(current.Width, current.Height)
		placements, remaining := packAll(packer, pairs)
		if remaining == 0 {
			return current, packer, placements
		}

		prev := current
		if remaining < ceilDiv2(len(pairs)) {
			if current.Width <= current.Height {
				current.Width = geom.NextPowerOfTwo(current.Width + 1)
			} else {
				current.Height = geom.NextPowerOfTwo(current.Height + 1)
			}
		} else {
			current.Width = geom.NextPowerOfTwo(current.Width + 1)
			current.Height = geom.NextPowerOfTwo(current.Height + 1)
		}

		if current.Width > maxSide {
			current.Width = maxSide
		}
		if current.Height > maxSide {
			current.Height = maxSide
		}
		if current == prev {
			return geom.Size{}, nil, nil
		}
	}
}

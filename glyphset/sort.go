package glyphset

import "sort"

// Sorted returns pairs ordered by (typeface identity, scaled point size
// discriminator, glyph index), so that packing an identical pair set twice
// produces an identical layout regardless of the Go map iteration order the
// pairs were collected in (§9 "deterministic packing").
func Sorted(pairs []FontGlyphPair) []FontGlyphPair {
	out := make([]FontGlyphPair, len(pairs))
	copy(out, pairs)
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].Key(), out[j].Key()
		if ki.fontKey != kj.fontKey {
			return ki.fontKey < kj.fontKey
		}
		return ki.glyphIndex < kj.glyphIndex
	})
	return out
}

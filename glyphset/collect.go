package glyphset

// Set is a deduplicated collection of FontGlyphPair, keyed by PairKey.
// Iteration order over a Go map is unspecified; callers that need
// deterministic output should use Sorted.
type Set struct {
	byKey map[PairKey]FontGlyphPair
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{byKey: make(map[PairKey]FontGlyphPair)}
}

// Add inserts pair, deduplicating by PairKey.
func (s *Set) Add(pair FontGlyphPair) {
	s.byKey[pair.Key()] = pair
}

// Len returns the number of unique pairs collected.
func (s *Set) Len() int {
	return len(s.byKey)
}

// Get returns the pair stored under key, if any.
func (s *Set) Get(key PairKey) (FontGlyphPair, bool) {
	p, ok := s.byKey[key]
	return p, ok
}

// All returns every collected pair, in unspecified order.
func (s *Set) All() []FontGlyphPair {
	out := make([]FontGlyphPair, 0, len(s.byKey))
	for _, p := range s.byKey {
		out = append(out, p)
	}
	return out
}

// Collect consumes it to exhaustion, inserting one FontGlyphPair per glyph
// position across every run of every frame (§4.E). Complexity is O(total
// glyphs); a single pass, order irrelevant.
func Collect(it FrameIterator) *Set {
	set := NewSet()
	for {
		frame := it.Next()
		if frame == nil {
			break
		}
		for _, run := range frame.Runs {
			for _, pos := range run.Positions {
				set.Add(FontGlyphPair{Font: run.Font, Glyph: pos.Glyph})
			}
		}
	}
	return set
}

// Package pack implements the greedy rectangle packer used to place glyphs
// (and nothing else) into an atlas (§4.D). It is a shelf packer: rectangles
// are placed left-to-right on horizontal shelves of growing height, and a
// new shelf opens when the current one runs out of width or cannot grow
// tall enough. The packer does not add its own padding; callers pad the
// requested width/height before calling Add, matching how the atlas builder
// inserts glyphs as (w+2, h+2) (§4.J step 3/4).
package pack

// Packer packs rectangles into a fixed-size area. Add is the only mutating
// operation; there is no removal. A Packer is deterministic: packing an
// identical sequence of (w, h) requests twice produces identical
// placements.
type Packer interface {
	// Add finds space for a w x h rectangle and returns its top-left
	// corner. ok is false if no space remains.
	Add(w, h uint32) (x, y uint32, ok bool)

	// Width and Height report the packer's fixed area.
	Width() uint32
	Height() uint32
}

// shelf is one horizontal strip of the packed area.
type shelf struct {
	y      uint32 // top of the shelf
	height uint32 // height of the tallest item placed so far
	x      uint32 // next free x offset
}

// Shelf is a shelf-based Packer.
type Shelf struct {
	width, height uint32
	shelves       []shelf
}

// NewShelf creates a packer for a width x height area.
func NewShelf(width, height uint32) *Shelf {
	return &Shelf{
		width:   width,
		height:  height,
		shelves: make([]shelf, 0, 16),
	}
}

// Width reports the packer's fixed width.
func (s *Shelf) Width() uint32 { return s.width }

// Height reports the packer's fixed height.
func (s *Shelf) Height() uint32 { return s.height }

// Add implements Packer.
func (s *Shelf) Add(w, h uint32) (x, y uint32, ok bool) {
	if w == 0 || h == 0 || w > s.width || h > s.height {
		return 0, 0, false
	}

	for i := range s.shelves {
		sh := &s.shelves[i]

		if sh.x+w > s.width {
			continue
		}
		if h > sh.height {
			// Only the last shelf can grow taller, and only if there
			// is still room below it.
			if i != len(s.shelves)-1 {
				continue
			}
			if sh.y+h > s.height {
				continue
			}
			sh.height = h
			x, y = sh.x, sh.y
			sh.x += w
			return x, y, true
		}

		x, y = sh.x, sh.y
		sh.x += w
		return x, y, true
	}

	// No existing shelf fits; open a new one below the last.
	var nextY uint32
	if n := len(s.shelves); n > 0 {
		last := s.shelves[n-1]
		nextY = last.y + last.height
	}
	if nextY+h > s.height || w > s.width {
		return 0, 0, false
	}
	s.shelves = append(s.shelves, shelf{y: nextY, height: h, x: w})
	return 0, nextY, true
}

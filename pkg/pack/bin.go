package pack

// Bin tracks the free space of a fixed-size sheet and places rectangles
// into it one at a time. The free-rectangle list is maximal: entries may
// overlap each other, but no entry is ever fully contained in another.
//
// A Bin owns its free list outright; it shares no state with other bins,
// so independent packing attempts never interfere. A single Bin is not
// safe for concurrent use: Place both reads and mutates the free list.
type Bin struct {
	width  int
	height int
	free   []Rect
}

// NewBin creates a bin of the given size with all area free.
// Width and height must be positive.
func NewBin(width, height int) *Bin {
	return &Bin{
		width:  width,
		height: height,
		free:   []Rect{{X: 0, Y: 0, Width: width, Height: height}},
	}
}

// Width returns the bin's fixed width.
func (b *Bin) Width() int { return b.width }

// Height returns the bin's fixed height.
func (b *Bin) Height() int { return b.height }

// Place finds a position for a width×height rectangle using Best Area Fit:
// among all free rectangles large enough to hold it, the one leaving the
// least leftover area wins. Ties are broken by lowest Y, then lowest X of
// the candidate free rectangle, which makes placement fully deterministic.
//
// The second return value is false when no free rectangle can hold the
// item at the bin's current size. This is an expected outcome, not an
// error; the caller decides whether to retry at a larger size.
func (b *Bin) Place(width, height int) (Point, bool) {
	bestIdx := -1
	bestScore := 0

	for i, fr := range b.free {
		if width > fr.Width || height > fr.Height {
			continue
		}
		score := fr.Area() - width*height
		if bestIdx == -1 || score < bestScore ||
			(score == bestScore && (fr.Y < b.free[bestIdx].Y ||
				(fr.Y == b.free[bestIdx].Y && fr.X < b.free[bestIdx].X))) {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx == -1 {
		return Point{}, false
	}

	placed := Rect{X: b.free[bestIdx].X, Y: b.free[bestIdx].Y, Width: width, Height: height}
	b.split(placed)
	b.prune()

	return Point{X: placed.X, Y: placed.Y}, true
}

// split removes every free rectangle that overlaps placed and replaces it
// with up to four residual strips (left, right, top, bottom slivers outside
// the placed extent). Strips with zero width or height are discarded.
// Non-overlapping free rectangles are kept unchanged.
func (b *Bin) split(placed Rect) {
	next := make([]Rect, 0, len(b.free)+3)
	for _, fr := range b.free {
		if !fr.Overlaps(placed) {
			next = append(next, fr)
			continue
		}

		// Left strip
		if placed.X > fr.X {
			next = append(next, Rect{X: fr.X, Y: fr.Y, Width: placed.X - fr.X, Height: fr.Height})
		}
		// Right strip
		if placed.Right() < fr.Right() {
			next = append(next, Rect{X: placed.Right(), Y: fr.Y, Width: fr.Right() - placed.Right(), Height: fr.Height})
		}
		// Top strip
		if placed.Y > fr.Y {
			next = append(next, Rect{X: fr.X, Y: fr.Y, Width: fr.Width, Height: placed.Y - fr.Y})
		}
		// Bottom strip
		if placed.Bottom() < fr.Bottom() {
			next = append(next, Rect{X: fr.X, Y: placed.Bottom(), Width: fr.Width, Height: fr.Bottom() - placed.Bottom()})
		}
	}
	b.free = next
}

// prune drops every free rectangle fully contained in another surviving
// free rectangle. The check runs pairwise over the whole list, not just
// freshly split strips: older fragments can be shadowed by strips produced
// much later. Among exact duplicates one copy survives.
func (b *Bin) prune() {
	removed := make([]bool, len(b.free))
	for i := range b.free {
		if removed[i] {
			continue
		}
		for j := range b.free {
			if i == j || removed[j] {
				continue
			}
			if b.free[j].Contains(b.free[i]) {
				removed[i] = true
				break
			}
		}
	}

	kept := b.free[:0]
	for i, fr := range b.free {
		if !removed[i] {
			kept = append(kept, fr)
		}
	}
	b.free = kept
}

// freeCount returns the current number of free rectangles. Used by tests
// to verify the containment invariant bounds list growth.
func (b *Bin) freeCount() int { return len(b.free) }

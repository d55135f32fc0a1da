package pack

// Rect is an axis-aligned rectangle with integer pixel coordinates.
// It is used both for free regions inside a Bin and for placed items.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the exclusive right edge (x + width).
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge (y + height).
func (r Rect) Bottom() int { return r.Y + r.Height }

// Area returns the rectangle's area in pixels.
func (r Rect) Area() int { return r.Width * r.Height }

// Overlaps reports whether r and o share any interior area.
// Rectangles that merely touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X &&
		r.Y < o.Bottom() && r.Bottom() > o.Y
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Point is an integer position inside a Bin.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

package pack

import "testing"

func TestBinPlaceFirstAtOrigin(t *testing.T) {
	b := NewBin(100, 100)

	pos, ok := b.Place(30, 20)
	if !ok {
		t.Fatal("Place should succeed in an empty bin")
	}
	if pos != (Point{X: 0, Y: 0}) {
		t.Errorf("first placement = %+v, want origin", pos)
	}
}

func TestBinPlaceTooLarge(t *testing.T) {
	b := NewBin(50, 50)

	if _, ok := b.Place(51, 10); ok {
		t.Error("Place should fail when width exceeds the bin")
	}
	if _, ok := b.Place(10, 51); ok {
		t.Error("Place should fail when height exceeds the bin")
	}

	// Failure must not consume free space.
	if pos, ok := b.Place(50, 50); !ok || pos != (Point{}) {
		t.Errorf("bin should still be fully free, got %+v, %v", pos, ok)
	}
}

func TestBinPlaceExactFit(t *testing.T) {
	b := NewBin(40, 40)

	if _, ok := b.Place(40, 40); !ok {
		t.Fatal("exact-size item should fit")
	}
	if _, ok := b.Place(1, 1); ok {
		t.Error("bin should be full after exact fit")
	}
}

func TestBinBestAreaFit(t *testing.T) {
	// Fill the top-left 60x60 so the free list holds two candidate regions
	// of different leftover area: a 40-wide column and a 40-tall row.
	b := NewBin(100, 100)
	if _, ok := b.Place(60, 60); !ok {
		t.Fatal("setup placement failed")
	}

	// A 40x40 item fits the 40x100 column (waste 2400) and the 100x40 row
	// (waste 2400); the tie breaks to the lower-Y region, the column at
	// (60,0).
	pos, ok := b.Place(40, 40)
	if !ok {
		t.Fatal("Place should succeed")
	}
	if pos != (Point{X: 60, Y: 0}) {
		t.Errorf("tie should break to lowest y, got %+v", pos)
	}
}

func TestBinPlacePrefersLeastWaste(t *testing.T) {
	// After a 70x30 placement the free list holds a 30x100 column
	// (area 3000) and a 100x70 band (area 7000). A 30x30 item fits both;
	// the column wastes less.
	b := NewBin(100, 100)
	if _, ok := b.Place(70, 30); !ok {
		t.Fatal("setup placement failed")
	}

	pos, ok := b.Place(30, 30)
	if !ok {
		t.Fatal("Place should succeed")
	}
	if pos != (Point{X: 70, Y: 0}) {
		t.Errorf("expected least-waste region at (70,0), got %+v", pos)
	}
}

func TestBinSequentialPlacementsDoNotOverlap(t *testing.T) {
	b := NewBin(64, 64)
	sizes := [][2]int{{32, 32}, {32, 32}, {16, 16}, {16, 16}, {16, 16}, {32, 32}}

	var placed []Rect
	for _, s := range sizes {
		pos, ok := b.Place(s[0], s[1])
		if !ok {
			t.Fatalf("Place(%d,%d) failed", s[0], s[1])
		}
		r := Rect{X: pos.X, Y: pos.Y, Width: s[0], Height: s[1]}
		if r.Right() > 64 || r.Bottom() > 64 || r.X < 0 || r.Y < 0 {
			t.Errorf("placement %+v outside bin", r)
		}
		for _, prev := range placed {
			if r.Overlaps(prev) {
				t.Errorf("placement %+v overlaps %+v", r, prev)
			}
		}
		placed = append(placed, r)
	}
}

func TestBinFreeListContainmentInvariant(t *testing.T) {
	b := NewBin(200, 200)
	sizes := [][2]int{{50, 30}, {30, 50}, {70, 70}, {20, 90}, {90, 20}, {40, 40}}

	for _, s := range sizes {
		if _, ok := b.Place(s[0], s[1]); !ok {
			t.Fatalf("Place(%d,%d) failed", s[0], s[1])
		}
		for i, a := range b.free {
			if a.Width <= 0 || a.Height <= 0 {
				t.Fatalf("degenerate free rect %+v", a)
			}
			for j, o := range b.free {
				if i != j && o.Contains(a) {
					t.Fatalf("free rect %+v contained in %+v after prune", a, o)
				}
			}
		}
	}
}

func TestBinFreeListStaysBounded(t *testing.T) {
	// With pruning, the free list must stay far below the quadratic blowup
	// an unpruned overlapping split would produce.
	b := NewBin(400, 400)
	count := 0
	for i := 0; i < 100; i++ {
		if _, ok := b.Place(20, 20); !ok {
			break
		}
		count++
	}
	if count != 100 {
		t.Fatalf("placed %d of 100 items", count)
	}
	if n := b.freeCount(); n > 300 {
		t.Errorf("free list grew to %d entries, pruning is not bounding it", n)
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}

	if r.Right() != 40 || r.Bottom() != 60 || r.Area() != 1200 {
		t.Errorf("edge/area helpers wrong: right=%d bottom=%d area=%d", r.Right(), r.Bottom(), r.Area())
	}

	if !r.Overlaps(Rect{X: 35, Y: 55, Width: 10, Height: 10}) {
		t.Error("rects sharing interior area should overlap")
	}
	if r.Overlaps(Rect{X: 40, Y: 20, Width: 10, Height: 10}) {
		t.Error("edge-adjacent rects should not overlap")
	}

	if !r.Contains(Rect{X: 10, Y: 20, Width: 30, Height: 40}) {
		t.Error("a rect should contain itself")
	}
	if r.Contains(Rect{X: 10, Y: 20, Width: 31, Height: 40}) {
		t.Error("wider rect should not be contained")
	}
}

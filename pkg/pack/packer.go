package pack

import (
	"context"
	"math"
	"sort"

	"github.com/spritepack/spritepack/pkg/errors"
)

// DefaultMaxAttempts bounds the grow-and-retry loop. The initial sheet is
// already large enough to hold the biggest item on both axes, so failures
// come from fragmentation alone and resolve within a handful of doublings;
// the cap exists so a logic error can never spin forever.
const DefaultMaxAttempts = 64

// Item is one rectangle to pack: an opaque identifier plus fixed pixel
// dimensions. Width and height must be positive.
type Item struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Placement is a packed item: its identifier, position, and the item's
// original dimensions.
type Placement struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Layout is the result of a successful pack: one placement per input item
// plus the tight bounding box of the placed content, anchored at the origin.
type Layout struct {
	Placements []Placement `json:"placements"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
}

// Packer packs item sets into sheets. The zero value is not ready for use;
// create one with NewPacker.
type Packer struct {
	// MaxAttempts caps the number of sizing attempts before giving up.
	MaxAttempts int
}

// NewPacker creates a packer with default settings.
func NewPacker() *Packer {
	return &Packer{MaxAttempts: DefaultMaxAttempts}
}

// Pack packs items with default settings. See Packer.Pack.
func Pack(ctx context.Context, items []Item) (*Layout, error) {
	return NewPacker().Pack(ctx, items)
}

// Pack computes non-overlapping placements for every item and the tight
// bounding box that contains them.
//
// The sheet starts as a square sized from the total item area, clamped up
// so the largest item fits on each axis. Items are placed largest-first
// (descending max side, stable for equal sizes) into a fresh Bin; if any
// item fails to place, the attempt is discarded and the smaller sheet
// dimension doubles. The returned size is trimmed to the placed content,
// so the doubling slack never leaks into the result.
//
// Pack fails fast before any packing work: an empty item set returns an
// EMPTY_INPUT error and any item with a non-positive dimension returns an
// INVALID_ITEM error. It never returns a partial layout.
func (p *Packer) Pack(ctx context.Context, items []Item) (*Layout, error) {
	if len(items) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no items to pack")
	}
	for _, it := range items {
		if it.Width <= 0 || it.Height <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidItem,
				"item %q has non-positive dimensions %dx%d", it.ID, it.Width, it.Height)
		}
	}

	width, height := initialSize(items)
	ordered := sortForPacking(items)

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if layout, ok := tryPack(ordered, width, height); ok {
			return layout, nil
		}

		// Grow the smaller dimension and retry with a fresh bin.
		if width <= height {
			width *= 2
		} else {
			height *= 2
		}
	}

	return nil, errors.New(errors.ErrCodeInternal,
		"packing did not converge after %d attempts", maxAttempts)
}

// initialSize computes the starting sheet dimensions: a square roughly
// matching the total item area, at least as large as the biggest single
// item on each axis so the first attempt can never fail on raw capacity.
func initialSize(items []Item) (width, height int) {
	totalArea := 0
	maxW, maxH := 0, 0
	for _, it := range items {
		totalArea += it.Width * it.Height
		maxW = max(maxW, it.Width)
		maxH = max(maxH, it.Height)
	}

	side := int(math.Sqrt(float64(totalArea))) + 1
	return max(side, maxW), max(side, maxH)
}

// sortForPacking orders items descending by their larger side. Placing the
// largest footprints first minimizes early fragmentation. The sort is
// stable so equal-sized items keep their input order, which keeps the whole
// pipeline deterministic.
func sortForPacking(items []Item) []Item {
	ordered := make([]Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return max(ordered[i].Width, ordered[i].Height) > max(ordered[j].Width, ordered[j].Height)
	})
	return ordered
}

// tryPack attempts to place every item into a fresh bin of the given size.
// On the first item that does not fit it abandons the bin and reports
// failure; partial placements are never kept across attempts.
func tryPack(items []Item, width, height int) (*Layout, bool) {
	bin := NewBin(width, height)
	placements := make([]Placement, 0, len(items))

	for _, it := range items {
		pos, ok := bin.Place(it.Width, it.Height)
		if !ok {
			return nil, false
		}
		placements = append(placements, Placement{
			ID:     it.ID,
			X:      pos.X,
			Y:      pos.Y,
			Width:  it.Width,
			Height: it.Height,
		})
	}

	finalW, finalH := 0, 0
	for _, pl := range placements {
		finalW = max(finalW, pl.X+pl.Width)
		finalH = max(finalH, pl.Y+pl.Height)
	}

	return &Layout{Placements: placements, Width: finalW, Height: finalH}, true
}

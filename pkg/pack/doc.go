// Package pack implements 2D rectangle bin packing for sprite sheets.
//
// # Overview
//
// The package packs a set of identified rectangles (icons with fixed pixel
// dimensions) into a single enclosing sheet with integer coordinates and no
// overlaps, growing the sheet until everything fits and then trimming it to
// the tight bounding box of the placed content.
//
// Two layers make up the engine:
//
//   - [Bin] tracks the free space of a fixed-size sheet and places one
//     rectangle at a time using the Best Area Fit heuristic over a maximal
//     free-rectangle list.
//   - [Packer] chooses an initial sheet size from the total item area, feeds
//     items largest-first through fresh bins, and doubles the smaller sheet
//     dimension whenever an attempt fails.
//
// # Usage
//
//	items := []pack.Item{
//	    {ID: "home", Width: 32, Height: 32},
//	    {ID: "banner", Width: 120, Height: 40},
//	}
//	layout, err := pack.Pack(ctx, items)
//	if err != nil {
//	    return err
//	}
//	for _, p := range layout.Placements {
//	    fmt.Printf("%s at (%d,%d)\n", p.ID, p.X, p.Y)
//	}
//
// Output is deterministic: identical input sequences produce identical
// layouts. Placements never overlap, every input ID appears exactly once,
// and the reported sheet size has no slack beyond the placed content.
package pack

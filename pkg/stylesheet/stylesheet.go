// Package stylesheet renders the CSS that addresses icons inside a packed
// sprite sheet.
//
// The output has three parts: a base class carrying the sheet image and the
// common element size, a retina class that swaps in the upscaled sheet with
// background-size pinned to the base dimensions, and one class per icon that
// shifts the background to the icon's packed position.
package stylesheet

import (
	"fmt"
	"strings"

	"github.com/spritepack/spritepack/pkg/errors"
	"github.com/spritepack/spritepack/pkg/pack"
)

// DefaultPrefix is the icon class prefix when none is configured.
const DefaultPrefix = "icon"

// Options configure stylesheet generation.
type Options struct {
	// SheetURL is the url() of the base sheet image.
	SheetURL string

	// RetinaURL is the url() of the retina sheet image. Empty disables the
	// retina rule.
	RetinaURL string

	// Prefix is the icon class prefix. Classes are named <prefix>-<name>.
	Prefix string
}

// Generate renders the stylesheet for a packed layout.
//
// Element size on the base class is the maximum icon width and height, the
// way fixed-size icon fonts behave. Per-icon classes carry the negated packed
// position so the sheet slides under the element viewport.
func Generate(layout pack.Layout, opts Options) (string, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if err := errors.ValidateClassPrefix(prefix); err != nil {
		return "", err
	}
	if len(layout.Placements) == 0 {
		return "", errors.New(errors.ErrCodeEmptyInput, "layout has no placements")
	}

	maxW, maxH := 0, 0
	for _, p := range layout.Placements {
		maxW = max(maxW, p.Width)
		maxH = max(maxH, p.Height)
	}

	var b strings.Builder

	fmt.Fprintf(&b, ".sprite {\n")
	fmt.Fprintf(&b, "  background-image: url('%s');\n", opts.SheetURL)
	fmt.Fprintf(&b, "  background-repeat: no-repeat;\n")
	fmt.Fprintf(&b, "  display: inline-block;\n")
	fmt.Fprintf(&b, "  width: %dpx;\n", maxW)
	fmt.Fprintf(&b, "  height: %dpx;\n", maxH)
	fmt.Fprintf(&b, "}\n\n")

	if opts.RetinaURL != "" {
		fmt.Fprintf(&b, ".retina {\n")
		fmt.Fprintf(&b, "  background-image: url('%s');\n", opts.RetinaURL)
		fmt.Fprintf(&b, "  background-size: %dpx %dpx;\n", layout.Width, layout.Height)
		fmt.Fprintf(&b, "}\n\n")
	}

	for _, p := range layout.Placements {
		fmt.Fprintf(&b, ".%s-%s {\n", prefix, p.ID)
		fmt.Fprintf(&b, "  background-position: %dpx %dpx;\n", -p.X, -p.Y)
		fmt.Fprintf(&b, "}\n\n")
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

// Package pipeline provides the core sprite-building pipeline.
//
// This package implements the complete load → pack → render pipeline that
// can be used by the CLI and the preview server. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and decode source images from a directory
//  2. Pack: Compute a tight sheet layout for the image rectangles
//  3. Render: Compose the sheet, encode the PNGs, and emit the stylesheet
//
// Pack and render results are cached by content hash, so unchanged inputs
// skip straight to the artifacts.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Src: "./icons",
//	    Out: "./dist",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sheet := result.Artifacts[pipeline.ArtifactSheet]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spritepack/spritepack/pkg/cache"
	"github.com/spritepack/spritepack/pkg/errors"
	"github.com/spritepack/spritepack/pkg/pack"
	"github.com/spritepack/spritepack/pkg/pngopt"
)

const (
	// DefaultBaseName is the filename stem for the generated artifacts.
	DefaultBaseName = "sprite"

	// DefaultPrefix is the CSS class prefix for icon rules.
	DefaultPrefix = "icon"

	// DefaultRetinaScale is the resolution multiplier for the retina sheet.
	DefaultRetinaScale = 2

	// DefaultMaxAttempts caps the packer's grow-and-retry loop.
	DefaultMaxAttempts = pack.DefaultMaxAttempts
)

// Artifact names for the pipeline outputs.
const (
	ArtifactSheet      = "sheet"
	ArtifactRetina     = "retina"
	ArtifactStylesheet = "css"
)

// Options contains all configuration for the sprite pipeline.
// This struct supports JSON serialization so runs can be reproduced.
type Options struct {
	// Src is the directory containing the source images.
	Src string `json:"src"`

	// Out is the directory the artifacts are written to.
	Out string `json:"out,omitempty"`

	// BaseName is the filename stem: <base>.png, <base>@2x.png, <base>.css.
	BaseName string `json:"base_name,omitempty"`

	// Prefix is the CSS class prefix for icon rules.
	Prefix string `json:"prefix,omitempty"`

	// RetinaScale is the upscale factor for the retina sheet. A scale of 1
	// disables the retina variant.
	RetinaScale int `json:"retina_scale,omitempty"`

	// Crush re-compresses the PNGs with external tools when available.
	Crush bool `json:"crush,omitempty"`

	// MaxAttempts overrides the packer's retry cap. Zero uses the default.
	MaxAttempts int `json:"max_attempts,omitempty"`

	// Refresh bypasses the cache and recomputes every stage.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the packed sheet layout.
	Layout *pack.Layout

	// SourcesHash is the content hash of the source image set.
	SourcesHash string

	// Artifacts contains the rendered outputs keyed by artifact name.
	Artifacts map[string][]byte

	// Strategy is the PNG encoding that won for the base sheet.
	Strategy pngopt.Strategy

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount   int
	SheetWidth  int
	SheetHeight int
	Occupancy   float64
	LoadTime    time.Duration
	PackTime    time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the packed layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent, so calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Src == "" {
		return fmt.Errorf("src is required")
	}
	if err := errors.ValidatePath(o.Src); err != nil {
		return err
	}
	if o.Out != "" {
		if err := errors.ValidatePath(o.Out); err != nil {
			return err
		}
	}

	if o.BaseName == "" {
		o.BaseName = DefaultBaseName
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if err := errors.ValidateClassPrefix(o.Prefix); err != nil {
		return err
	}

	if o.RetinaScale == 0 {
		o.RetinaScale = DefaultRetinaScale
	}
	if err := errors.ValidateScale(o.RetinaScale); err != nil {
		return err
	}

	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// SheetName returns the base sheet filename.
func (o *Options) SheetName() string {
	return o.BaseName + ".png"
}

// RetinaName returns the retina sheet filename, or empty when retina
// output is disabled.
func (o *Options) RetinaName() string {
	if o.RetinaScale <= 1 {
		return ""
	}
	return fmt.Sprintf("%s@%dx.png", o.BaseName, o.RetinaScale)
}

// StylesheetName returns the CSS filename.
func (o *Options) StylesheetName() string {
	return o.BaseName + ".css"
}

// HasRetina reports whether a retina sheet is produced.
func (o *Options) HasRetina() bool {
	return o.RetinaScale > 1
}

// LayoutKeyOpts returns cache key options for the packing stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		MaxAttempts: o.MaxAttempts,
	}
}

// ArtifactKeyOpts returns cache key options for a rendered artifact.
func (o *Options) ArtifactKeyOpts(name string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Name:  name,
		Scale: o.RetinaScale,
		Crush: o.Crush,
	}
}

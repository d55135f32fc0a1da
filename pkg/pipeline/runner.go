package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spritepack/spritepack/pkg/cache"
	"github.com/spritepack/spritepack/pkg/pack"
	"github.com/spritepack/spritepack/pkg/pngopt"
	"github.com/spritepack/spritepack/pkg/sprite"
	"github.com/spritepack/spritepack/pkg/stylesheet"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger, it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → pack → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	sources, err := sprite.LoadDir(opts.Src)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ItemCount = len(sources)
	result.SourcesHash = SourcesHash(sources)

	r.Logger.Info("loaded sources",
		"count", len(sources),
		"duration", result.Stats.LoadTime)

	// Stage 2: Pack
	packStart := time.Now()
	layout, layoutHit, err := r.PackWithCacheInfo(ctx, sprite.Items(sources), result.SourcesHash, opts)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	result.Layout = layout
	result.Stats.PackTime = time.Since(packStart)
	result.Stats.SheetWidth = layout.Width
	result.Stats.SheetHeight = layout.Height
	result.Stats.Occupancy = occupancy(layout)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("packed layout",
		"sheet", fmt.Sprintf("%dx%d", layout.Width, layout.Height),
		"occupancy", fmt.Sprintf("%.1f%%", result.Stats.Occupancy*100),
		"duration", result.Stats.PackTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, strategy, renderHit, err := r.RenderWithCacheInfo(ctx, sources, *layout, result.SourcesHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Strategy = strategy
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"count", len(artifacts),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PackWithCacheInfo computes the sheet layout with caching and reports
// whether the result came from cache.
func (r *Runner) PackWithCacheInfo(ctx context.Context, items []pack.Item, sourcesHash string, opts Options) (*pack.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.LayoutKey(sourcesHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached pack.Layout
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	packer := pack.NewPacker()
	packer.MaxAttempts = opts.MaxAttempts
	layout, err := packer.Pack(ctx, items)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(layout); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return layout, false, nil
}

// Pack is a convenience wrapper that discards the cache hit info.
func (r *Runner) Pack(ctx context.Context, items []pack.Item, sourcesHash string, opts Options) (*pack.Layout, error) {
	layout, _, err := r.PackWithCacheInfo(ctx, items, sourcesHash, opts)
	return layout, err
}

// RenderWithCacheInfo composes and encodes the sheet artifacts with caching
// and reports whether every artifact came from cache. The cached strategy is
// not recoverable on a full cache hit, so it is reported as empty then.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, sources []sprite.Source, layout pack.Layout, sourcesHash string, opts Options) (map[string][]byte, pngopt.Strategy, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	layoutData, err := json.Marshal(layout)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	// Artifacts depend on pixel content, not just the layout geometry.
	renderHash := cache.Hash(append(layoutData, sourcesHash...))

	names := []string{ArtifactSheet, ArtifactStylesheet}
	if opts.HasRetina() {
		names = append(names, ArtifactRetina)
	}

	// Try to get all artifacts from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(names))
		allCached := true
		for _, name := range names {
			cacheKey := r.Keyer.ArtifactKey(renderHash, opts.ArtifactKeyOpts(name))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				allCached = false
				break
			}
			artifacts[name] = data
		}
		if allCached {
			return artifacts, "", true, nil
		}
	}

	rendered, strategy, err := r.render(ctx, sources, layout, opts)
	if err != nil {
		return nil, "", false, err
	}

	for name, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(renderHash, opts.ArtifactKeyOpts(name))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, strategy, false, nil
}

// render composes the sheet and produces every artifact uncached.
func (r *Runner) render(ctx context.Context, sources []sprite.Source, layout pack.Layout, opts Options) (map[string][]byte, pngopt.Strategy, error) {
	sheet, err := sprite.Compose(sources, layout, opts.RetinaScale)
	if err != nil {
		return nil, "", err
	}

	base, err := pngopt.Encode(sheet.Base)
	if err != nil {
		return nil, "", err
	}

	artifacts := map[string][]byte{
		ArtifactSheet: base.Data,
	}

	if sheet.Retina != nil {
		retina, err := pngopt.Encode(sheet.Retina)
		if err != nil {
			return nil, "", err
		}
		artifacts[ArtifactRetina] = retina.Data
	}

	if opts.Crush {
		for name, data := range artifacts {
			crushed, err := crushBytes(ctx, data)
			if err != nil {
				return nil, "", fmt.Errorf("crush %s: %w", name, err)
			}
			artifacts[name] = crushed
		}
	}

	css, err := stylesheet.Generate(layout, stylesheet.Options{
		SheetURL:  opts.SheetName(),
		RetinaURL: opts.RetinaName(),
		Prefix:    opts.Prefix,
	})
	if err != nil {
		return nil, "", err
	}
	artifacts[ArtifactStylesheet] = []byte(css)

	return artifacts, base.Strategy, nil
}

// WriteArtifacts writes the rendered artifacts into the output directory
// using the filenames derived from the options.
func WriteArtifacts(dir string, opts Options, artifacts map[string][]byte) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	files := map[string]string{
		ArtifactSheet:      opts.SheetName(),
		ArtifactRetina:     opts.RetinaName(),
		ArtifactStylesheet: opts.StylesheetName(),
	}
	for name, data := range artifacts {
		filename := files[name]
		if filename == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// crushBytes runs the external PNG crushers over an in-memory artifact via
// a temp file, so cached artifacts are stored post-crush.
func crushBytes(ctx context.Context, data []byte) ([]byte, error) {
	tmp, err := os.CreateTemp("", "spritepack-*.png")
	if err != nil {
		return nil, err
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	if err := pngopt.Crush(ctx, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// SourcesHash derives the content hash of a source set from each image's
// name, dimensions, and file digest. Every layout and artifact cache key
// folds this hash in, so callers that pack outside Execute must use the
// same derivation to share cached results.
func SourcesHash(sources []sprite.Source) string {
	type digest struct {
		Name   string `json:"name"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Hash   string `json:"hash"`
	}
	digests := make([]digest, len(sources))
	for i, src := range sources {
		digests[i] = digest{Name: src.Name, Width: src.Width, Height: src.Height, Hash: src.Hash}
	}
	data, _ := json.Marshal(digests)
	return cache.Hash(data)
}

// occupancy is the fraction of the sheet covered by placed items.
func occupancy(layout *pack.Layout) float64 {
	if layout.Width == 0 || layout.Height == 0 {
		return 0
	}
	area := 0
	for _, p := range layout.Placements {
		area += p.Width * p.Height
	}
	return float64(area) / float64(layout.Width*layout.Height)
}

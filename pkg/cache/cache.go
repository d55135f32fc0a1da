// Package cache provides content-addressed caching for pipeline stages.
//
// The build pipeline caches two kinds of results: packed layouts (keyed by
// the item set) and rendered sheet artifacts (keyed by the layout). Three
// backends implement the same interface:
//   - FileCache: file-based storage for local CLI use (XDG cache dir)
//   - RedisCache: shared storage for CI or multi-machine setups
//   - NullCache: no-op backend for --no-cache and tests
package cache

import (
	"context"
	"time"
)

// TTLs for the different cached stages. Layouts and artifacts are pure
// functions of their inputs, so the TTLs exist only to bound disk usage.
const (
	// TTLLayout is how long packed layouts are kept.
	TTLLayout = 30 * 24 * time.Hour

	// TTLArtifact is how long rendered sheet artifacts are kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache storage backends.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of zero means no
	// expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// LayoutKeyOpts are the packing options that influence a layout result.
type LayoutKeyOpts struct {
	MaxAttempts int `json:"max_attempts"`
}

// ArtifactKeyOpts are the rendering options that influence a sheet artifact.
type ArtifactKeyOpts struct {
	Name  string `json:"name"`
	Scale int    `json:"scale"`
	Crush bool   `json:"crush"`
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey generates a key for a packed layout from the hash of the
	// item set and the packing options.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered sheet from the hash of
	// the layout and the rendering options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for a packed layout.
func (k *DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey generates a key for a rendered sheet artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Package cache provides content-addressed caching for pipeline results.
//
// Imports, generated text, layouts and rendered artifacts are pure functions
// of their inputs, so each is stored under a key derived from a SHA-256 hash
// of the input bytes plus the options that affect the output. A [Keyer]
// builds those keys; a [Cache] stores opaque bytes under them.
//
// Backends:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [MemoryCache]: process-local map, for tests and the server
//   - [RedisCache]: shared cache for multiple server instances
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default TTLs per entry type. Entries are content-addressed, so expiry only
// bounds storage growth.
const (
	ImportTTL   = 24 * time.Hour
	TextTTL     = 24 * time.Hour
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// ImportKey identifies the graph document imported from a script.
	ImportKey(scriptHash string) string

	// TextKey identifies the text generated from a graph document.
	TextKey(graphHash string) string

	// LayoutKey identifies a layout pass over a graph document.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of a graph document.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout options that affect the result.
type LayoutKeyOpts struct {
	HGap float64 `json:"hgap"`
	VGap float64 `json:"vgap"`
}

// ArtifactKeyOpts are the render options that affect the artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
	Pinned   bool   `json:"pinned"`
}

// DefaultKeyer generates unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ImportKey implements Keyer.
func (DefaultKeyer) ImportKey(scriptHash string) string {
	return fmt.Sprintf("import:%s", scriptHash)
}

// TextKey implements Keyer.
func (DefaultKeyer) TextKey(graphHash string) string {
	return fmt.Sprintf("text:%s", graphHash)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

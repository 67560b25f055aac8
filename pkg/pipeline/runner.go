package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wzrd/pkg/cache"
	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/eval"
	"github.com/matzehuels/wzrd/pkg/core/importer"
	"github.com/matzehuels/wzrd/pkg/core/template"
	"github.com/matzehuels/wzrd/pkg/graph"
	"github.com/matzehuels/wzrd/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeImport   = "import"
	keyTypeText     = "text"
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, catalog and logger. Graphs
// passed to its methods are owned by the caller; a Runner may be shared by
// goroutines working on different graphs.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Catalog *template.Catalog
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
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Catalog: template.NewCatalog(),
	}
}

// Execute runs import → layout → generate → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Import
	start := time.Now()
	g, sigs, hit, err := r.ImportWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	result.Graph, result.Signatures = g, sigs
	result.Stats.ImportTime = time.Since(start)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.ConnectionCount = g.ConnectionCount()
	result.CacheInfo.ImportHit = hit

	r.Logger.Info("imported script",
		"nodes", g.NodeCount(),
		"connections", g.ConnectionCount(),
		"signatures", sigs.Len(),
		"duration", result.Stats.ImportTime)

	// Stage 2: Layout
	if !opts.NoLayout && g.NodeCount() > 0 {
		start = time.Now()
		lay, hit, err := r.LayoutWithCacheInfo(ctx, g, sigs, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		result.Layout = lay
		result.Stats.LayoutTime = time.Since(start)
		result.CacheInfo.LayoutHit = hit

		r.Logger.Info("computed layout",
			"positions", len(lay.Positions),
			"duration", result.Stats.LayoutTime)
	}

	// Stage 3: Generate
	start = time.Now()
	result.Text, result.CacheInfo.GenerateHit = r.GenerateWithCacheInfo(ctx, g, sigs)
	result.Stats.GenerateTime = time.Since(start)
	result.GraphHash = graphHash(g, sigs)

	// Stage 4: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, sigs, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ImportWithCacheInfo imports opts.Script with caching and returns cache hit info.
func (r *Runner) ImportWithCacheInfo(ctx context.Context, opts Options) (*dag.Graph, *importer.SignatureStack, bool, error) {
	if err := opts.ValidateForImport(); err != nil {
		return nil, nil, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnImportStart(ctx, len(opts.Script))
	start := time.Now()

	cacheKey := r.Keyer.ImportKey(cache.Hash([]byte(opts.Script)))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, ok := r.get(ctx, keyTypeImport, cacheKey); ok {
			g, sigs, err := graph.LoadGraph(data)
			if err == nil {
				hooks.OnImportComplete(ctx, g.NodeCount(), time.Since(start), nil)
				return g, sigs, true, nil
			}
			r.Logger.Debug("discarding unreadable cached import", "key", cacheKey, "error", err)
		}
	}

	g, sigs, err := Import(opts.Script, r.Catalog, r.Logger)
	if err != nil {
		hooks.OnImportComplete(ctx, 0, time.Since(start), err)
		return nil, nil, false, err
	}
	if data, err := graph.MarshalGraph(g, sigs); err == nil {
		r.set(ctx, keyTypeImport, cacheKey, data, cache.ImportTTL)
	}

	hooks.OnImportComplete(ctx, g.NodeCount(), time.Since(start), nil)
	return g, sigs, false, nil
}

// Import is a convenience wrapper that calls ImportWithCacheInfo and discards the cache hit info.
func (r *Runner) Import(ctx context.Context, opts Options) (*dag.Graph, *importer.SignatureStack, error) {
	g, sigs, _, err := r.ImportWithCacheInfo(ctx, opts)
	return g, sigs, err
}

// LayoutWithCacheInfo lays out g, writes the positions into it and returns
// the layout with cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *dag.Graph, sigs *importer.SignatureStack, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	start := time.Now()

	// Positions are part of the document, so hash a layout-neutral form.
	hash := topologyHash(g, sigs)
	cacheKey := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if hash != "" {
		if data, ok := r.get(ctx, keyTypeLayout, cacheKey); ok {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				cached.Apply(g)
				hooks.OnLayoutComplete(ctx, len(cached.Positions), time.Since(start), nil)
				return cached, true, nil
			}
		}
	}

	lay, err := GenerateLayout(g, opts)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
		return graph.Layout{}, false, err
	}
	lay.Apply(g)

	if hash != "" {
		if data, err := graph.MarshalLayout(lay); err == nil {
			r.set(ctx, keyTypeLayout, cacheKey, data, cache.LayoutTTL)
		}
	}

	hooks.OnLayoutComplete(ctx, len(lay.Positions), time.Since(start), nil)
	return lay, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *dag.Graph, sigs *importer.SignatureStack, opts Options) (graph.Layout, error) {
	lay, _, err := r.LayoutWithCacheInfo(ctx, g, sigs, opts)
	return lay, err
}

// GenerateWithCacheInfo evaluates g into script text and reports whether the
// text came from the cache. Evaluation never fails; broken graphs produce the
// evaluator's fallback strings.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, g *dag.Graph, sigs *importer.SignatureStack) (string, bool) {
	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, g.NodeCount())
	start := time.Now()

	hash := topologyHash(g, sigs)
	cacheKey := r.Keyer.TextKey(hash)
	if hash != "" {
		if data, ok := r.get(ctx, keyTypeText, cacheKey); ok {
			text := string(data)
			hooks.OnGenerateComplete(ctx, len(text), eval.IsFallback(text), time.Since(start))
			return text, true
		}
	}

	text := eval.Evaluate(g, sigs, nil, r.Logger)
	if hash != "" {
		r.set(ctx, keyTypeText, cacheKey, []byte(text), cache.TextTTL)
	}

	r.Logger.Debug("generated text", "bytes", len(text), "duration", time.Since(start))
	hooks.OnGenerateComplete(ctx, len(text), eval.IsFallback(text), time.Since(start))
	return text, false
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, g *dag.Graph, sigs *importer.SignatureStack) string {
	text, _ := r.GenerateWithCacheInfo(ctx, g, sigs)
	return text
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *dag.Graph, sigs *importer.SignatureStack, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// Rendered output depends on positions, so hash the full document.
	hash := graphHash(g, sigs)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if hash != "" {
		for _, format := range opts.Formats {
			data, ok := r.get(ctx, keyTypeArtifact, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)))
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
	}

	rendered, err := Render(g, sigs, opts)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, false, err
	}

	if hash != "" {
		for format, data := range rendered {
			r.set(ctx, keyTypeArtifact, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), data, cache.ArtifactTTL)
		}
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *dag.Graph, sigs *importer.SignatureStack, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, sigs, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// graphHash hashes the full serialized document. It returns "" when the
// graph cannot be serialized, which disables caching for the call.
func graphHash(g *dag.Graph, sigs *importer.SignatureStack) string {
	data, err := graph.MarshalGraph(g, sigs)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// topologyHash hashes the document with all positions zeroed, so moving
// nodes does not invalidate layouts or generated text.
func topologyHash(g *dag.Graph, sigs *importer.SignatureStack) string {
	doc := graph.FromDAG(g, sigs)
	for i := range doc.Nodes {
		doc.Nodes[i].Position = dag.Point{}
	}
	data, err := graph.MarshalDocument(doc)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Package cli implements the wzrd command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wzrd/pkg/buildinfo"
	"github.com/matzehuels/wzrd/pkg/cache"
	"github.com/matzehuels/wzrd/pkg/config"
	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/importer"
	"github.com/matzehuels/wzrd/pkg/graph"
	"github.com/matzehuels/wzrd/pkg/pipeline"
	"github.com/matzehuels/wzrd/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "wzrd"

	// graphExt marks files that hold a serialized graph rather than a script.
	graphExt = ".json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded from --config (or the default location) before any
	// command runs.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "wzrd turns scripts into node graphs and back",
		Long: `wzrd imports a small scripting language into a dataflow node graph,
lays the graph out left to right, and generates the script text back from it.

Graphs can be rendered with Graphviz, persisted in a store, served over HTTP,
or edited live with 'wzrd watch'.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/wzrd/config.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if p := c.Config.Cache.Prefix; p != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), p)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheRedis:
		var rc *cache.RedisCache
		err := cache.RetryWithBackoff(ctx, func() error {
			var err error
			rc, err = cache.NewRedisCache(ctx, c.Config.Cache.URL)
			return err
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}

	dir := c.Config.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// openStore opens the configured graph store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, c.Config.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.Config.Store.Backend, err)
	}
	return s, nil
}

// pipelineOptions returns options seeded from the config file.
func (c *CLI) pipelineOptions() pipeline.Options {
	opts := pipeline.Options{Logger: c.Logger}
	c.Config.ApplyLayout(&opts)
	return opts
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/wzrd/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputPath derives an output file next to input: graph.json → graph<suffix>.
func outputPath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// =============================================================================
// Input Helpers
// =============================================================================

// isGraphFile reports whether path holds a serialized graph.
func isGraphFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), graphExt)
}

// readGraphFile loads a graph document from path.
func readGraphFile(path string) (*dag.Graph, *importer.SignatureStack, error) {
	doc, err := graph.ReadGraphFile(path)
	if err != nil {
		return nil, nil, err
	}
	g, sigs, err := graph.ToDAG(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, sigs, nil
}

// loadInput returns a graph for path: graph files are read directly, anything
// else is imported as a script.
func (c *CLI) loadInput(ctx context.Context, runner *pipeline.Runner, path string, opts pipeline.Options) (*dag.Graph, *importer.SignatureStack, bool, error) {
	if isGraphFile(path) {
		g, sigs, err := readGraphFile(path)
		return g, sigs, false, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, false, fmt.Errorf("read script: %w", err)
	}
	opts.Script = string(src)
	return runner.ImportWithCacheInfo(ctx, opts)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

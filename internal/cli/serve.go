package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wzrd/internal/api"
	"github.com/matzehuels/wzrd/pkg/observability/prom"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 10 * time.Second

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline and graph store over HTTP",
		Long: `Serve the pipeline and graph store over HTTP.

Import, generate, layout and render are exposed under /api/v1, together with
CRUD for stored graphs. Prometheus metrics are served at /metrics unless
disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, c.Config.Server.Metrics && !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, metrics bool) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := []api.Option{api.WithDefaults(c.pipelineOptions())}
	if metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom.New(reg).Register()
		opts = append(opts, api.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      api.New(runner, st, c.Logger, opts...).Handler(),
		ReadTimeout:  c.Config.Server.ReadTimeout.Duration,
		WriteTimeout: c.Config.Server.WriteTimeout.Duration,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	printSuccess("Serving on http://%s", ln.Addr())
	printKeyValue("Store", c.Config.Store.Backend)
	printKeyValue("Cache", c.Config.Cache.Backend)
	if metrics {
		printKeyValue("Metrics", "/metrics")
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wzrd/pkg/graph"
	"github.com/matzehuels/wzrd/pkg/pipeline"
)

// layoutCommand creates the layout command for positioning graph nodes.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		positions bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json|script]",
		Short: "Auto-layout a node graph",
		Long: `Auto-layout a node graph.

Nodes are placed right to left from the sink: each column of upstream nodes
sits one gap to the left of its consumer and is centered on it vertically.
Nodes reachable along several paths keep their first placement.

By default the graph is written back with the new positions (to -o, or over
the input graph). With --positions only the computed positions are written,
as <input>.layout.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, noCache, positions, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&positions, "positions", false, "write only the computed positions")
	cmd.Flags().Float64Var(&opts.HGap, "hgap", 0, "horizontal gap between columns (default from config)")
	cmd.Flags().Float64Var(&opts.VGap, "vgap", 0, "vertical gap between stacked nodes (default from config)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, noCache, positions bool, flags pipeline.Options) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions()
	if flags.HGap != 0 {
		opts.HGap = flags.HGap
	}
	if flags.VGap != 0 {
		opts.VGap = flags.VGap
	}

	g, sigs, _, err := c.loadInput(ctx, runner, input, opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	lay, hit, err := runner.LayoutWithCacheInfo(ctx, g, sigs, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if positions {
		if output == "" {
			output = outputPath(input, ".layout.json")
		}
		if err := graph.WriteLayoutFile(lay, output); err != nil {
			return err
		}
	} else {
		if output == "" {
			output = outputPath(input, graphExt)
		}
		if err := graph.WriteGraphFile(g, sigs, output); err != nil {
			return err
		}
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(g.NodeCount(), g.ConnectionCount(), hit)
	b := lay.Viewport.Bounds
	printDetail("Bounds: (%.0f, %.0f) to (%.0f, %.0f)", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	printNewline()
	printNextStep("Render", "wzrd render "+output)

	return nil
}

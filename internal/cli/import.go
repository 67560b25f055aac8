package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wzrd/pkg/graph"
	"github.com/matzehuels/wzrd/pkg/pipeline"
)

// importCommand creates the import command, which turns a script into graph JSON.
func (c *CLI) importCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "import [script]",
		Short: "Import a script into a node graph",
		Long: `Import a script into a node graph.

The script is parsed, every supported expression becomes a node, and the
nodes are wired by data flow. Function definitions are recorded as signatures
so 'generate' can wrap the code back into them. Unless --no-layout is given,
the graph is laid out with the sink at the origin.

The result is written as graph JSON (default: <script>.json).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <script>.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.NoLayout, "no-layout", false, "keep the default node placement")
	cmd.Flags().Float64Var(&opts.HGap, "hgap", 0, "horizontal gap between columns (default from config)")
	cmd.Flags().Float64Var(&opts.VGap, "vgap", 0, "vertical gap between stacked nodes (default from config)")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, input, output string, noCache bool, flags pipeline.Options) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions()
	opts.Script = string(src)
	opts.Refresh = flags.Refresh
	if flags.HGap != 0 {
		opts.HGap = flags.HGap
	}
	if flags.VGap != 0 {
		opts.VGap = flags.VGap
	}

	prog := newProgress(c.Logger)
	g, sigs, hit, err := runner.ImportWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Imported %d nodes", g.NodeCount()))

	if !flags.NoLayout && g.NodeCount() > 0 {
		if _, _, err := runner.LayoutWithCacheInfo(ctx, g, sigs, opts); err != nil {
			c.Logger.Warn("layout skipped", "err", err)
		}
	}

	if output == "-" {
		return graph.WriteGraph(g, sigs, os.Stdout)
	}
	if output == "" {
		output = outputPath(input, graphExt)
	}
	if err := graph.WriteGraphFile(g, sigs, output); err != nil {
		return err
	}

	printSuccess("Imported %s", input)
	printFile(output)
	printStats(g.NodeCount(), g.ConnectionCount(), hit)
	if sigs.Len() > 0 {
		top, _ := sigs.Peek()
		printDetail("Signature: %s(%d params)", top.Name, len(top.Params))
	}
	printNewline()
	printNextStep("Generate", "wzrd generate "+output)

	return nil
}

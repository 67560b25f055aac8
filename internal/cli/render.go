package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wzrd/pkg/pipeline"
	"github.com/matzehuels/wzrd/pkg/render"
)

// renderCommand creates the render command for drawing graphs.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		noLayout   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [graph.json|script]",
		Short: "Render a node graph as SVG, PNG, PDF or DOT",
		Long: `Render a node graph as SVG, PNG, PDF or DOT.

Nodes are drawn as records with their input ports on the left and output
ports on the right; the sink is highlighted. With --pinned the nodes keep
their stored positions (neato), otherwise Graphviz ranks them (dot).

A script input is imported and laid out first. JSON and YAML formats export
the graph document itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			opts.NoLayout = noLayout
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json, yaml (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noLayout, "no-layout", false, "do not lay out imported scripts")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show literal values of unwired inputs")
	cmd.Flags().BoolVar(&opts.Pinned, "pinned", false, "keep stored node positions")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, noCache bool, flags pipeline.Options) error {
	if needsConverter(flags.Formats) && !render.Available() {
		return fmt.Errorf("png/pdf output: %w (install librsvg)", render.ErrConverterMissing)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions()
	opts.Formats = flags.Formats
	opts.Detailed = flags.Detailed
	opts.Pinned = flags.Pinned
	opts.Scale = flags.Scale

	g, sigs, _, err := c.loadInput(ctx, runner, input, opts)
	if err != nil {
		return err
	}

	if !isGraphFile(input) && !flags.NoLayout && g.NodeCount() > 0 {
		if _, err := runner.Layout(ctx, g, sigs, opts); err != nil {
			c.Logger.Warn("layout skipped", "err", err)
		}
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, g, sigs, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(input, output, opts.Formats, artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(g.NodeCount(), g.ConnectionCount(), hit)
	return nil
}

// writeArtifacts writes one file per format. A single format honors output
// as the exact path; several formats treat it as a base name.
func writeArtifacts(input, output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	base := output
	if base == "" {
		base = outputPath(input, "")
	} else if len(formats) > 1 {
		base = outputPath(output, "")
	}

	var paths []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return paths, fmt.Errorf("renderer produced no %s output", f)
		}

		path := base + "." + f
		if output != "" && len(formats) == 1 {
			path = output
		}
		// Never overwrite the input graph with its own JSON export.
		if filepath.Clean(path) == filepath.Clean(input) {
			path = base + ".export." + f
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func needsConverter(formats []string) bool {
	return slices.Contains(formats, pipeline.FormatPNG) || slices.Contains(formats, pipeline.FormatPDF)
}

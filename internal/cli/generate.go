package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wzrd/pkg/core/eval"
)

// generateCommand creates the generate command, which evaluates a graph back
// into script text.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		plain   bool
	)

	cmd := &cobra.Command{
		Use:   "generate [graph.json|script]",
		Short: "Generate script text from a node graph",
		Long: `Generate script text from a node graph.

The sink node is evaluated recursively: each node's pattern is filled with the
text of whatever is wired into its inputs. The result is wrapped in the
innermost recorded function signature.

A script can be given instead of a graph; it is imported first, which makes
'generate' a quick way to normalize a script.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args[0], output, noCache, plain)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write text to a file instead of stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the text without decoration")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, input, output string, noCache, plain bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, sigs, _, err := c.loadInput(ctx, runner, input, c.pipelineOptions())
	if err != nil {
		return err
	}

	text, hit := runner.GenerateWithCacheInfo(ctx, g, sigs)
	fallback := eval.IsFallback(text)

	if output != "" {
		if err := os.WriteFile(output, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printSuccess("Generated %s", input)
		printFile(output)
		printStats(g.NodeCount(), g.ConnectionCount(), hit)
		return nil
	}

	if plain {
		fmt.Println(text)
		return nil
	}
	fmt.Println(renderCode(text, fallback))
	if fallback {
		printWarning("Graph has no sink or could not be evaluated")
	}
	return nil
}

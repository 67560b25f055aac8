package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	wzerrors "github.com/matzehuels/wzrd/pkg/errors"
	"github.com/matzehuels/wzrd/pkg/graph"
	"github.com/matzehuels/wzrd/pkg/store"
)

// storeCommand creates the store command group for persisted graphs.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save and load graphs in the configured store",
		Long: `Save and load graphs in the configured store.

The backend is chosen in the [store] section of the config file: file
(default, ~/.config/wzrd/graphs), memory, redis or mongo. The editor's own
graph lives under the key ` + store.DefaultKey + `.`,
	}

	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeLoadCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

func (c *CLI) storeSaveCommand() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "save [graph.json|script]",
		Short: "Save a graph under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			g, sigs, _, err := c.loadInput(ctx, runner, args[0], c.pipelineOptions())
			if err != nil {
				return err
			}
			return c.withStore(ctx, func(s store.Store) error {
				if err := store.SaveGraph(ctx, s, key, g, sigs); err != nil {
					return err
				}
				printSuccess("Saved %s", args[0])
				printKeyValue("Key", key)
				printKeyValue("Backend", c.Config.Store.Backend)
				printStats(g.NodeCount(), g.ConnectionCount(), false)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", store.DefaultKey, "store key")
	return cmd
}

func (c *CLI) storeLoadCommand() *cobra.Command {
	var (
		key    string
		output string
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a graph and write it as graph JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(s store.Store) error {
				g, sigs, err := store.LoadGraph(ctx, s, key)
				if err != nil {
					return err
				}
				if output == "" {
					return graph.WriteGraph(g, sigs, os.Stdout)
				}
				if err := graph.WriteGraphFile(g, sigs, output); err != nil {
					return err
				}
				printSuccess("Loaded %s", key)
				printFile(output)
				printStats(g.NodeCount(), g.ConnectionCount(), false)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", store.DefaultKey, "store key")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(s store.Store) error {
				keys, err := s.List(ctx)
				if err != nil {
					return wzerrors.Wrap(wzerrors.ErrCodeStore, err, "list graphs")
				}
				if len(keys) == 0 {
					printInfo("No stored graphs")
					return nil
				}
				for _, k := range keys {
					fmt.Println(k)
				}
				return nil
			})
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := wzerrors.ValidateKey(args[0]); err != nil {
				return err
			}
			return c.withStore(ctx, func(s store.Store) error {
				if err := s.Delete(ctx, args[0]); err != nil {
					return wzerrors.Wrap(wzerrors.ErrCodeStore, err, "delete %s", args[0])
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
)

// NewCacheCommand creates the cache command group
func NewCacheCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cached release index",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Delete every cached release index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				if err := rt.cache.Clear(); err != nil {
					return err
				}
				rt.console.Success("Cleared %s", rt.cache.Root())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dir",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				rt.console.Println(rt.cache.Root())
				return nil
			})
		},
	})

	return cmd
}

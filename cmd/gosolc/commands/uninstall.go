package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
)

// NewUninstallCommand creates the uninstall command
func NewUninstallCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "uninstall <version>...",
		Aliases: []string{"remove"},
		Short:   "Remove installed compiler versions",
		Long: `Remove installed solc versions. A global selection pointing at a
removed version is cleared.

Examples:
  gosolc uninstall 0.8.19
  gosolc uninstall 0.6.12 0.7.6`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := parseVersions(args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				res := rt.installer(false).Uninstall(ctx, versions...)
				for _, v := range res.Skipped {
					rt.console.Warning("solc %s is not installed", v)
				}
				return reportResult(rt.console, res, "Removed")
			})
		},
	}
	return cmd
}

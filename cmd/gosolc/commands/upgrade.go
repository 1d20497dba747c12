package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
)

// NewUpgradeCommand creates the upgrade command
func NewUpgradeCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Reinstall every installed version from the current release index",
		Long: `Download every installed version again from the mirror, replacing the
binaries in place. Use it after moving the gosolc home to another machine
or when the mirror republishes builds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				res := rt.installer(false).Upgrade(ctx)
				if len(res.Installed) == 0 && len(res.Failed) == 0 {
					rt.console.Info("No versions installed.")
				}
				return reportResult(rt.console, res, "Reinstalled")
			})
		},
	}
	return cmd
}

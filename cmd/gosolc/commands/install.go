package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
)

// NewInstallCommand creates the install command
func NewInstallCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <version|latest>...",
		Short: "Install compiler versions",
		Long: `Download, verify and install one or more solc releases.

Each binary is checked against the SHA-256 and Keccak-256 published in the
release index before it is moved into place. Installed versions are skipped.

Examples:
  gosolc install 0.8.24
  gosolc install latest
  gosolc install 0.7.6 0.8.19 0.8.24`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				return runInstall(ctx, rt, args)
			})
		},
	}
	return cmd
}

func runInstall(ctx context.Context, rt *runtime, specs []string) error {
	res := rt.installer(false).Install(ctx, specs...)
	for _, v := range res.Skipped {
		rt.console.Info("solc %s is already installed", v)
	}
	return reportResult(rt.console, res, "Installed")
}

package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
)

// NewRefreshCommand creates the refresh command
func NewRefreshCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the release index from the mirror",
		Long: `Fetch the release index for this platform and replace the cached copy.
Other commands refresh it on their own once it is older than cache_ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				rt.policy.Refresh = true
				idx, err := rt.releases.Index(ctx)
				if err != nil {
					return err
				}
				latest, _ := idx.Latest()
				rt.console.Success("%d releases for %s, latest %s", len(idx.Versions()), rt.releases.Platform(), latest)
				return nil
			})
		},
	}
	return cmd
}

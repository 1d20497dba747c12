package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/catalog"
	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/solc"
	"github.com/willibrandon/gosolc/version"
)

// NewWhichCommand creates the which command
func NewWhichCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "which [version]",
		Short: "Print the path of a compiler binary",
		Long: `Print the path of the installed binary for the given version, or for
the selected version when none is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := optionalVersion(args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				inst, err := executable(ctx, rt, v, false)
				if err != nil {
					return err
				}
				rt.console.Println(inst.Path)
				return nil
			})
		},
	}
	return cmd
}

func optionalVersion(args []string) (*version.Version, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, nil
	}
	v, err := version.Parse(args[0])
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// executable finds the binary for v or the current selection, installing
// it first when install is set and it is missing.
func executable(ctx context.Context, rt *runtime, v *version.Version, install bool) (catalog.Installation, error) {
	cat, err := rt.catalog(ctx, false)
	if err != nil {
		return catalog.Installation{}, err
	}
	inst, err := solc.Executable(cat, v)

	var notInstalled *catalog.NotInstalledError
	if !install || !errors.As(err, &notInstalled) {
		return inst, err
	}

	res := rt.installer(false).Install(ctx, notInstalled.Version.String())
	if err := reportResult(rt.console, res, "Installed"); err != nil {
		return catalog.Installation{}, err
	}
	if cat, err = rt.loader.Load(ctx); err != nil {
		return catalog.Installation{}, err
	}
	return cat.Installation(notInstalled.Version)
}

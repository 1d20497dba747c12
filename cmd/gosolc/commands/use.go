package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/installer"
	"github.com/willibrandon/gosolc/version"
)

type useOptions struct {
	local   bool
	install bool
}

// NewUseCommand creates the use command
func NewUseCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	uo := &useOptions{}

	cmd := &cobra.Command{
		Use:   "use <version|latest>",
		Short: "Select the compiler version globally or for this directory",
		Long: `Select the solc version invoked by gosolc.

The global selection lives in the gosolc home. A local selection is a
.gosolc file in the current directory and wins over the global one there;
$SOLC_VERSION stands in for it when no file exists.

Examples:
  gosolc use 0.8.24
  gosolc use --local 0.7.6
  gosolc use --install latest`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				return runUse(ctx, rt, args[0], uo)
			})
		},
	}

	cmd.Flags().BoolVar(&uo.local, "local", false, "Write the selection to .gosolc in the current directory")
	cmd.Flags().BoolVar(&uo.install, "install", false, "Install the version first if it is missing")

	return cmd
}

func runUse(ctx context.Context, rt *runtime, spec string, uo *useOptions) error {
	v, err := resolveSpec(ctx, rt, spec)
	if err != nil {
		return err
	}

	in := rt.installer(uo.install)
	if uo.local {
		if err := in.SelectLocal(ctx, rt.loader.WorkDir, v); err != nil {
			return err
		}
		rt.console.Success("Using solc %s in %s", v, rt.loader.WorkDir)
		return nil
	}

	if err := in.SelectGlobal(ctx, v); err != nil {
		return err
	}
	rt.console.Success("Using solc %s globally", v)

	cat, err := rt.loader.Load(ctx)
	if err != nil {
		return err
	}
	if cat.Local != nil && cat.Local.Version != v {
		rt.console.Warning("%s selects solc %s in this directory", cat.Local.Source, cat.Local.Version)
	}
	return nil
}

// resolveSpec turns "latest" into the newest listed release and parses
// anything else as a version.
func resolveSpec(ctx context.Context, rt *runtime, spec string) (version.Version, error) {
	if !strings.EqualFold(spec, installer.Latest) {
		return version.Parse(spec)
	}
	idx, err := rt.releases.Index(ctx)
	if err != nil {
		return version.Version{}, err
	}
	v, ok := idx.Latest()
	if !ok {
		return version.Version{}, errors.New("the release index is empty")
	}
	return v, nil
}

package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/solc"
)

// NewCurrentCommand creates the current command
func NewCurrentCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	format := formatConsole

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the selected compiler version",
		Long: `Show the solc version selected for the current directory and where the
selection comes from: a local .gosolc file, $SOLC_VERSION or the global
selection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(console, format); err != nil {
				return err
			}
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				return runCurrent(ctx, rt, format)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatConsole, "Output format: console or json")

	return cmd
}

func runCurrent(ctx context.Context, rt *runtime, format string) error {
	cat, err := rt.catalog(ctx, false)
	if err != nil {
		return err
	}
	sel, ok := cat.CurrentVersion()
	if !ok {
		return solc.ErrNoSelection
	}

	out := selectionOutput(cat, sel)
	if strings.EqualFold(format, formatJSON) {
		return rt.console.WriteJSON(out)
	}

	rt.console.Printf("%s (%s: %s)\n", out.Version, out.Scope, out.Source)
	if !out.Installed {
		rt.console.Warning("solc %s is not installed; run `gosolc install %s`", out.Version, out.Version)
	}
	return nil
}

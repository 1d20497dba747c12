package commands

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/resolver"
)

type resolveOptions struct {
	all     bool
	install bool
	format  string
}

// NewResolveCommand creates the resolve command
func NewResolveCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	ro := &resolveOptions{format: formatConsole}

	cmd := &cobra.Command{
		Use:   "resolve <file.sol>",
		Short: "Find the compiler versions a source file accepts",
		Long: `Read the pragma solidity declarations of a source file and print the
newest compiler release that satisfies all of them. Installed versions are
candidates even when the release index does not list them.

Examples:
  gosolc resolve contracts/Token.sol
  gosolc resolve --all contracts/Token.sol
  gosolc resolve --install --format json contracts/Token.sol`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(console, ro.format); err != nil {
				return err
			}
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				return runResolve(ctx, rt, args[0], ro)
			})
		},
	}

	cmd.Flags().BoolVar(&ro.all, "all", false, "Print every compatible version, ascending")
	cmd.Flags().BoolVar(&ro.install, "install", false, "Install the recommended version if it is missing")
	cmd.Flags().StringVar(&ro.format, "format", formatConsole, "Output format: console or json")

	return cmd
}

func runResolve(ctx context.Context, rt *runtime, path string, ro *resolveOptions) error {
	start := time.Now()

	cat, err := rt.catalog(ctx, true)
	if err != nil {
		return err
	}
	res, err := resolver.ResolveFile(ctx, path, cat)
	if err != nil {
		return err
	}

	installed := cat.IsInstalled(res.Recommended)
	if ro.install && !installed {
		r := rt.installer(false).Install(ctx, res.Recommended.String())
		if err := reportResult(rt.console, r, "Installed"); err != nil {
			return err
		}
		installed = true
	}

	if strings.EqualFold(ro.format, formatJSON) {
		out := output.NewResolveOutput(path, start)
		out.Pragmas = append(out.Pragmas, res.Declaration...)
		out.Recommended = res.Recommended.String()
		if ro.all {
			out.Compatible = versionStrings(res.Compatible)
		}
		out.Installed = installed
		out.ElapsedMs = output.MeasureElapsed(start)
		return rt.console.WriteJSON(out)
	}

	rt.console.Detail("%s: pragma solidity %s", path, strings.Join(res.Declaration, "; "))
	if ro.all {
		for _, v := range res.Compatible {
			rt.console.Println(v.String())
		}
	} else {
		rt.console.Println(res.Recommended.String())
	}
	if !installed {
		rt.console.Info("solc %s is not installed; run `gosolc install %s`", res.Recommended, res.Recommended)
	}
	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/catalog"
	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/pragma"
	"github.com/willibrandon/gosolc/resolver"
	"github.com/willibrandon/gosolc/solc"
	"github.com/willibrandon/gosolc/version"
)

type compileOptions struct {
	solcVersion  string
	install      bool
	outputs      []string
	standardJSON string
	solc.Options
}

// NewCompileCommand creates the compile command
func NewCompileCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	co := &compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <file.sol>...",
		Short: "Compile sources with a compiler their pragmas accept",
		Long: `Compile Solidity sources and print the combined JSON output.

The compiler is chosen from the pragmas of all files: the newest installed
version they accept, or with --install the newest release they accept.
--solc overrides the choice. With --standard-json the input is a standard
JSON document (a path, or - for stdin) and the selected version is used.

Examples:
  gosolc compile contracts/Token.sol
  gosolc compile --install --combined-json abi,bin contracts/*.sol
  gosolc compile --standard-json input.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if co.standardJSON == "" && len(args) == 0 {
				return fmt.Errorf("requires at least one source file or --standard-json")
			}
			// stdout carries the compiler output only
			console.SetJSON(true)
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				if co.standardJSON != "" {
					return runCompileStandard(ctx, rt, cmd.InOrStdin(), co)
				}
				return runCompile(ctx, rt, args, co)
			})
		},
	}

	cmd.Flags().StringVar(&co.solcVersion, "solc", "", "Compiler version to use instead of resolving the pragmas")
	cmd.Flags().BoolVar(&co.install, "install", false, "Install the chosen version if it is missing")
	cmd.Flags().StringSliceVar(&co.outputs, "combined-json", nil, "Outputs to request (default: every output the compiler supports)")
	cmd.Flags().StringVar(&co.standardJSON, "standard-json", "", "Standard JSON input file, or - for stdin")
	cmd.Flags().StringVar(&co.BasePath, "base-path", "", "Root of the source tree")
	cmd.Flags().StringSliceVar(&co.AllowPaths, "allow-paths", nil, "Extra directories imports may read from")
	cmd.Flags().StringVar(&co.EVMVersion, "evm-version", "", "Target EVM version")
	cmd.Flags().BoolVar(&co.Optimize, "optimize", false, "Enable the bytecode optimizer")

	return cmd
}

func runCompile(ctx context.Context, rt *runtime, files []string, co *compileOptions) error {
	v, err := compileVersion(ctx, rt, files, co)
	if err != nil {
		return err
	}
	inst, err := executable(ctx, rt, &v, co.install)
	if err != nil {
		return err
	}
	rt.console.Detail("Compiling %d file(s) with solc %s", len(files), v)

	contracts, err := solc.New(inst.Path, rt.logger).CompileFiles(ctx, files, co.outputs, co.Options)
	if err != nil {
		return err
	}
	return rt.console.WriteJSON(contracts)
}

// compileVersion picks the compiler for files: --solc if given, else the
// newest installed version every pragma accepts, else with --install the
// newest known release they accept.
func compileVersion(ctx context.Context, rt *runtime, files []string, co *compileOptions) (version.Version, error) {
	if co.solcVersion != "" {
		return version.Parse(co.solcVersion)
	}

	var decls []string
	for _, f := range files {
		d, err := pragma.ExtractFile(f)
		if err != nil {
			return version.Version{}, err
		}
		decls = append(decls, d...)
	}
	expr, err := resolver.ExpressionOf(decls)
	if err != nil {
		return version.Version{}, resolver.WithSource(err, strings.Join(files, ", "))
	}

	cat, err := rt.catalog(ctx, co.install)
	if err != nil {
		return version.Version{}, err
	}
	if best, err := resolver.Recommend(expr, installedOnly{cat}); err == nil {
		return best, nil
	}
	if !co.install {
		best, err := resolver.Recommend(expr, cat)
		if err != nil {
			return version.Version{}, err
		}
		return version.Version{}, &catalog.NotInstalledError{Version: best, Installed: cat.InstalledVersions()}
	}
	return resolver.Recommend(expr, cat)
}

// installedOnly offers only the installed versions of a catalog as candidates.
type installedOnly struct{ cat *catalog.Catalog }

func (i installedOnly) Candidates() []version.Version { return i.cat.InstalledVersions() }

func runCompileStandard(ctx context.Context, rt *runtime, stdin io.Reader, co *compileOptions) error {
	var (
		input []byte
		err   error
	)
	if co.standardJSON == "-" {
		input, err = io.ReadAll(stdin)
	} else {
		input, err = os.ReadFile(co.standardJSON)
	}
	if err != nil {
		return fmt.Errorf("read standard JSON input: %w", err)
	}

	v, err := optionalVersion([]string{co.solcVersion})
	if err != nil {
		return err
	}
	inst, err := executable(ctx, rt, v, co.install)
	if err != nil {
		return err
	}

	out, err := solc.New(inst.Path, rt.logger).CompileStandard(ctx, input, co.Options)
	if err != nil {
		return err
	}
	for _, m := range out.Warnings() {
		rt.console.Warning("%s", strings.TrimSpace(m.FormattedMessage))
	}
	return rt.console.WriteJSON(out)
}

package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/solc"
)

// NewExecCommand creates the exec command
func NewExecCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	var (
		solcVersion string
		install     bool
	)

	cmd := &cobra.Command{
		Use:   "exec [--solc <version>] -- [solc arguments...]",
		Short: "Run the selected compiler",
		Long: `Run solc with the given arguments, connected to this terminal. The
selected version is used unless --solc names another one. The compiler's
exit status becomes gosolc's.

Examples:
  gosolc exec -- --version
  gosolc exec --solc 0.7.6 -- --bin contracts/Token.sol
  gosolc exec --install -- --optimize --abi Token.sol`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := optionalVersion([]string{solcVersion})
			if err != nil {
				return err
			}
			return run(cmd.Context(), console, opts, func(ctx context.Context, rt *runtime) error {
				inst, err := executable(ctx, rt, v, install)
				if err != nil {
					return err
				}
				err = solc.New(inst.Path, rt.logger).Exec(ctx, args, cmd.InOrStdin(), rt.console.Out(), rt.console.Err())
				var solcErr *solc.SolcError
				if errors.As(err, &solcErr) {
					return exitStatus(solcErr.ReturnCode)
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&solcVersion, "solc", "", "Compiler version to run instead of the selected one")
	cmd.Flags().BoolVar(&install, "install", false, "Install the version first if it is missing")

	return cmd
}

package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/config"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
)

// NewConfigCommand creates the config command group
func NewConfigCommand(console *output.Console, opts *cli.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the gosolc configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Long: `Print every setting after config.toml, the environment and the global
flags have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return cfg.Write(console.Out())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Path == "" {
				console.Info("No configuration file; create %s to change the defaults.", filepath.Join(cfg.Home, config.FileName))
				return nil
			}
			console.Println(cfg.Path)
			return nil
		},
	})

	return cmd
}

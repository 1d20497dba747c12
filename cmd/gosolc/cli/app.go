package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/willibrandon/gosolc/cmd/gosolc/output"
)

var rootCmd = &cobra.Command{
	Use:   "gosolc",
	Short: "Solidity compiler version manager",
	Long: `gosolc installs, selects and runs versions of the Solidity compiler.

It resolves the version pragmas of a source file against the releases
published for your platform, keeps verified binaries under ~/.gosolc and
switches between them globally or per directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return Options.Apply(Console)
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Show help when no command is provided
		_ = cmd.Help()
	},
}

// Console is the global console for CLI commands
var Console *output.Console

// Options holds the persistent flag values shared by every command
var Options = &GlobalOptions{}

// GlobalOptions are the settings every command accepts. Empty values fall
// back to the environment and then to config.toml.
type GlobalOptions struct {
	ConfigFile string
	Home       string
	Mirror     string
	Verbosity  string
	LogLevel   string
	Offline    bool
	Refresh    bool
	NoColor    bool
}

// BindFlags registers the global flags on fs
func BindFlags(fs *pflag.FlagSet, o *GlobalOptions) {
	fs.StringVar(&o.ConfigFile, "config", "", "Configuration file (default: config.toml under the gosolc home)")
	fs.StringVar(&o.Home, "home", "", "gosolc home directory (default: $GOSOLC_HOME or ~/.gosolc)")
	fs.StringVar(&o.Mirror, "mirror", "", "Release mirror URL")
	fs.StringVarP(&o.Verbosity, "verbosity", "v", "normal", "Display verbosity (quiet, normal, detailed, diagnostic)")
	fs.StringVar(&o.LogLevel, "log-level", "", "Diagnostic log level written to stderr (verbose, debug, info, warn, error)")
	fs.BoolVar(&o.Offline, "offline", false, "Never contact the mirror; use the cached release index")
	fs.BoolVar(&o.Refresh, "refresh", false, "Ignore the cached release index and fetch a new one")
	fs.BoolVar(&o.NoColor, "no-color", false, "Disable colored output")
}

// Apply configures the console from the options
func (o *GlobalOptions) Apply(c *output.Console) error {
	v, err := output.ParseVerbosity(o.Verbosity)
	if err != nil {
		return err
	}
	c.SetVerbosity(v)
	if o.NoColor {
		c.SetColors(false)
	}
	return nil
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Initialize console
	Console = output.DefaultConsole()
	BindFlags(rootCmd.PersistentFlags(), Options)
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command
func AddCommand(cmds ...*cobra.Command) {
	rootCmd.AddCommand(cmds...)
}

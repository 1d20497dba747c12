// cmd/gosolc/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/commands"
	"github.com/willibrandon/gosolc/cmd/gosolc/version"
)

// Version information (set via ldflags during build)
var (
	buildVersion = "dev"
	commit       = "none"
	date         = "unknown"
	builtBy      = "unknown"
)

func main() {
	version.Version = buildVersion
	version.Commit = commit
	version.Date = date
	version.BuiltBy = builtBy

	// Setup version after variables are set
	cli.SetupVersion()

	console, opts := cli.Console, cli.Options
	cli.AddCommand(
		commands.NewVersionCommand(console),
		commands.NewInstallCommand(console, opts),
		commands.NewUninstallCommand(console, opts),
		commands.NewUpgradeCommand(console, opts),
		commands.NewUseCommand(console, opts),
		commands.NewCurrentCommand(console, opts),
		commands.NewVersionsCommand(console, opts),
		commands.NewResolveCommand(console, opts),
		commands.NewVerifyCommand(console, opts),
		commands.NewWhichCommand(console, opts),
		commands.NewExecCommand(console, opts),
		commands.NewCompileCommand(console, opts),
		commands.NewRefreshCommand(console, opts),
		commands.NewCacheCommand(console, opts),
		commands.NewConfigCommand(console, opts),
		commands.NewMirrorCommand(console, opts),
	)

	// Cancel in-flight downloads and compiler runs on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	interrupted := ctx.Err() != nil
	stop()

	if err != nil {
		if interrupted {
			os.Exit(130) // 128 + SIGINT
		}
		commands.Report(console, err)
		os.Exit(commands.ExitCode(err))
	}
}

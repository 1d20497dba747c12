package commands

import (
	"fmt"
	"strings"

	"github.com/willibrandon/gosolc/catalog"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/installer"
	"github.com/willibrandon/gosolc/version"
)

const (
	formatConsole = "console"
	formatJSON    = "json"
)

// exitStatus is a child process exit code passed through unchanged.
type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func checkFormat(console *output.Console, format string) error {
	switch strings.ToLower(format) {
	case formatConsole:
		return nil
	case formatJSON:
		console.SetJSON(true)
		return nil
	}
	return fmt.Errorf("unknown format %q (console, json)", format)
}

// parseVersions parses every argument, failing on the first malformed one.
func parseVersions(args []string) ([]version.Version, error) {
	return version.ParseAll(args)
}

// reportResult prints an installer result. Each failure is reported with
// its hint; errSilent is returned when anything failed.
func reportResult(console *output.Console, res installer.Result, done string) error {
	for _, v := range res.Installed {
		console.Success("%s solc %s", done, v)
	}
	for _, v := range res.Removed {
		console.Success("Removed solc %s", v)
	}
	for _, f := range res.Failed {
		Report(console, f.Err)
	}
	if len(res.Failed) > 0 {
		return errSilent
	}
	return nil
}

func selectionOutput(cat *catalog.Catalog, sel catalog.Selection) *output.Selection {
	out := &output.Selection{
		Version: sel.Version.String(),
		Scope:   string(sel.Scope),
		Source:  sel.Source,
	}
	if inst, ok := cat.Installed[sel.Version]; ok {
		out.Installed = true
		out.Path = inst.Path
	}
	return out
}

func versionStrings(vs []version.Version) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

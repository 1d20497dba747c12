package commands

import (
	"errors"
	"fmt"

	"github.com/willibrandon/gosolc/catalog"
	"github.com/willibrandon/gosolc/cmd/gosolc/config"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/constraint"
	"github.com/willibrandon/gosolc/installer"
	"github.com/willibrandon/gosolc/releases"
	"github.com/willibrandon/gosolc/resolver"
	"github.com/willibrandon/gosolc/solc"
	"github.com/willibrandon/gosolc/version"
)

// errSilent is returned when the command already reported its failure.
var errSilent = errors.New("command failed")

// Report prints err and, when one applies, a hint on how to fix it.
func Report(console *output.Console, err error) {
	var status exitStatus
	if err == nil || errors.Is(err, errSilent) || errors.As(err, &status) {
		return
	}
	console.Error("%v", err)
	if hint := Hint(err); hint != "" {
		console.Hint("%s", hint)
	}
}

// ExitCode is the process exit status for err. A passed-through compiler
// exit code is kept; every other failure is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var status exitStatus
	if errors.As(err, &status) && status > 0 {
		return int(status)
	}
	return 1
}

// Hint returns an actionable suggestion for err, or "".
func Hint(err error) string {
	var (
		noPragma     *resolver.NoPragmaFoundError
		noCompatible *resolver.NoCompatibleVersionError
		malformed    *version.MalformedVersionError
		invalid      *constraint.InvalidConstraintError
		notInstalled *catalog.NotInstalledError
		unknown      *installer.UnknownVersionError
		mismatch     *catalog.ChecksumMismatchError
		unsupported  *releases.UnsupportedPlatformError
		unknownKeys  *config.UnknownKeysError
	)

	switch {
	case errors.As(err, &noPragma):
		return "declare the compiler version in the source, for example `pragma solidity ^0.8.0;`"
	case errors.As(err, &noCompatible):
		if len(noCompatible.Candidates) == 0 {
			return "no release index is cached; run `gosolc refresh`"
		}
		return "install a release the pragma accepts, or relax the pragma; `gosolc versions --all --refresh` lists every release"
	case errors.As(err, &malformed):
		return "write versions as MAJOR.MINOR.PATCH, for example 0.8.24"
	case errors.As(err, &invalid):
		return "fix the version constraint; operators are ^ ~ = < <= > >= and hyphen ranges such as 0.8.0 - 0.8.20"
	case errors.As(err, &notInstalled):
		return fmt.Sprintf("run `gosolc install %s`, or pass --install", notInstalled.Version)
	case errors.As(err, &unknown):
		return "run `gosolc versions --all` to list the releases for this platform"
	case errors.As(err, &mismatch):
		return "the binary does not match the published checksum; `gosolc verify` reinstalls damaged versions"
	case errors.As(err, &unsupported):
		return "solc binaries are published for linux-amd64, macosx-amd64 and windows-amd64"
	case errors.As(err, &unknownKeys):
		return "remove or rename the keys; `gosolc config show` prints every setting"
	case errors.Is(err, solc.ErrNoSelection):
		return "`gosolc use <version>` selects a version globally, `gosolc use --local <version>` for this directory"
	case errors.Is(err, releases.ErrOffline):
		return "run once without --offline to cache the release index"
	}
	return ""
}

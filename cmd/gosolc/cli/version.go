package cli

import "github.com/willibrandon/gosolc/cmd/gosolc/version"

// GetVersion returns formatted version information
func GetVersion() string {
	return version.Version
}

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return version.FullInfo()
}

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/cmd/gosolc/version"
)

func TestGetVersion(t *testing.T) {
	got := GetVersion()
	if got == "" {
		t.Error("GetVersion() returned empty string")
	}
	if got != version.Version {
		t.Errorf("GetVersion() = %v, want %v", got, version.Version)
	}
}

func TestGetFullVersion(t *testing.T) {
	got := GetFullVersion()
	if !strings.HasPrefix(got, "gosolc version ") {
		t.Errorf("GetFullVersion() = %q", got)
	}
}

func TestBindFlags(t *testing.T) {
	var o GlobalOptions
	fs := pflag.NewFlagSet("gosolc", pflag.ContinueOnError)
	BindFlags(fs, &o)

	err := fs.Parse([]string{"--home", "/tmp/solc", "--offline", "-v", "quiet", "--mirror", "https://m.example.com"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if o.Home != "/tmp/solc" || !o.Offline || o.Verbosity != "quiet" || o.Mirror != "https://m.example.com" {
		t.Errorf("options = %+v", o)
	}
	if o.Refresh {
		t.Error("Refresh should default to false")
	}
}

func TestGlobalOptions_Apply(t *testing.T) {
	var out bytes.Buffer
	c := output.NewConsole(&out, &out, output.VerbosityNormal)

	if err := (&GlobalOptions{Verbosity: "diag"}).Apply(c); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if c.GetVerbosity() != output.VerbosityDiagnostic {
		t.Errorf("verbosity = %v, want diagnostic", c.GetVerbosity())
	}

	if err := (&GlobalOptions{Verbosity: "shouty"}).Apply(c); err == nil {
		t.Error("Apply() should reject an unknown verbosity")
	}
}

func TestRootCommand_Flags(t *testing.T) {
	for _, name := range []string{"config", "home", "mirror", "verbosity", "log-level", "offline", "refresh", "no-color"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not registered", name)
		}
	}
}

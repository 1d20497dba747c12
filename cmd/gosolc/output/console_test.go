package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole_Print(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Print("hello")
	if got := out.String(); got != "hello" {
		t.Errorf("Print() = %q, want %q", got, "hello")
	}
}

func TestConsole_Printf(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Printf("solc %s", "0.8.24")
	if got := out.String(); got != "solc 0.8.24" {
		t.Errorf("Printf() = %q, want %q", got, "solc 0.8.24")
	}
}

func TestConsole_ErrorGoesToStderr(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	c := NewConsole(&outBuf, &errBuf, VerbosityQuiet)
	c.SetColors(false)
	c.Error("install failed")
	c.Hint("run %s", "gosolc versions")

	if outBuf.Len() != 0 {
		t.Errorf("stdout = %q, want empty", outBuf.String())
	}
	got := errBuf.String()
	if !strings.Contains(got, "Error: install failed") || !strings.Contains(got, "Hint: run gosolc versions") {
		t.Errorf("stderr = %q", got)
	}
}

func TestConsole_VerbosityFiltering(t *testing.T) {
	tests := []struct {
		verbosity Verbosity
		want      []string
		notWant   []string
	}{
		{VerbosityQuiet, nil, []string{"info", "Warning", "detail", "DEBUG"}},
		{VerbosityNormal, []string{"info", "Warning: warn"}, []string{"detail", "DEBUG"}},
		{VerbosityDetailed, []string{"info", "detail"}, []string{"DEBUG"}},
		{VerbosityDiagnostic, []string{"info", "detail", "[DEBUG] debug"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.verbosity.String(), func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(&out, &out, tt.verbosity)
			c.SetColors(false)
			c.Info("info")
			c.Warning("warn")
			c.Detail("detail")
			c.Debug("debug")

			got := out.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("output %q should not contain %q", got, w)
				}
			}
		})
	}
}

func TestConsole_JSONModeMovesMessagesToStderr(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	c := NewConsole(&outBuf, &errBuf, VerbosityNormal)
	c.SetColors(false)
	c.SetJSON(true)

	c.Info("Installing solc 0.8.24")
	c.Success("done")
	if err := c.WriteJSON(map[string]string{"version": "0.8.24"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	if !strings.Contains(errBuf.String(), "Installing solc 0.8.24") || !strings.Contains(errBuf.String(), "done") {
		t.Errorf("stderr = %q", errBuf.String())
	}
	if got := outBuf.String(); got != "{\n  \"version\": \"0.8.24\"\n}\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{"quiet", VerbosityQuiet, false},
		{"q", VerbosityQuiet, false},
		{"", VerbosityNormal, false},
		{"Normal", VerbosityNormal, false},
		{"d", VerbosityDetailed, false},
		{"diag", VerbosityDiagnostic, false},
		{"loud", VerbosityNormal, true},
	}

	for _, tt := range tests {
		got, err := ParseVerbosity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVerbosity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVerbosity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsColorEnabled_NonTerminal(t *testing.T) {
	if IsColorEnabled(&bytes.Buffer{}) {
		t.Error("IsColorEnabled() = true for a buffer")
	}
}

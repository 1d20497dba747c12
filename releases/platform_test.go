package releases

import (
	"errors"
	"testing"

	"github.com/willibrandon/gosolc/version"
)

func TestPlatformFor(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         Platform
		wantErr      bool
	}{
		{"linux", "amd64", Linux, false},
		{"darwin", "amd64", MacOS, false},
		{"darwin", "arm64", MacOS, false},
		{"windows", "amd64", Windows, false},
		{"linux", "arm64", "", true},
		{"freebsd", "amd64", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := PlatformFor(tt.goos, tt.goarch)
			if tt.wantErr {
				var pErr *UnsupportedPlatformError
				if !errors.As(err, &pErr) {
					t.Fatalf("PlatformFor() error = %v, want *UnsupportedPlatformError", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("PlatformFor() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestParsePlatform(t *testing.T) {
	if p, err := ParsePlatform("macosx-amd64"); err != nil || p != MacOS {
		t.Errorf("ParsePlatform() = %v, %v", p, err)
	}
	if _, err := ParsePlatform("solaris"); err == nil {
		t.Error("ParsePlatform() should reject unknown names")
	}
}

func TestPlatformRules(t *testing.T) {
	v := version.MustParse

	if Linux.EarliestRelease() != v("0.4.0") || MacOS.EarliestRelease() != v("0.3.6") || Windows.EarliestRelease() != v("0.4.1") {
		t.Error("EarliestRelease() table is wrong")
	}

	if !Linux.UsesLegacyMirror(v("0.4.10")) || Linux.UsesLegacyMirror(v("0.4.11")) {
		t.Error("legacy mirror boundary is 0.4.10 inclusive")
	}
	if MacOS.UsesLegacyMirror(v("0.4.0")) {
		t.Error("only Linux uses the legacy mirror")
	}

	if !Windows.IsZipArchive(v("0.7.1")) || Windows.IsZipArchive(v("0.7.2")) || Linux.IsZipArchive(v("0.5.0")) {
		t.Error("zip archive boundary is Windows 0.7.1 inclusive")
	}

	if got := Windows.Executable(v("0.8.0")); got != "solc-0.8.0.exe" {
		t.Errorf("Executable() = %q", got)
	}
	if got := Linux.Executable(v("0.8.0")); got != "solc-0.8.0" {
		t.Errorf("Executable() = %q", got)
	}
}

package solc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/gosolc/catalog"
	"github.com/willibrandon/gosolc/version"
)

// fakeSolc writes a shell script standing in for the compiler.
func fakeSolc(t *testing.T, body string) *Compiler {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a shell script")
	}
	path := filepath.Join(t.TempDir(), "solc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return New(path, nil)
}

func TestRun(t *testing.T) {
	c := fakeSolc(t, `echo "args: $*"; cat`)

	out, err := c.Run(context.Background(), []string{"--a", "b"}, strings.NewReader("piped"))
	require.NoError(t, err)
	assert.Equal(t, "args: --a b\npiped", string(out))
}

func TestRun_NonZeroExit(t *testing.T) {
	c := fakeSolc(t, `echo partial; echo "bad flag" >&2; exit 3`)

	out, err := c.Run(context.Background(), []string{"--bogus"}, nil)

	var solcErr *SolcError
	require.ErrorAs(t, err, &solcErr)
	assert.Equal(t, 3, solcErr.ReturnCode)
	assert.Equal(t, "partial\n", solcErr.Stdout)
	assert.Equal(t, "bad flag\n", solcErr.Stderr)
	assert.Equal(t, []string{c.Path, "--bogus"}, solcErr.Command)
	assert.Equal(t, "partial\n", string(out))
	assert.Contains(t, solcErr.Error(), "return code: `3`")
	assert.Contains(t, solcErr.Error(), "bad flag")
}

func TestRun_MissingBinary(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope"), nil)

	_, err := c.Run(context.Background(), nil, nil)
	require.Error(t, err)
	var solcErr *SolcError
	assert.False(t, errors.As(err, &solcErr))
}

func TestExec_StreamsAndExitCode(t *testing.T) {
	c := fakeSolc(t, `cat; echo "to stderr" >&2; exit 2`)

	var stdout, stderr strings.Builder
	err := c.Exec(context.Background(), []string{"--gas"}, strings.NewReader("input"), &stdout, &stderr)

	var solcErr *SolcError
	require.ErrorAs(t, err, &solcErr)
	assert.Equal(t, 2, solcErr.ReturnCode)
	assert.Equal(t, []string{c.Path, "--gas"}, solcErr.Command)
	assert.Equal(t, "input", stdout.String())
	assert.Equal(t, "to stderr\n", stderr.String())
}

func TestExec_Success(t *testing.T) {
	c := fakeSolc(t, `echo ok`)

	var stdout strings.Builder
	require.NoError(t, c.Exec(context.Background(), nil, nil, &stdout, nil))
	assert.Equal(t, "ok\n", stdout.String())
}

func TestReportedVersion(t *testing.T) {
	c := fakeSolc(t, `echo "solc, the solidity compiler commandline interface"
echo "Version: 0.8.19+commit.7dd6d404.Linux.g++"`)

	got, err := c.ReportedVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, version.New(0, 8, 19), got)

	bad := fakeSolc(t, `echo "something else"`)
	_, err = bad.ReportedVersion(context.Background())
	assert.ErrorContains(t, err, "unrecognized")
}

func TestExecutable(t *testing.T) {
	v := version.MustParse
	cat := &catalog.Catalog{
		Installed: map[version.Version]catalog.Installation{
			v("0.8.19"): {Version: v("0.8.19"), Path: "/opt/solc-0.8.19"},
		},
	}

	_, err := Executable(cat, nil)
	assert.ErrorIs(t, err, ErrNoSelection)

	want := v("0.8.19")
	inst, err := Executable(cat, &want)
	require.NoError(t, err)
	assert.Equal(t, "/opt/solc-0.8.19", inst.Path)

	cat.Global = &catalog.Selection{Version: v("0.8.19"), Scope: catalog.ScopeGlobal, Source: "global-version"}
	inst, err = Executable(cat, nil)
	require.NoError(t, err)
	assert.Equal(t, v("0.8.19"), inst.Version)

	cat.Local = &catalog.Selection{Version: v("0.7.6"), Scope: catalog.ScopeLocal, Source: "/work/.gosolc"}
	_, err = Executable(cat, nil)
	var notInstalled *catalog.NotInstalledError
	require.ErrorAs(t, err, &notInstalled)
	assert.Equal(t, "/work/.gosolc", notInstalled.Source)
	assert.Equal(t, []version.Version{v("0.8.19")}, notInstalled.Installed)
}

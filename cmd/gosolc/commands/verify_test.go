package commands

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/cmd/gosolc/output/outputtest"
)

func TestVerify_OK(t *testing.T) {
	e := newEnv(t)
	e.publish("0.8.24")

	out, err := e.run(NewVerifyCommand)
	require.NoError(t, err)
	assert.Equal(t, "No versions installed.\n", out)

	_, err = e.run(NewInstallCommand, "0.8.24")
	require.NoError(t, err)

	out, err = e.run(NewVerifyCommand)
	require.NoError(t, err)
	assert.Equal(t, "solc 0.8.24: ok\n", out)
}

func TestVerify_RepairsTamperedBinary(t *testing.T) {
	e := newEnv(t)
	e.publish("0.8.20", "0.8.24")

	_, err := e.run(NewInstallCommand, "0.8.20", "0.8.24")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(e.binaryPath("0.8.24"), []byte("tampered"), 0o755))

	_, err = e.run(NewVerifyCommand, "--no-repair")
	require.ErrorIs(t, err, errSilent)
	assert.Contains(t, e.stderr.String(), "solc 0.8.24 checksum mismatch")

	out, err := e.run(NewVerifyCommand, "--format", "json")
	require.NoError(t, err)
	outputtest.Validate(t, "verify", out)

	var res output.VerifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Results, 2)
	assert.Equal(t, "0.8.20", res.Results[0].Version)
	assert.Equal(t, "ok", res.Results[0].Status)
	assert.False(t, res.Results[0].Repaired)
	assert.Equal(t, "0.8.24", res.Results[1].Version)
	assert.Equal(t, "checksum-mismatch", res.Results[1].Status)
	assert.True(t, res.Results[1].Repaired)
	assert.NotEqual(t, res.Results[1].Expected, res.Results[1].Actual)

	data, err := os.ReadFile(e.binaryPath("0.8.24"))
	require.NoError(t, err)
	assert.Equal(t, fakeCompiler("0.8.24", ""), data)

	out, err = e.run(NewVerifyCommand, "0.8.24")
	require.NoError(t, err)
	assert.Equal(t, "solc 0.8.24: ok\n", out)
}

func TestVerify_MissingVersion(t *testing.T) {
	e := newEnv(t)
	e.publish("0.8.24")

	_, err := e.run(NewVerifyCommand, "0.8.24")
	require.ErrorIs(t, err, errSilent)
	assert.Contains(t, e.stderr.String(), "Error: solc 0.8.24 is not installed")
}

func TestVerify_MalformedArgument(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(NewVerifyCommand, "v0.8")
	require.Error(t, err)
	assert.Contains(t, e.stderr.String(), "Hint: write versions as MAJOR.MINOR.PATCH")
}

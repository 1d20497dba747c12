package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/gosolc/releases"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	home := t.TempDir()

	cfg, err := Load("", envMap(map[string]string{"GOSOLC_HOME": home}))
	require.NoError(t, err)

	assert.Equal(t, home, cfg.Home)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, releases.DefaultMirror, cfg.Mirror)
	assert.Equal(t, time.Hour, cfg.CacheTTL.Duration)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "none", cfg.Telemetry.Exporter)
}

func TestLoad_FileUnderHome(t *testing.T) {
	home := t.TempDir()
	path := writeConfig(t, home, `
mirror = "https://mirror.example.com"
cache_ttl = "10m"
always_install = true

[http]
timeout = "5s"
max_retries = 1
http3 = true

[log]
level = "debug"

[telemetry]
exporter = "otlp"
endpoint = "localhost:4317"
sampling_rate = 0.5

[metrics]
textfile = "/var/lib/node_exporter/gosolc.prom"
`)

	cfg, err := Load("", envMap(map[string]string{"GOSOLC_HOME": home}))
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "https://mirror.example.com", cfg.Mirror)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL.Duration)
	assert.True(t, cfg.AlwaysInstall)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout.Duration)
	assert.Equal(t, 1, cfg.HTTP.MaxRetries)
	assert.True(t, cfg.HTTP.HTTP3)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 0.5, cfg.Telemetry.SamplingRate)
	assert.Equal(t, "/var/lib/node_exporter/gosolc.prom", cfg.Metrics.Textfile)
	// Unset keys keep their defaults.
	assert.Equal(t, releases.DefaultLegacyListURL, cfg.LegacyMirror.List)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	path := writeConfig(t, dir, `
home = "`+filepath.ToSlash(dir)+`"
mirror = "https://file.example.com"

[log]
level = "error"
`)

	cfg, err := Load(path, envMap(map[string]string{
		"GOSOLC_HOME":      other,
		"GOSOLC_MIRROR":    "https://env.example.com",
		"GOSOLC_LOG_LEVEL": "info",
		"GOSOLC_OFFLINE":   "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, other, cfg.Home)
	assert.Equal(t, "https://env.example.com", cfg.Mirror)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Offline)
}

func TestLoad_HomeFromFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data")
	path := writeConfig(t, dir, `home = "`+filepath.ToSlash(target)+`"`)

	cfg, err := Load(path, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, target, cfg.Home)
}

func TestLoad_ConfigEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `mirror = "https://from-env-path.example.com"`)

	cfg, err := Load("", envMap(map[string]string{
		"GOSOLC_HOME":   t.TempDir(),
		"GOSOLC_CONFIG": path,
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://from-env-path.example.com", cfg.Mirror)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"syntax", `mirror = `, "read config"},
		{"unknown key", "mirrors = \"https://x.example.com\"\n[http]\nretries = 3", "unknown keys: mirrors, http.retries"},
		{"bad duration", `cache_ttl = "soon"`, "read config"},
		{"relative mirror", `mirror = "/releases"`, "mirror: \"/releases\" is not an absolute URL"},
		{"negative ttl", `cache_ttl = "-1m"`, "cache_ttl"},
		{"log level", "[log]\nlevel = \"chatty\"", "log.level"},
		{"exporter", "[telemetry]\nexporter = \"zipkin\"", "unknown exporter"},
		{"otlp endpoint", "[telemetry]\nexporter = \"otlp\"", "telemetry.endpoint"},
		{"sampling", "[telemetry]\nsampling_rate = 2.0", "sampling_rate"},
		{"retries", "[http]\nmax_retries = -1", "http.max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			writeConfig(t, home, tt.body)

			_, err := Load("", envMap(map[string]string{"GOSOLC_HOME": home}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_UnknownKeysError(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `colour = true`)

	_, err := Load("", envMap(map[string]string{"GOSOLC_HOME": home}))
	var unknown *UnknownKeysError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"colour"}, unknown.Keys)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), envMap(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Write(t *testing.T) {
	cfg := Default()
	cfg.Home = "/opt/gosolc"
	cfg.CacheTTL = Duration{90 * time.Second}

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	assert.Contains(t, buf.String(), `cache_ttl = "1m30s"`)
	assert.NotContains(t, buf.String(), "Path")

	var decoded Config
	_, err := toml.Decode(buf.String(), &decoded)
	require.NoError(t, err)
	assert.Equal(t, cfg.CacheTTL, decoded.CacheTTL)
	assert.Equal(t, cfg.Mirror, decoded.Mirror)
}

// Package config loads the gosolc configuration file.
//
// Settings are layered: command-line flags override environment variables,
// which override config.toml, which overrides the built-in defaults. This
// package applies the file and the environment; flags are applied by the
// command layer.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/willibrandon/gosolc/cache"
	"github.com/willibrandon/gosolc/catalog"
	solchttp "github.com/willibrandon/gosolc/http"
	"github.com/willibrandon/gosolc/observability"
	"github.com/willibrandon/gosolc/releases"
)

// FileName is the configuration file looked up under the gosolc home.
const FileName = "config.toml"

// Environment variables read on top of the file.
const (
	ConfigEnv   = "GOSOLC_CONFIG"
	MirrorEnv   = "GOSOLC_MIRROR"
	LogLevelEnv = "GOSOLC_LOG_LEVEL"
	OfflineEnv  = "GOSOLC_OFFLINE"
)

// Duration is a time.Duration written as a string such as "90s" or "1h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the effective gosolc configuration.
type Config struct {
	Home     string   `toml:"home"`
	Mirror   string   `toml:"mirror"`
	CacheTTL Duration `toml:"cache_ttl"`
	Offline  bool     `toml:"offline"`

	// AlwaysInstall lets `use` and `resolve` install missing versions.
	AlwaysInstall bool `toml:"always_install"`

	LegacyMirror LegacyMirror `toml:"legacy_mirror"`
	HTTP         HTTP         `toml:"http"`
	Log          Log          `toml:"log"`
	Telemetry    Telemetry    `toml:"telemetry"`
	Metrics      Metrics      `toml:"metrics"`

	// Path is the file the configuration was read from, empty when none was found.
	Path string `toml:"-"`
}

// LegacyMirror locates the static Linux builds of releases up to 0.4.10.
type LegacyMirror struct {
	List      string `toml:"list"`
	Artifacts string `toml:"artifacts"`
}

// HTTP configures the mirror client.
type HTTP struct {
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
	HTTP3      bool     `toml:"http3"`
}

// Log configures diagnostic logging to stderr.
type Log struct {
	Level string `toml:"level"`
}

// Telemetry configures OpenTelemetry tracing.
type Telemetry struct {
	Exporter     string  `toml:"exporter"`
	Endpoint     string  `toml:"endpoint"`
	SamplingRate float64 `toml:"sampling_rate"`
}

// Metrics configures the Prometheus textfile written after each command.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// UnknownKeysError reports keys in the file that no setting reads.
type UnknownKeysError struct {
	Path string
	Keys []string
}

func (e *UnknownKeysError) Error() string {
	return fmt.Sprintf("%s: unknown keys: %s", e.Path, strings.Join(e.Keys, ", "))
}

// Default returns the built-in configuration. Home is resolved by Load.
func Default() *Config {
	return &Config{
		Mirror:   releases.DefaultMirror,
		CacheTTL: Duration{cache.DefaultMaxAge},
		LegacyMirror: LegacyMirror{
			List:      releases.DefaultLegacyListURL,
			Artifacts: releases.DefaultLegacyArtifactsURL,
		},
		HTTP: HTTP{
			Timeout:    Duration{solchttp.DefaultTimeout},
			MaxRetries: solchttp.DefaultMaxRetries,
		},
		Log: Log{Level: "warn"},
		Telemetry: Telemetry{
			Exporter:     observability.ExporterNone,
			SamplingRate: 1.0,
		},
	}
}

// Load reads the configuration file and applies the environment.
//
// The file is path if given, else $GOSOLC_CONFIG, else config.toml under the
// default gosolc home. A missing default file is not an error; a missing
// file that was named explicitly is.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	explicit := path != ""
	if !explicit {
		path = getenv(ConfigEnv)
		explicit = path != ""
	}
	if path == "" {
		root, err := catalog.DefaultRoot(getenv)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(root, FileName)
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		cfg.Path = path
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, &UnknownKeysError{Path: path, Keys: keys}
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if getenv(catalog.HomeEnv) != "" || getenv(catalog.VirtualEnvEnv) != "" || c.Home == "" {
		root, err := catalog.DefaultRoot(getenv)
		if err != nil {
			return err
		}
		c.Home = root
	} else {
		home, err := expandHome(c.Home)
		if err != nil {
			return err
		}
		c.Home = home
	}

	if v := getenv(MirrorEnv); v != "" {
		c.Mirror = v
	}
	if v := getenv(LogLevelEnv); v != "" {
		c.Log.Level = v
	}
	switch strings.ToLower(getenv(OfflineEnv)) {
	case "1", "true", "yes":
		c.Offline = true
	}
	return nil
}

func expandHome(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", p, err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}

// Validate checks values the file or environment could have set wrongly.
func (c *Config) Validate() error {
	var errs []error
	for _, u := range []struct{ key, raw string }{
		{"mirror", c.Mirror},
		{"legacy_mirror.list", c.LegacyMirror.List},
		{"legacy_mirror.artifacts", c.LegacyMirror.Artifacts},
	} {
		if parsed, err := url.Parse(u.raw); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("%s: %q is not an absolute URL", u.key, u.raw))
		}
	}
	if c.CacheTTL.Duration < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl: must not be negative"))
	}
	if c.HTTP.Timeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout: must be positive"))
	}
	if c.HTTP.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("http.max_retries: must not be negative"))
	}
	if _, err := observability.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Telemetry.Exporter {
	case observability.ExporterNone, observability.ExporterStdout:
	case observability.ExporterOTLP:
		if c.Telemetry.Endpoint == "" {
			errs = append(errs, fmt.Errorf("telemetry.endpoint: required for the otlp exporter"))
		}
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter: unknown exporter %q", c.Telemetry.Exporter))
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sampling_rate: must be between 0 and 1"))
	}
	return errors.Join(errs...)
}

// Write encodes the configuration as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/willibrandon/gosolc/auth"
	"github.com/willibrandon/gosolc/cache"
	"github.com/willibrandon/gosolc/catalog"
	"github.com/willibrandon/gosolc/cmd/gosolc/cli"
	"github.com/willibrandon/gosolc/cmd/gosolc/config"
	"github.com/willibrandon/gosolc/cmd/gosolc/output"
	"github.com/willibrandon/gosolc/cmd/gosolc/version"
	solchttp "github.com/willibrandon/gosolc/http"
	"github.com/willibrandon/gosolc/installer"
	"github.com/willibrandon/gosolc/observability"
	"github.com/willibrandon/gosolc/releases"
	solcver "github.com/willibrandon/gosolc/version"
)

// runtime is everything one command invocation works with, assembled from
// the global flags, the environment and config.toml.
type runtime struct {
	console  *output.Console
	config   *config.Config
	logger   observability.Logger
	layout   catalog.Layout
	cache    *cache.DiskCache
	releases *releases.Client
	loader   catalog.Loader
	policy   *cache.Policy
	tracer   *sdktrace.TracerProvider
}

// keychain is replaced in tests.
var keychain auth.Store = auth.NewKeychain()

// setup loads the configuration and wires the runtime. The returned context
// carries the cache policy; close must be called when the command ends.
func setup(ctx context.Context, console *output.Console, opts *cli.GlobalOptions) (context.Context, *runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return ctx, nil, err
	}

	level, _ := observability.ParseLogLevel(cfg.Log.Level)
	logger := observability.NewLogger(console.Err(), level)

	platform, err := releases.CurrentPlatform()
	if err != nil {
		return ctx, nil, err
	}
	layout := catalog.Layout{Root: cfg.Home, Platform: platform}

	dc, err := cache.NewDiskCache(layout.CacheDir())
	if err != nil {
		return ctx, nil, err
	}

	policy := cache.NewPolicy()
	policy.MaxAge = cfg.CacheTTL.Duration
	policy.Refresh = opts.Refresh
	policy.Offline = cfg.Offline
	ctx = cache.WithPolicy(ctx, policy)
	logger = logger.ForContext("SessionId", policy.SessionID)

	tp, err := observability.SetupTracing(ctx, observability.TracerConfig{
		ServiceName:    "gosolc",
		ServiceVersion: version.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		OTLPEndpoint:   cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return ctx, nil, err
	}

	mirrors := []string{cfg.Mirror, cfg.LegacyMirror.List, cfg.LegacyMirror.Artifacts}
	hosts, err := auth.Load(keychain, mirrors...)
	if err != nil {
		logger.Debug("Sending anonymous mirror requests: {Error}", err)
		hosts = auth.NewHosts()
	}

	httpClient := solchttp.NewClientWithOptions(
		solchttp.WithTimeout(cfg.HTTP.Timeout.Duration),
		solchttp.WithUserAgent(version.UserAgent()),
		solchttp.WithMaxRetries(cfg.HTTP.MaxRetries),
		solchttp.WithHTTP3(cfg.HTTP.HTTP3),
		solchttp.WithAuthenticator(hosts),
		solchttp.WithTracing(cfg.Telemetry.Exporter != observability.ExporterNone),
		solchttp.WithLogger(logger),
	)

	rc := releases.NewClient(releases.Config{
		HTTP:               httpClient,
		Cache:              dc,
		Platform:           platform,
		Mirror:             cfg.Mirror,
		LegacyListURL:      cfg.LegacyMirror.List,
		LegacyArtifactsURL: cfg.LegacyMirror.Artifacts,
		Logger:             logger,
	})

	wd, err := os.Getwd()
	if err != nil {
		return ctx, nil, fmt.Errorf("working directory: %w", err)
	}

	rt := &runtime{
		console:  console,
		config:   cfg,
		logger:   logger,
		layout:   layout,
		cache:    dc,
		releases: rc,
		policy:   policy,
		tracer:   tp,
		loader: catalog.Loader{
			Layout:  layout,
			Cache:   dc,
			Mirror:  cfg.Mirror,
			WorkDir: wd,
			Logger:  logger,
		},
	}
	logger.Debug("gosolc {Version} on {Platform}, home {Home}", version.Version, platform, cfg.Home)
	return ctx, rt, nil
}

// loadConfig reads config.toml and applies the global flags on top.
func loadConfig(opts *cli.GlobalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile, os.Getenv)
	if err != nil {
		return nil, err
	}

	changed := false
	if opts.Home != "" {
		home, err := filepath.Abs(opts.Home)
		if err != nil {
			return nil, err
		}
		cfg.Home = home
	}
	if opts.Mirror != "" {
		cfg.Mirror = opts.Mirror
		changed = true
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
		changed = true
	}
	if opts.Offline {
		cfg.Offline = true
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// close flushes spans and writes the metrics textfile.
func (rt *runtime) close(ctx context.Context) {
	if path := rt.config.Metrics.Textfile; path != "" {
		if err := observability.WriteTextfile(path); err != nil {
			rt.logger.Warn("{Error}", err)
		}
	}
	if err := observability.ShutdownTracing(context.WithoutCancel(ctx), rt.tracer); err != nil {
		rt.logger.Warn("{Error}", err)
	}
}

// run wires a runtime around fn.
func run(ctx context.Context, console *output.Console, opts *cli.GlobalOptions, fn func(context.Context, *runtime) error) error {
	ctx, rt, err := setup(ctx, console, opts)
	if err != nil {
		return err
	}
	defer rt.close(ctx)
	return fn(ctx, rt)
}

// installer returns an installer reporting download progress on the console.
func (rt *runtime) installer(alwaysInstall bool) *installer.Installer {
	return installer.New(installer.Config{
		Loader:   rt.loader,
		Releases: rt.releases,
		Progress: func(v solcver.Version) solchttp.ProgressFunc {
			return rt.console.DownloadProgress("Downloading solc " + v.String())
		},
		AlwaysInstall: alwaysInstall || rt.config.AlwaysInstall,
		Logger:        rt.logger,
	})
}

// catalog loads a snapshot. With withIndex set, the release index is
// fetched (or read from cache) first so that the snapshot lists every
// known release; when that fails the snapshot holds installed versions
// only and a warning is printed.
func (rt *runtime) catalog(ctx context.Context, withIndex bool) (*catalog.Catalog, error) {
	if withIndex {
		if _, err := rt.releases.Index(ctx); err != nil {
			if errors.Is(err, releases.ErrOffline) {
				rt.console.Warning("offline and no cached release index; only installed versions are known")
			} else {
				rt.console.Warning("release index unavailable (%v); only installed versions are known", err)
			}
		}
	}
	return rt.loader.Load(ctx)
}

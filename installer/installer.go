// Package installer downloads, verifies and removes compiler binaries and
// writes the global and local selection markers.
//
// Every change lands with a rename: a version directory is assembled in a
// temporary directory next to its final location, and markers are written
// to a temporary file first. Readers never observe a half-written install.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/willibrandon/gosolc/catalog"
	solchttp "github.com/willibrandon/gosolc/http"
	"github.com/willibrandon/gosolc/observability"
	"github.com/willibrandon/gosolc/releases"
	"github.com/willibrandon/gosolc/version"
)

// Latest is the install spec for the newest listed release.
const Latest = "latest"

// ReleaseSource lists releases and opens artifacts. *releases.Client implements it.
type ReleaseSource interface {
	Index(ctx context.Context) (*releases.Index, error)
	Download(ctx context.Context, b releases.Build, progress solchttp.ProgressFunc) (io.ReadCloser, int64, error)
}

// UnknownVersionError is returned for a version the release listing does not know.
type UnknownVersionError struct {
	Version  version.Version
	Platform releases.Platform
}

func (e *UnknownVersionError) Error() string {
	earliest := e.Platform.EarliestRelease()
	if e.Version.LessThan(earliest) {
		return fmt.Sprintf("solc %s is not available for %s: the earliest release is %s", e.Version, e.Platform, earliest)
	}
	return fmt.Sprintf("solc %s is not a known release for %s", e.Version, e.Platform)
}

// Failure is a spec that could not be processed.
type Failure struct {
	Spec string
	Err  error
}

// Result reports what an operation did, per version.
type Result struct {
	Installed []version.Version
	Removed   []version.Version
	Skipped   []version.Version
	Failed    []Failure
}

// Err joins the failures, or returns nil.
func (r Result) Err() error {
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f.Err
	}
	return errors.Join(errs...)
}

func (r *Result) fail(spec string, err error) {
	r.Failed = append(r.Failed, Failure{Spec: spec, Err: err})
}

// Config configures an Installer.
type Config struct {
	// Loader locates the install root and re-reads it to confirm changes.
	Loader   catalog.Loader
	Releases ReleaseSource

	// Checksummer hashes downloads; nil means catalog.FileChecksummer.
	Checksummer catalog.Checksummer

	// Progress, if set, returns a download progress callback per version.
	Progress func(v version.Version) solchttp.ProgressFunc

	// AlwaysInstall lets selection install a missing version first.
	AlwaysInstall bool

	LockTimeout time.Duration
	Logger      observability.Logger
}

// Installer changes the state a catalog.Loader reads.
type Installer struct {
	loader        catalog.Loader
	layout        catalog.Layout
	releases      ReleaseSource
	sum           catalog.Checksummer
	progress      func(v version.Version) solchttp.ProgressFunc
	alwaysInstall bool
	lockTimeout   time.Duration
	logger        observability.Logger
}

// New creates an Installer.
func New(cfg Config) *Installer {
	in := &Installer{
		loader:        cfg.Loader,
		layout:        cfg.Loader.Layout,
		releases:      cfg.Releases,
		sum:           cfg.Checksummer,
		progress:      cfg.Progress,
		alwaysInstall: cfg.AlwaysInstall,
		lockTimeout:   cfg.LockTimeout,
		logger:        observability.OrNull(cfg.Logger),
	}
	if in.sum == nil {
		in.sum = catalog.FileChecksummer{}
	}
	if in.lockTimeout <= 0 {
		in.lockTimeout = DefaultLockTimeout
	}
	return in
}

// Install installs each spec, a version or "latest". Installed versions are
// skipped. Specs are processed independently; one failure does not stop the rest.
func (in *Installer) Install(ctx context.Context, specs ...string) Result {
	return in.install(ctx, "install", false, specs)
}

// Reinstall replaces the given versions even when they are installed.
func (in *Installer) Reinstall(ctx context.Context, versions ...version.Version) Result {
	return in.install(ctx, "reinstall", true, toSpecs(versions))
}

// Repair reinstalls every version whose verification reported a checksum mismatch.
func (in *Installer) Repair(ctx context.Context, verifications map[version.Version]catalog.Verification) Result {
	var broken []version.Version
	for v, res := range verifications {
		if res.Status == catalog.VerifyChecksumMismatch {
			broken = append(broken, v)
		}
	}
	if len(broken) == 0 {
		return Result{}
	}
	version.Sort(broken)
	in.logger.InfoContext(ctx, "Repairing {Count} broken installs", len(broken))
	return in.install(ctx, "repair", true, toSpecs(broken))
}

// Upgrade reinstalls every installed version from the current listing.
func (in *Installer) Upgrade(ctx context.Context) Result {
	installed, err := in.loader.Installed(ctx)
	if err != nil {
		var r Result
		r.fail("", err)
		return r
	}
	vs := make([]version.Version, 0, len(installed))
	for v := range installed {
		vs = append(vs, v)
	}
	version.Sort(vs)
	return in.install(ctx, "upgrade", true, toSpecs(vs))
}

func toSpecs(vs []version.Version) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func (in *Installer) install(ctx context.Context, op string, force bool, specs []string) Result {
	var res Result

	idx, err := in.releases.Index(ctx)
	if err != nil {
		for _, s := range specs {
			res.fail(s, err)
		}
		return res
	}

	installed, err := in.loader.Installed(ctx)
	if err != nil {
		for _, s := range specs {
			res.fail(s, err)
		}
		return res
	}

	seen := map[version.Version]bool{}
	var attempted []version.Version
	for _, spec := range specs {
		v, err := in.resolveSpec(idx, spec)
		if err != nil {
			res.fail(spec, err)
			observability.InstallsTotal.WithLabelValues(op, "error").Inc()
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true

		if _, ok := installed[v]; ok && !force {
			in.logger.InfoContext(ctx, "solc {Version} is already installed", v)
			res.Skipped = append(res.Skipped, v)
			observability.InstallsTotal.WithLabelValues(op, "skipped").Inc()
			continue
		}

		b, ok := idx.Lookup(v)
		if !ok {
			res.fail(spec, &UnknownVersionError{Version: v, Platform: in.layout.Platform})
			observability.InstallsTotal.WithLabelValues(op, "error").Inc()
			continue
		}

		err = in.installOne(ctx, op, v, b, force)
		if errors.Is(err, errAlreadyInstalled) {
			res.Skipped = append(res.Skipped, v)
			observability.InstallsTotal.WithLabelValues(op, "skipped").Inc()
			continue
		}
		if err != nil {
			in.logger.ErrorContext(ctx, "Failed to install solc {Version}: {Error}", v, err)
			res.fail(spec, err)
			observability.InstallsTotal.WithLabelValues(op, "error").Inc()
			continue
		}
		attempted = append(attempted, v)
	}

	in.confirm(ctx, op, attempted, &res)
	return res
}

// confirm re-reads the artifacts directory so only versions the catalog
// can see are reported as installed.
func (in *Installer) confirm(ctx context.Context, op string, attempted []version.Version, res *Result) {
	if len(attempted) == 0 {
		return
	}
	installed, err := in.loader.Installed(ctx)
	for _, v := range attempted {
		if _, ok := installed[v]; err == nil && ok {
			res.Installed = append(res.Installed, v)
			observability.InstallsTotal.WithLabelValues(op, "success").Inc()
			continue
		}
		if err == nil {
			err = fmt.Errorf("solc %s missing after install", v)
		}
		res.fail(v.String(), err)
		observability.InstallsTotal.WithLabelValues(op, "error").Inc()
	}
}

func (in *Installer) resolveSpec(idx *releases.Index, spec string) (version.Version, error) {
	if strings.EqualFold(strings.TrimSpace(spec), Latest) {
		v, ok := idx.Latest()
		if !ok {
			return version.Version{}, errors.New("release listing is empty")
		}
		return v, nil
	}
	return version.Parse(strings.TrimSpace(spec))
}

// Uninstall removes the given versions. Versions that are not installed
// are skipped. A global selection pointing at a removed version is cleared.
func (in *Installer) Uninstall(ctx context.Context, versions ...version.Version) Result {
	var res Result

	installed, err := in.loader.Installed(ctx)
	if err != nil {
		for _, v := range versions {
			res.fail(v.String(), err)
		}
		return res
	}

	for _, v := range versions {
		if _, ok := installed[v]; !ok {
			res.Skipped = append(res.Skipped, v)
			continue
		}

		_, span := observability.StartInstallSpan(ctx, "uninstall", v.String())
		err := withLock(ctx, in.layout.ArtifactDir(v), in.lockTimeout, func() error {
			return os.RemoveAll(in.layout.ArtifactDir(v))
		})
		observability.EndSpanWithError(span, err)
		if err != nil {
			res.fail(v.String(), fmt.Errorf("remove solc %s: %w", v, err))
			observability.InstallsTotal.WithLabelValues("uninstall", "error").Inc()
			continue
		}
		in.logger.InfoContext(ctx, "Removed solc {Version}", v)
		res.Removed = append(res.Removed, v)
		observability.InstallsTotal.WithLabelValues("uninstall", "success").Inc()
	}

	if len(res.Removed) > 0 {
		if err := in.clearGlobalIf(res.Removed); err != nil {
			in.logger.WarnContext(ctx, "Could not clear global selection: {Error}", err)
		}
	}
	return res
}

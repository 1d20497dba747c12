package installer

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/willibrandon/gosolc/catalog"
	solchttp "github.com/willibrandon/gosolc/http"
	"github.com/willibrandon/gosolc/observability"
	"github.com/willibrandon/gosolc/releases"
	"github.com/willibrandon/gosolc/version"
)

const (
	tempDirPattern = ".install-*"
	downloadName   = "download"
	zipExecutable  = "solc.exe"
)

// errAlreadyInstalled reports that another process finished the install
// while this one waited for the lock.
var errAlreadyInstalled = errors.New("already installed")

// installOne downloads b into a temporary directory beside the artifacts,
// checks it against the listing and renames it into place. Unless force is
// set it returns errAlreadyInstalled when the binary appeared while waiting
// for the lock. An existing binary is replaced by a single rename, so it is
// never missing for concurrent readers.
func (in *Installer) installOne(ctx context.Context, op string, v version.Version, b releases.Build, force bool) (err error) {
	ctx, span := observability.StartInstallSpan(ctx, op, v.String())
	defer func() {
		if errors.Is(err, errAlreadyInstalled) {
			observability.EndSpanWithError(span, nil)
			return
		}
		observability.EndSpanWithError(span, err)
	}()

	if b.SHA256 == "" {
		return fmt.Errorf("release listing has no checksum for solc %s", v)
	}

	target := in.layout.ArtifactDir(v)
	return withLock(ctx, target, in.lockTimeout, func() error {
		if !force && isRegularFile(in.layout.BinaryPath(v)) {
			in.logger.InfoContext(ctx, "solc {Version} was installed by another process", v)
			return errAlreadyInstalled
		}
		if err := os.MkdirAll(in.layout.ArtifactsDir(), 0o755); err != nil {
			return fmt.Errorf("create artifacts directory: %w", err)
		}
		tmp, err := os.MkdirTemp(in.layout.ArtifactsDir(), tempDirPattern)
		if err != nil {
			return fmt.Errorf("create staging directory: %w", err)
		}
		defer func() { _ = os.RemoveAll(tmp) }()

		downloaded := filepath.Join(tmp, downloadName)
		if err := in.download(ctx, v, b, downloaded); err != nil {
			return err
		}
		if err := in.checkDigest(v, b, downloaded); err != nil {
			return err
		}

		bin := filepath.Join(tmp, in.layout.Platform.Executable(v))
		if in.layout.Platform.IsZipArchive(v) {
			if err := extractExecutable(downloaded, bin); err != nil {
				return fmt.Errorf("extract solc %s: %w", v, err)
			}
			_ = os.Remove(downloaded)
		} else if err := os.Rename(downloaded, bin); err != nil {
			return fmt.Errorf("stage solc %s: %w", v, err)
		}
		if err := os.Chmod(bin, 0o755); err != nil {
			return fmt.Errorf("chmod solc %s: %w", v, err)
		}

		if info, err := os.Stat(target); err == nil && info.IsDir() {
			if err := os.Rename(bin, in.layout.BinaryPath(v)); err != nil {
				return fmt.Errorf("replace solc %s: %w", v, err)
			}
		} else {
			if err := os.RemoveAll(target); err != nil {
				return fmt.Errorf("remove previous solc %s: %w", v, err)
			}
			if err := os.Rename(tmp, target); err != nil {
				return fmt.Errorf("install solc %s: %w", v, err)
			}
		}
		in.logger.InfoContext(ctx, "Installed solc {Version} to {Path}", v, target)
		return nil
	})
}

func (in *Installer) download(ctx context.Context, v version.Version, b releases.Build, dest string) error {
	var progress solchttp.ProgressFunc
	if in.progress != nil {
		progress = in.progress(v)
	}

	body, _, err := in.releases.Download(ctx, b, progress)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create download file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return fmt.Errorf("download solc %s: %w", v, err)
	}
	return f.Close()
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// checkDigest compares the downloaded file with the listing's SHA-256 and Keccak-256.
func (in *Installer) checkDigest(v version.Version, b releases.Build, path string) error {
	actual, err := in.sum.Checksum(path)
	if err != nil {
		return err
	}
	expected := catalog.Digest{SHA256: b.SHA256, Keccak256: b.Keccak256}
	if actual.Matches(expected) {
		return nil
	}
	return catalog.Verification{
		Version:  v,
		Status:   catalog.VerifyChecksumMismatch,
		Expected: expected,
		Actual:   actual,
	}.Mismatch()
}

// extractExecutable copies solc.exe out of the zip archive at src to dest.
func extractExecutable(src, dest string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Base(filepath.FromSlash(f.Name)), zipExecutable) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()

		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			return err
		}
		return out.Close()
	}
	return errors.New("archive does not contain " + zipExecutable)
}

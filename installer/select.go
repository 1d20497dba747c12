package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/willibrandon/gosolc/catalog"
	"github.com/willibrandon/gosolc/version"
)

// SelectGlobal writes the global selection marker.
func (in *Installer) SelectGlobal(ctx context.Context, v version.Version) error {
	if err := in.ensureInstalled(ctx, v); err != nil {
		return err
	}
	if err := writeMarker(in.layout.GlobalMarker(), v); err != nil {
		return err
	}
	in.logger.InfoContext(ctx, "Switched global version to {Version}", v)
	return nil
}

// SelectLocal writes the local selection marker in dir.
func (in *Installer) SelectLocal(ctx context.Context, dir string, v version.Version) error {
	if err := in.ensureInstalled(ctx, v); err != nil {
		return err
	}
	if err := writeMarker(catalog.LocalMarker(dir), v); err != nil {
		return err
	}
	in.logger.InfoContext(ctx, "Switched local version in {Dir} to {Version}", dir, v)
	return nil
}

// ensureInstalled accepts an installed version. A missing one is installed
// when AlwaysInstall is set; an unlisted one is an *UnknownVersionError.
func (in *Installer) ensureInstalled(ctx context.Context, v version.Version) error {
	installed, err := in.loader.Installed(ctx)
	if err != nil {
		return err
	}
	if _, ok := installed[v]; ok {
		return nil
	}

	idx, err := in.releases.Index(ctx)
	if err != nil {
		return err
	}
	if _, ok := idx.Lookup(v); !ok {
		return &UnknownVersionError{Version: v, Platform: in.layout.Platform}
	}
	if !in.alwaysInstall {
		vs := make([]version.Version, 0, len(installed))
		for iv := range installed {
			vs = append(vs, iv)
		}
		version.Sort(vs)
		return &catalog.NotInstalledError{Version: v, Installed: vs}
	}

	res := in.Install(ctx, v.String())
	return res.Err()
}

// writeMarker replaces path with the version through a temporary file and rename.
func writeMarker(path string, v version.Version) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(v.String()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write selection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// clearGlobalIf removes the global marker when it names one of removed.
func (in *Installer) clearGlobalIf(removed []version.Version) error {
	path := in.layout.GlobalMarker()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	current, err := version.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return nil
	}
	for _, v := range removed {
		if v == current {
			return os.Remove(path)
		}
	}
	return nil
}

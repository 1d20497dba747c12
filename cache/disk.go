// Package cache provides the on-disk cache for release listings.
//
// Entries are grouped by mirror: the folder name is derived from a hash of
// the mirror URL so that switching mirrors never serves a stale listing
// from another host.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// hashLength is the number of bytes of the SHA-256 digest kept in folder names.
	hashLength = 20

	// bufferSize for file I/O operations.
	bufferSize = 32 * 1024

	// FileExtension for final cache files.
	FileExtension = ".json"
)

// DiskCache provides persistent caching to disk.
type DiskCache struct {
	rootDir string
}

// NewDiskCache creates a disk cache rooted at rootDir, creating it if needed.
func NewDiskCache(rootDir string) (*DiskCache, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &DiskCache{rootDir: rootDir}, nil
}

// Root returns the cache root directory.
func (dc *DiskCache) Root() string {
	return dc.rootDir
}

// folderName derives a readable, collision-resistant folder name from a URL.
// The trailing part of the URL is kept for humans browsing the cache.
func folderName(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	hash := hex.EncodeToString(sum[:hashLength])

	trailing := sourceURL
	if len(trailing) > 24 {
		trailing = trailing[len(trailing)-24:]
	}
	return hash + "$" + sanitize(trailing)
}

// sanitize replaces characters that are not safe in file names.
func sanitize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*', 0:
			sb.WriteByte('_')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Path returns the cache file path for a source URL and key.
func (dc *DiskCache) Path(sourceURL, key string) string {
	return filepath.Join(dc.rootDir, folderName(sourceURL), sanitize(key)+FileExtension)
}

// Get opens a cached entry if it exists and is younger than maxAge.
// A maxAge of zero or less accepts an entry of any age.
// Returns (nil, false, nil) on a miss.
func (dc *DiskCache) Get(sourceURL, key string, maxAge time.Duration) (io.ReadCloser, bool, error) {
	path := dc.Path(sourceURL, key)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stat cache file: %w", err)
	}

	if maxAge > 0 && time.Since(info.ModTime()) >= maxAge {
		return nil, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("open cache file: %w", err)
	}
	return f, true, nil
}

// ModTime returns when an entry was last written, or false if it is absent.
func (dc *DiskCache) ModTime(sourceURL, key string) (time.Time, bool) {
	info, err := os.Stat(dc.Path(sourceURL, key))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Set writes data using a two-phase update: the content goes to a unique
// temporary file, is validated, and is then renamed over the final path.
// Readers never observe a partially written entry.
func (dc *DiskCache) Set(sourceURL, key string, data io.Reader, validate func(io.ReadSeeker) error) error {
	path := dc.Path(sourceURL, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".new-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.CopyBuffer(tmp, data, make([]byte, bufferSize)); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if validate != nil {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seek temp file: %w", err)
		}
		if err := validate(tmp); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		// Windows refuses to rename over an existing file.
		_ = os.Remove(path)
		if err := os.Rename(tmpName, path); err != nil {
			return fmt.Errorf("move cache file: %w", err)
		}
	}
	committed = true
	return nil
}

// Delete removes a cache entry. Removing a missing entry is not an error.
func (dc *DiskCache) Delete(sourceURL, key string) error {
	err := os.Remove(dc.Path(sourceURL, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache file: %w", err)
	}
	return nil
}

// Clear removes every cache entry and recreates the empty root.
func (dc *DiskCache) Clear() error {
	if err := os.RemoveAll(dc.rootDir); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return os.MkdirAll(dc.rootDir, 0o755)
}

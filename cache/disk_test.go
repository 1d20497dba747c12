package cache

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testMirror = "https://binaries.soliditylang.org"

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(data)
}

func TestDiskCache_SetGet(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache() error = %v", err)
	}

	if err := dc.Set(testMirror, "linux-amd64", strings.NewReader(`{"builds":[]}`), nil); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	rc, ok, err := dc.Get(testMirror, "linux-amd64", time.Hour)
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if got := readAll(t, rc); got != `{"builds":[]}` {
		t.Errorf("Get() content = %q", got)
	}
}

func TestDiskCache_Miss(t *testing.T) {
	dc, _ := NewDiskCache(t.TempDir())

	rc, ok, err := dc.Get(testMirror, "macosx-amd64", time.Hour)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || rc != nil {
		t.Error("Get() should miss for an absent entry")
	}
}

func TestDiskCache_TTLExpiration(t *testing.T) {
	dc, _ := NewDiskCache(t.TempDir())
	if err := dc.Set(testMirror, "linux-amd64", strings.NewReader("x"), nil); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(dc.Path(testMirror, "linux-amd64"), old, old); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if _, ok, _ := dc.Get(testMirror, "linux-amd64", time.Hour); ok {
		t.Error("Get() should miss for an expired entry")
	}

	// Zero max age accepts any age.
	rc, ok, err := dc.Get(testMirror, "linux-amd64", 0)
	if err != nil || !ok {
		t.Fatalf("Get(maxAge=0) = ok %v, err %v", ok, err)
	}
	rc.Close()

	mod, ok := dc.ModTime(testMirror, "linux-amd64")
	if !ok || mod.After(time.Now().Add(-time.Hour)) {
		t.Errorf("ModTime() = %v, %v", mod, ok)
	}
}

func TestDiskCache_AtomicUpdate(t *testing.T) {
	dc, _ := NewDiskCache(t.TempDir())

	if err := dc.Set(testMirror, "k", strings.NewReader("first"), nil); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := dc.Set(testMirror, "k", strings.NewReader("second"), nil); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	rc, ok, _ := dc.Get(testMirror, "k", 0)
	if !ok {
		t.Fatal("Get() missed after overwrite")
	}
	if got := readAll(t, rc); got != "second" {
		t.Errorf("content = %q, want second", got)
	}

	entries, err := os.ReadDir(filepath.Dir(dc.Path(testMirror, "k")))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("cache folder holds %d files, want 1 (temp files leaked)", len(entries))
	}
}

func TestDiskCache_SetWithValidation(t *testing.T) {
	dc, _ := NewDiskCache(t.TempDir())
	errBad := errors.New("bad listing")

	reject := func(r io.ReadSeeker) error {
		data, _ := io.ReadAll(r)
		if !bytes.HasPrefix(data, []byte("{")) {
			return errBad
		}
		return nil
	}

	err := dc.Set(testMirror, "k", strings.NewReader("<html>"), reject)
	if !errors.Is(err, errBad) {
		t.Fatalf("Set() error = %v, want errBad", err)
	}
	if _, ok, _ := dc.Get(testMirror, "k", 0); ok {
		t.Error("rejected content must not be cached")
	}

	if err := dc.Set(testMirror, "k", strings.NewReader("{}"), reject); err != nil {
		t.Fatalf("Set() valid error = %v", err)
	}
}

func TestDiskCache_MirrorsAreIsolated(t *testing.T) {
	dc, _ := NewDiskCache(t.TempDir())

	if dc.Path(testMirror, "k") == dc.Path("https://mirror.example.com", "k") {
		t.Fatal("different mirrors share a cache path")
	}

	_ = dc.Set(testMirror, "k", strings.NewReader("a"), nil)
	if _, ok, _ := dc.Get("https://mirror.example.com", "k", 0); ok {
		t.Error("entry leaked across mirrors")
	}
}

func TestDiskCache_DeleteAndClear(t *testing.T) {
	dc, _ := NewDiskCache(t.TempDir())
	_ = dc.Set(testMirror, "a", strings.NewReader("a"), nil)
	_ = dc.Set(testMirror, "b", strings.NewReader("b"), nil)

	if err := dc.Delete(testMirror, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := dc.Delete(testMirror, "a"); err != nil {
		t.Errorf("Delete() of missing entry error = %v", err)
	}
	if _, ok, _ := dc.Get(testMirror, "a", 0); ok {
		t.Error("Get() hit after Delete()")
	}

	if err := dc.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok, _ := dc.Get(testMirror, "b", 0); ok {
		t.Error("Get() hit after Clear()")
	}
	if _, err := os.Stat(dc.Root()); err != nil {
		t.Errorf("root missing after Clear(): %v", err)
	}
}

func TestPath_SanitizesKey(t *testing.T) {
	dc, _ := NewDiskCache(t.TempDir())
	p := dc.Path(testMirror, "a/b:c")
	if strings.ContainsAny(filepath.Base(p), "/:") {
		t.Errorf("Path() = %q contains unsafe characters", p)
	}
	if !strings.HasSuffix(p, FileExtension) {
		t.Errorf("Path() = %q missing extension", p)
	}
}

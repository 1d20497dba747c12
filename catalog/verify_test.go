package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/gosolc/releases"
	"github.com/willibrandon/gosolc/version"
)

func TestFileChecksummer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	d, err := FileChecksummer{}.Checksum(path)
	require.NoError(t, err)
	// well-known digests of the empty input
	assert.Equal(t, "0xe3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", d.SHA256)
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", d.Keccak256)

	_, err = FileChecksummer{}.Checksum(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	f.publish("0.8.19", map[string][]byte{
		"0.8.17": []byte("good"),
		"0.8.18": []byte("original"),
		"0.8.19": []byte("absent"),
	})
	f.install("0.8.17", []byte("good"))
	f.install("0.8.18", []byte("tampered"))
	f.install("0.6.0", []byte("unlisted"))

	cat := f.load()
	got := cat.Verify(context.Background(), []version.Version{
		v("0.8.17"), v("0.8.18"), v("0.8.19"), v("0.6.0"),
	}, FileChecksummer{})

	assert.Equal(t, VerifyOK, got[v("0.8.17")].Status)
	assert.Equal(t, VerifyChecksumMismatch, got[v("0.8.18")].Status)
	assert.Equal(t, VerifyMissing, got[v("0.8.19")].Status)
	assert.Equal(t, VerifyUnknown, got[v("0.6.0")].Status)

	assert.NoError(t, got[v("0.8.17")].Mismatch())
	var mErr *ChecksumMismatchError
	require.ErrorAs(t, got[v("0.8.18")].Mismatch(), &mErr)
	assert.Equal(t, v("0.8.18"), mErr.Version)
	assert.NotEqual(t, mErr.Expected, mErr.Actual)
}

func TestVerify_DefaultsToAllInstalled(t *testing.T) {
	f := newFixture(t)
	f.publish("0.8.19", map[string][]byte{"0.8.19": []byte("x")})
	f.install("0.8.19", []byte("x"))
	f.install("0.8.0", []byte("y"))

	got := f.load().Verify(context.Background(), nil, nil)
	assert.Len(t, got, 2)
	assert.Equal(t, VerifyOK, got[v("0.8.19")].Status)
}

type failingChecksummer struct{}

func (failingChecksummer) Checksum(string) (Digest, error) {
	return Digest{}, errors.New("permission denied")
}

func TestVerify_UnreadableBinaryIsMismatch(t *testing.T) {
	f := newFixture(t)
	f.publish("0.8.19", map[string][]byte{"0.8.19": []byte("x")})
	f.install("0.8.19", []byte("x"))

	got := f.load().Verify(context.Background(), []version.Version{v("0.8.19")}, failingChecksummer{})
	res := got[v("0.8.19")]
	assert.Equal(t, VerifyChecksumMismatch, res.Status)
	assert.Error(t, res.Err)
}

func TestSameHex(t *testing.T) {
	assert.True(t, sameHex("0xABcd", "abcd"))
	assert.False(t, sameHex("", ""))
	assert.False(t, sameHex("0x01", "0x02"))
}

func TestDigest_Matches(t *testing.T) {
	expected := Digest{SHA256: "0xAA", Keccak256: "0xbb"}

	assert.True(t, Digest{SHA256: "aa", Keccak256: "BB"}.Matches(expected))
	assert.False(t, Digest{SHA256: "aa", Keccak256: "cc"}.Matches(expected))
	assert.False(t, Digest{SHA256: "ab", Keccak256: "bb"}.Matches(expected))
	assert.True(t, Digest{SHA256: "aa", Keccak256: "cc"}.Matches(Digest{SHA256: "0xaa"}), "missing keccak is not checked")
}

func TestVerify_ZipArchiveIsUnknown(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "solc-0.7.1.exe")
	require.NoError(t, os.WriteFile(bin, []byte("extracted"), 0o755))

	cat := &Catalog{
		Platform: releases.Windows,
		Builds: map[version.Version]releases.Build{
			v("0.7.1"): {Version: "0.7.1", SHA256: "0x" + strings.Repeat("1", 64)},
		},
		Installed: map[version.Version]Installation{
			v("0.7.1"): {Version: v("0.7.1"), Path: bin},
		},
	}

	res := cat.Verify(context.Background(), nil, nil)[v("0.7.1")]
	assert.Equal(t, VerifyUnknown, res.Status)
}

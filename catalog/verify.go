package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/willibrandon/gosolc/observability"
	"github.com/willibrandon/gosolc/version"
)

// VerifyStatus is the outcome of checking one installed binary.
type VerifyStatus string

const (
	VerifyOK               VerifyStatus = "ok"
	VerifyChecksumMismatch VerifyStatus = "checksum-mismatch"
	VerifyMissing          VerifyStatus = "missing"
	// VerifyUnknown means the listing has no checksum to compare against.
	VerifyUnknown VerifyStatus = "unknown"
)

// Digest holds 0x-prefixed lowercase hex checksums as published in list.json.
type Digest struct {
	SHA256    string
	Keccak256 string
}

// Matches reports whether d agrees with expected. An expected digest
// without a Keccak-256 is checked on SHA-256 alone.
func (d Digest) Matches(expected Digest) bool {
	if !sameHex(expected.SHA256, d.SHA256) {
		return false
	}
	return expected.Keccak256 == "" || sameHex(expected.Keccak256, d.Keccak256)
}

// Checksummer computes the digest of a file.
type Checksummer interface {
	Checksum(path string) (Digest, error)
}

// FileChecksummer hashes a file with SHA-256 and Keccak-256 in one pass.
type FileChecksummer struct{}

// Checksum implements Checksummer.
func (FileChecksummer) Checksum(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sha := sha256.New()
	keccak := sha3.NewLegacyKeccak256()
	if _, err := io.Copy(io.MultiWriter(sha, keccak), f); err != nil {
		return Digest{}, fmt.Errorf("hash %s: %w", path, err)
	}
	return Digest{
		SHA256:    "0x" + hex.EncodeToString(sha.Sum(nil)),
		Keccak256: "0x" + hex.EncodeToString(keccak.Sum(nil)),
	}, nil
}

// ChecksumMismatchError describes an installed binary that differs from the listing.
type ChecksumMismatchError struct {
	Version  version.Version
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("solc %s checksum mismatch: expected %s, got %s", e.Version, e.Expected, e.Actual)
}

// Verification is the result of verifying one version.
type Verification struct {
	Version  version.Version
	Status   VerifyStatus
	Expected Digest
	Actual   Digest
	// Err is set when the binary could not be read; Status is then a mismatch.
	Err error
}

// Mismatch returns a *ChecksumMismatchError for a mismatch and nil otherwise.
func (v Verification) Mismatch() error {
	if v.Status != VerifyChecksumMismatch {
		return nil
	}
	expected, actual := v.Expected.SHA256, v.Actual.SHA256
	if sameHex(expected, actual) {
		expected, actual = v.Expected.Keccak256, v.Actual.Keccak256
	}
	return &ChecksumMismatchError{Version: v.Version, Expected: expected, Actual: actual}
}

// Verify recomputes the checksum of each requested version and compares it
// with the cached listing. A mismatch is a result value, never an error.
// An empty request verifies every installed version.
func (c *Catalog) Verify(ctx context.Context, versions []version.Version, sum Checksummer) map[version.Version]Verification {
	if len(versions) == 0 {
		versions = c.InstalledVersions()
	}
	if sum == nil {
		sum = FileChecksummer{}
	}

	_, span := observability.StartVerifySpan(ctx, len(versions))
	defer span.End()

	out := make(map[version.Version]Verification, len(versions))
	for _, v := range versions {
		res := c.verifyOne(v, sum)
		observability.VerificationsTotal.WithLabelValues(string(res.Status)).Inc()
		out[v] = res
	}
	return out
}

func (c *Catalog) verifyOne(v version.Version, sum Checksummer) Verification {
	res := Verification{Version: v}

	inst, ok := c.Installed[v]
	if !ok {
		res.Status = VerifyMissing
		return res
	}

	// zip-era Windows listings checksum the archive, not the extracted binary
	build, ok := c.Builds[v]
	if !ok || build.SHA256 == "" || c.Platform.IsZipArchive(v) {
		res.Status = VerifyUnknown
		return res
	}
	res.Expected = Digest{SHA256: build.SHA256, Keccak256: build.Keccak256}

	actual, err := sum.Checksum(inst.Path)
	if err != nil {
		res.Status = VerifyChecksumMismatch
		res.Err = err
		return res
	}
	res.Actual = actual

	if actual.Matches(res.Expected) {
		res.Status = VerifyOK
	} else {
		res.Status = VerifyChecksumMismatch
	}
	return res
}

// sameHex compares two hex digests ignoring case and an optional 0x prefix.
func sameHex(a, b string) bool {
	norm := func(s string) string {
		return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	}
	return norm(a) != "" && norm(a) == norm(b)
}

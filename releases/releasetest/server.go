// Package releasetest provides an in-process release mirror for tests.
package releasetest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/sha3"

	"github.com/willibrandon/gosolc/releases"
	"github.com/willibrandon/gosolc/version"
)

// Server serves a primary mirror for one platform and a legacy mirror.
// Artifacts are arbitrary byte strings; checksums in the listings are
// computed from them.
type Server struct {
	*httptest.Server
	Platform releases.Platform

	mu        sync.Mutex
	primary   map[string][]byte
	legacy    map[string][]byte
	latest    string
	listHits  atomic.Int32
	overrides map[string]string // path -> sha256 override
}

// NewServer starts a mirror and registers its Close with t.Cleanup.
func NewServer(t *testing.T, p releases.Platform) *Server {
	t.Helper()
	s := &Server{
		Platform:  p,
		primary:   map[string][]byte{},
		legacy:    map[string][]byte{},
		overrides: map[string]string{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Add publishes version v with the given artifact bytes on the primary mirror.
func (s *Server) Add(v string, artifact []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary[v] = artifact
	if s.latest == "" || version.MustParse(v).GreaterThan(version.MustParse(s.latest)) {
		s.latest = v
	}
}

// AddLegacy publishes version v on the legacy mirror.
func (s *Server) AddLegacy(v string, artifact []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy[v] = artifact
}

// CorruptChecksum makes the listing advertise a wrong SHA-256 for v.
func (s *Server) CorruptChecksum(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[v] = "0x" + strings.Repeat("0", 64)
}

// ListHits returns how many listing requests were served.
func (s *Server) ListHits() int {
	return int(s.listHits.Load())
}

// LegacyListURL is the legacy listing URL to pass to releases.Config.
func (s *Server) LegacyListURL() string { return s.URL + "/legacy/list.json" }

// LegacyArtifactsURL is the legacy artifact directory.
func (s *Server) LegacyArtifactsURL() string { return s.URL + "/legacy/" }

// Checksums returns the 0x-prefixed SHA-256 and Keccak-256 of data.
func Checksums(data []byte) (sha, keccak string) {
	s := sha256.Sum256(data)
	k := sha3.NewLegacyKeccak256()
	k.Write(data)
	return "0x" + hex.EncodeToString(s[:]), "0x" + hex.EncodeToString(k.Sum(nil))
}

// ArtifactName is the path a version is published under.
func (s *Server) ArtifactName(v string) string {
	return "solc-" + string(s.Platform) + "-v" + v + "+commit.00000000"
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.URL.Path {
	case "/" + string(s.Platform) + "/list.json":
		s.listHits.Add(1)
		s.writeList(w, s.primary, s.latest)
		return
	case "/legacy/list.json":
		s.listHits.Add(1)
		s.writeList(w, s.legacy, "")
		return
	}

	name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	set := s.primary
	if strings.HasPrefix(r.URL.Path, "/legacy/") {
		set = s.legacy
	}
	for v, data := range set {
		if s.ArtifactName(v) == name {
			_, _ = w.Write(data)
			return
		}
	}
	http.NotFound(w, r)
}

func (s *Server) writeList(w http.ResponseWriter, set map[string][]byte, latest string) {
	idx := releases.Index{Releases: map[string]string{}, LatestRelease: latest}

	keys := make([]string, 0, len(set))
	for v := range set {
		keys = append(keys, v)
	}
	sort.Strings(keys)

	for _, v := range keys {
		sha, keccak := Checksums(set[v])
		if o, ok := s.overrides[v]; ok {
			sha = o
		}
		path := s.ArtifactName(v)
		idx.Builds = append(idx.Builds, releases.Build{
			Path:        path,
			Version:     v,
			Build:       "commit.00000000",
			LongVersion: v + "+commit.00000000",
			SHA256:      sha,
			Keccak256:   keccak,
		})
		idx.Releases[v] = path
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(idx)
}

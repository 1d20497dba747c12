package auth

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Hosts routes each request to the authenticator registered for its host.
// Requests to other hosts, and plain-http requests to non-loopback hosts,
// are sent without credentials.
type Hosts struct {
	mu    sync.RWMutex
	hosts map[string]Authenticator
}

// NewHosts returns an empty host table.
func NewHosts() *Hosts {
	return &Hosts{hosts: map[string]Authenticator{}}
}

// Add registers a for the host of rawURL (or a bare host name).
func (h *Hosts) Add(rawURL string, a Authenticator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hosts[HostOf(rawURL)] = a
}

// Len returns the number of registered hosts.
func (h *Hosts) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.hosts)
}

// Authenticate implements Authenticator.
func (h *Hosts) Authenticate(req *http.Request) error {
	host := strings.ToLower(req.URL.Host)
	h.mu.RLock()
	a, ok := h.hosts[host]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	if req.URL.Scheme != "https" && !isLoopback(req.URL.Hostname()) {
		return nil
	}
	return a.Authenticate(req)
}

// HostOf returns the lowercased host[:port] of a URL, or s itself when it
// has no scheme.
func HostOf(s string) string {
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		return strings.ToLower(u.Host)
	}
	return strings.ToLower(strings.TrimSuffix(s, "/"))
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

package releases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/willibrandon/gosolc/cache"
	solchttp "github.com/willibrandon/gosolc/http"
	"github.com/willibrandon/gosolc/observability"
)

const (
	// DefaultMirror hosts the official builds.
	DefaultMirror = "https://binaries.soliditylang.org"

	// DefaultLegacyListURL lists the static Linux builds of releases up to 0.4.10.
	DefaultLegacyListURL = "https://raw.githubusercontent.com/crytic/solc/new-list-json/linux/amd64/list.json"

	// DefaultLegacyArtifactsURL is the directory those builds are served from.
	DefaultLegacyArtifactsURL = "https://raw.githubusercontent.com/crytic/solc/master/linux/amd64/"

	listFile = "list.json"
)

// ErrOffline is returned when the network is disabled and no listing is cached.
var ErrOffline = errors.New("offline and no cached release index")

// Config configures a Client.
type Config struct {
	HTTP               *solchttp.Client
	Cache              *cache.DiskCache
	Platform           Platform
	Mirror             string
	LegacyListURL      string
	LegacyArtifactsURL string
	Logger             observability.Logger
}

// Client loads release listings, cache first, and downloads artifacts.
type Client struct {
	http               *solchttp.Client
	cache              *cache.DiskCache
	platform           Platform
	mirror             string
	legacyListURL      string
	legacyArtifactsURL string
	logger             observability.Logger

	mu     sync.Mutex
	loaded *Index
}

// NewClient creates a release client. Empty URLs take the defaults.
func NewClient(cfg Config) *Client {
	c := &Client{
		http:               cfg.HTTP,
		cache:              cfg.Cache,
		platform:           cfg.Platform,
		mirror:             cfg.Mirror,
		legacyListURL:      cfg.LegacyListURL,
		legacyArtifactsURL: cfg.LegacyArtifactsURL,
		logger:             observability.OrNull(cfg.Logger),
	}
	if c.http == nil {
		c.http = solchttp.NewClient(nil)
	}
	if c.mirror == "" {
		c.mirror = DefaultMirror
	}
	if c.legacyListURL == "" {
		c.legacyListURL = DefaultLegacyListURL
	}
	if c.legacyArtifactsURL == "" {
		c.legacyArtifactsURL = DefaultLegacyArtifactsURL
	}
	return c
}

// Platform returns the platform the client serves.
func (c *Client) Platform() Platform { return c.platform }

// Mirror returns the primary mirror URL, which also keys the disk cache.
func (c *Client) Mirror() string { return c.mirror }

// Index returns the merged release index for the client's platform.
//
// The disk cache is consulted first using the context's cache.Policy:
// a fresh entry is returned as is, Refresh skips it, and Offline never
// touches the network. When a fetch fails and a stale entry exists, the
// stale entry is returned.
func (c *Client) Index(ctx context.Context) (idx *Index, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	policy := cache.PolicyFromContext(ctx)
	if c.loaded != nil && !policy.Refresh {
		return c.loaded, nil
	}

	ctx, span := observability.StartIndexFetchSpan(ctx, c.platform.String(), c.mirror)
	defer func() { observability.EndSpanWithError(span, err) }()

	if !policy.Refresh || policy.Offline {
		maxAge := policy.MaxAge
		if policy.Offline {
			maxAge = 0
		}
		if cached, ok := c.readCache(ctx, maxAge); ok {
			observability.RecordCacheHit(ctx, true)
			observability.IndexLookupsTotal.WithLabelValues("hit").Inc()
			c.loaded = cached
			return cached, nil
		}
	}
	observability.RecordCacheHit(ctx, false)

	if policy.Offline {
		observability.IndexLookupsTotal.WithLabelValues("offline").Inc()
		return nil, ErrOffline
	}

	fetched, fetchErr := c.fetch(ctx)
	if fetchErr != nil {
		if stale, ok := c.readCache(ctx, 0); ok {
			c.logger.WarnContext(ctx, "Using stale release index for {Platform}: {Error}", c.platform, fetchErr)
			observability.IndexLookupsTotal.WithLabelValues("stale").Inc()
			c.loaded = stale
			return stale, nil
		}
		return nil, fetchErr
	}
	observability.IndexLookupsTotal.WithLabelValues("miss").Inc()

	if c.cache != nil {
		if err := c.writeCache(fetched); err != nil {
			c.logger.WarnContext(ctx, "Could not cache release index: {Error}", err)
		}
	}

	c.loaded = fetched
	return fetched, nil
}

func (c *Client) readCache(ctx context.Context, maxAge time.Duration) (*Index, bool) {
	if c.cache == nil {
		return nil, false
	}
	idx, ok, err := readCached(c.cache, c.mirror, c.platform, maxAge)
	if err != nil {
		c.logger.WarnContext(ctx, "Ignoring unreadable cached release index: {Error}", err)
		return nil, false
	}
	return idx, ok
}

func (c *Client) writeCache(idx *Index) error {
	var buf bytes.Buffer
	if err := encodeIndex(&buf, idx); err != nil {
		return err
	}
	return c.cache.Set(c.mirror, c.platform.String(), &buf, validateIndex)
}

// fetch downloads the platform listing and, on Linux, merges the legacy listing.
func (c *Client) fetch(ctx context.Context) (*Index, error) {
	listURL := joinURL(joinURL(c.mirror, c.platform.String()), listFile)
	idx, err := c.fetchList(ctx, listURL)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "Fetched {Count} builds for {Platform}", len(idx.Builds), c.platform)

	if c.platform == Linux {
		legacy, err := c.fetchList(ctx, c.legacyListURL)
		if err != nil {
			return nil, fmt.Errorf("legacy release index: %w", err)
		}
		idx.mergeLegacy(legacy, c.legacyArtifactsURL, c.platform.UsesLegacyMirror)
	}
	return idx, nil
}

func (c *Client) fetchList(ctx context.Context, url string) (*Index, error) {
	resp, err := c.http.GetWithRetry(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch release index: %w", err)
	}
	if err := solchttp.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("fetch release index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return DecodeIndex(resp.Body)
}

// ArtifactURL returns the download URL for b.
func (c *Client) ArtifactURL(b Build) string {
	if b.BaseURL != "" {
		return joinURL(b.BaseURL, b.Path)
	}
	return joinURL(joinURL(c.mirror, c.platform.String()), b.Path)
}

// Download opens the artifact for b. The caller closes the returned body.
// The size is -1 when the server did not send a length.
func (c *Client) Download(ctx context.Context, b Build, progress solchttp.ProgressFunc) (io.ReadCloser, int64, error) {
	url := c.ArtifactURL(b)
	c.logger.InfoContext(ctx, "Downloading solc {Version} from {URL}", b.Version, url)

	resp, err := c.http.GetWithRetry(ctx, url)
	if err != nil {
		observability.DownloadsTotal.WithLabelValues("error").Inc()
		return nil, 0, fmt.Errorf("download solc %s: %w", b.Version, err)
	}
	if err := solchttp.CheckStatus(resp); err != nil {
		observability.DownloadsTotal.WithLabelValues("error").Inc()
		return nil, 0, fmt.Errorf("download solc %s: %w", b.Version, err)
	}

	observability.DownloadsTotal.WithLabelValues("success").Inc()
	if resp.ContentLength > 0 {
		observability.DownloadBytes.Observe(float64(resp.ContentLength))
	}

	body := struct {
		io.Reader
		io.Closer
	}{solchttp.NewProgressReader(resp.Body, resp.ContentLength, progress), resp.Body}
	return body, resp.ContentLength, nil
}

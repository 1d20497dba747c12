package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"golang.org/x/net/http2"
)

// TransportConfig configures HTTP transport with protocol support
type TransportConfig struct {
	// EnableHTTP2 negotiates HTTP/2 via ALPN on TLS connections.
	EnableHTTP2 bool

	// EnableHTTP3 tries QUIC first for https URLs and falls back on failure.
	EnableHTTP3 bool

	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration

	// TLSConfig overrides the TLS client configuration (tests use it to trust a local CA).
	TLSConfig *tls.Config
}

// DefaultTransportConfig returns default transport configuration
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		EnableHTTP2:           true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}

// NewTransport creates an HTTP transport with configured protocol support
func NewTransport(config TransportConfig) http.RoundTripper {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		TLSClientConfig:       config.TLSConfig,
	}

	if config.EnableHTTP2 {
		// On failure the transport stays HTTP/1.1.
		_ = http2.ConfigureTransport(transport)
	}

	if config.EnableHTTP3 {
		return newHTTP3Transport(transport, config.TLSConfig)
	}
	return transport
}

// http3Transport tries HTTP/3 for https requests and falls back to the TCP transport.
type http3Transport struct {
	fallback http.RoundTripper
	quic     *http3.Transport
}

func newHTTP3Transport(fallback http.RoundTripper, tlsConfig *tls.Config) *http3Transport {
	if tlsConfig == nil {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	} else {
		tlsConfig = tlsConfig.Clone()
	}
	return &http3Transport{
		fallback: fallback,
		quic: &http3.Transport{
			TLSClientConfig: tlsConfig,
			QUICConfig:      &quic.Config{Allow0RTT: true},
		},
	}
}

// RoundTrip implements http.RoundTripper with HTTP/3 fallback
func (t *http3Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme == "https" {
		if resp, err := t.quic.RoundTrip(req); err == nil {
			return resp, nil
		}
	}
	return t.fallback.RoundTrip(req)
}

// Close closes the HTTP/3 transport
func (t *http3Transport) Close() error {
	return t.quic.Close()
}

// ProtocolVersion returns the HTTP protocol version from response
func ProtocolVersion(resp *http.Response) string {
	switch resp.ProtoMajor {
	case 3:
		return "HTTP/3"
	case 2:
		return "HTTP/2"
	default:
		return "HTTP/1.1"
	}
}

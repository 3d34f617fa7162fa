package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Limits bounds the connection pool shared by all requests on one client.
type Limits struct {
	// MaxConnections caps concurrent connections per host.
	MaxConnections int
	// MaxKeepaliveConnections caps idle connections retained for reuse.
	MaxKeepaliveConnections int
	// KeepaliveExpiry recycles idle connections that have been parked
	// longer than this.
	KeepaliveExpiry time.Duration
}

// SocketOptions are raw per-connection socket knobs. Every field is
// best-effort: options a platform does not support are silently omitted.
type SocketOptions struct {
	NoDelay           bool
	EnableKeepalive   bool
	KeepaliveIdle     time.Duration
	KeepaliveInterval time.Duration
	KeepaliveCount    int
	UserTimeout       time.Duration
}

func (o SocketOptions) any() bool {
	return o.NoDelay || o.EnableKeepalive ||
		o.KeepaliveIdle > 0 || o.KeepaliveInterval > 0 ||
		o.KeepaliveCount > 0 || o.UserTimeout > 0
}

// TransportOptions configures the pooled transport underneath a Client.
type TransportOptions struct {
	Limits             Limits
	InsecureSkipVerify bool
	HTTP2              bool
	ProxyURL           *url.URL
	Socket             SocketOptions

	// ConnectTimeout bounds dialing and the TLS handshake. Zero means the
	// client-level default applies.
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for response headers after the request is
	// fully written.
	ReadTimeout time.Duration
}

// DefaultTransportOptions returns pool sizing suitable for a polite crawler.
func DefaultTransportOptions() TransportOptions {
	return TransportOptions{
		Limits: Limits{
			MaxConnections:          100,
			MaxKeepaliveConnections: 20,
			KeepaliveExpiry:         15 * time.Second,
		},
	}
}

// NewTransport builds the pooled transport described by opts. When no socket
// knob is set the dialer is a plain net.Dialer; when any is set the dialer
// applies the requested options to every new connection. If restrictions is
// non-nil the result is wrapped so every request is validated (and possibly
// upgraded to https) before it reaches the socket layer.
func NewTransport(opts TransportOptions, restrictions *URLRestrictions) http.RoundTripper {
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultTimeout
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultTimeout
	}

	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	if opts.Socket.any() {
		dialer.Control = opts.Socket.control
		if opts.Socket.EnableKeepalive || opts.Socket.KeepaliveIdle > 0 {
			// The raw options own keepalive tuning; stop the dialer from
			// layering its own probes on top.
			dialer.KeepAlive = -1
		}
	}

	proxy := http.ProxyFromEnvironment
	if opts.ProxyURL != nil {
		proxy = http.ProxyURL(opts.ProxyURL)
	}

	transport := &http.Transport{
		Proxy:                 proxy,
		DialContext:           dialer.DialContext,
		MaxConnsPerHost:       opts.Limits.MaxConnections,
		MaxIdleConns:          opts.Limits.MaxKeepaliveConnections,
		MaxIdleConnsPerHost:   opts.Limits.MaxKeepaliveConnections,
		IdleConnTimeout:       opts.Limits.KeepaliveExpiry,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     opts.HTTP2,
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	if restrictions != nil {
		return &safeTransport{restrictions: *restrictions, inner: transport}
	}
	return transport
}

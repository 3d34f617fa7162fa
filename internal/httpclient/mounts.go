package httpclient

import (
	"net/http"
	"sort"
	"strings"
)

// mount routes requests whose URL starts with prefix to its own transport.
type mount struct {
	prefix    string
	transport http.RoundTripper
}

// mountTransport dispatches each request to the transport of the longest
// matching URL prefix, falling back to the client's main transport. The
// URL-safety layer wraps this, so mounted transports are policed too.
type mountTransport struct {
	fallback http.RoundTripper
	mounts   []mount
}

func newMountTransport(fallback http.RoundTripper, mounts []mount) *mountTransport {
	ordered := make([]mount, len(mounts))
	copy(ordered, mounts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].prefix) > len(ordered[j].prefix)
	})
	return &mountTransport{fallback: fallback, mounts: ordered}
}

func (t *mountTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target := req.URL.String()
	for _, m := range t.mounts {
		if strings.HasPrefix(target, m.prefix) {
			return m.transport.RoundTrip(req)
		}
	}
	return t.fallback.RoundTrip(req)
}

// CloseIdleConnections forwards shutdown to every mounted transport and the
// fallback.
func (t *mountTransport) CloseIdleConnections() {
	for _, m := range t.mounts {
		if c, ok := m.transport.(interface{ CloseIdleConnections() }); ok {
			c.CloseIdleConnections()
		}
	}
	if c, ok := t.fallback.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

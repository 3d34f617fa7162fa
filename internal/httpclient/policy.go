package httpclient

import (
	"net/http"
	"net/netip"
	"net/url"
	"sort"
	"strings"
)

// URLRestrictions describes the URL-safety policy applied to every request
// that passes through a transport built with NewTransport. The zero value
// permits http and https to any host.
type URLRestrictions struct {
	// ForceHTTPS rewrites plain http URLs to https before validation, so an
	// upgraded request never trips the scheme check.
	ForceHTTPS bool

	// RejectPrivateHosts rejects URLs whose host is a literal IP address in a
	// private, loopback, reserved, link-local, or multicast range. Hostnames
	// are not resolved; only literals are inspected.
	RejectPrivateHosts bool

	// AllowedSchemes lists extra schemes permitted beyond http and https.
	// Comparison is case-insensitive. The list is additive: http and https
	// are always allowed.
	AllowedSchemes []string
}

// SchemeAllowed reports whether scheme passes the allow-list.
func (r URLRestrictions) SchemeAllowed(scheme string) bool {
	s := strings.ToLower(scheme)
	if s == "http" || s == "https" {
		return true
	}
	for _, allowed := range r.AllowedSchemes {
		if s == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func (r URLRestrictions) allowedSchemeNames() string {
	names := []string{"http", "https"}
	extra := make([]string, 0, len(r.AllowedSchemes))
	for _, s := range r.AllowedSchemes {
		extra = append(extra, strings.ToLower(s))
	}
	sort.Strings(extra)
	return strings.Join(append(names, extra...), ", ")
}

// Violation returns a description of the first policy rule u breaks, or ""
// if the URL is acceptable.
func (r URLRestrictions) Violation(u *url.URL) string {
	if !r.SchemeAllowed(u.Scheme) {
		return "scheme '" + strings.ToLower(u.Scheme) + "' is not allowed; allowed schemes: " + r.allowedSchemeNames()
	}
	if r.RejectPrivateHosts && isRestrictedLiteral(u.Hostname()) {
		return "host '" + u.Hostname() + "' is a restricted address"
	}
	return ""
}

// isRestrictedLiteral reports whether host is a literal IP address inside a
// range that should never be crawled. Non-literal hostnames return false;
// no DNS resolution is performed.
func isRestrictedLiteral(host string) bool {
	if host == "" {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return true
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr.Unmap()) {
			return true
		}
	}
	return false
}

// Ranges IANA marks reserved that netip has no predicate for.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("240.0.0.0/4"),     // class E
	netip.MustParsePrefix("192.0.2.0/24"),    // TEST-NET-1
	netip.MustParsePrefix("198.51.100.0/24"), // TEST-NET-2
	netip.MustParsePrefix("203.0.113.0/24"),  // TEST-NET-3
	netip.MustParsePrefix("2001:db8::/32"),   // v6 documentation
}

// safeTransport enforces URLRestrictions in front of an inner RoundTripper.
type safeTransport struct {
	restrictions URLRestrictions
	inner        http.RoundTripper
}

func (t *safeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request, so the https
	// upgrade works on a clone.
	if t.restrictions.ForceHTTPS && strings.EqualFold(req.URL.Scheme, "http") {
		req = req.Clone(req.Context())
		req.URL.Scheme = "https"
	}
	if v := t.restrictions.Violation(req.URL); v != "" {
		return nil, &PolicyError{Violation: v, URL: req.URL.Redacted()}
	}
	return t.inner.RoundTrip(req)
}

// CloseIdleConnections forwards shutdown to the inner transport.
func (t *safeTransport) CloseIdleConnections() {
	if c, ok := t.inner.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

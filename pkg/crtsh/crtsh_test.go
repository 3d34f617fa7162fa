package crtsh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosleuth/sleuth/internal/httpclient"
)

const samplePayload = `[
	{"common_name": "www.example.com", "name_value": "www.example.com\nmail.Example.com."},
	{"common_name": "api.example.com"},
	{"name_value": "  dev.example.com \nexample.com"},
	{"issuer_name": "C=US, O=Let's Encrypt"}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hc := httpclient.NewClient(httpclient.WithBaseURL(server.URL))
	t.Cleanup(hc.Close)

	return New(WithHTTPClient(hc)), server
}

func TestSubdomains(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "%.example.com", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("output"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload))
	})

	result, err := client.Subdomains(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, "example.com", result.Domain)
	// Normalized, deduplicated, the query domain itself dropped.
	assert.Equal(t, []string{"api.example.com", "dev.example.com", "mail.example.com", "www.example.com"}, result.Subdomains)
	assert.Equal(t, 4, result.Total)
}

func TestSubdomainsRejectsNonJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>rate limited</html>"))
	})

	_, err := client.Subdomains(context.Background(), "example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected crt.sh payload")
}

func TestSubdomainsSurfacesHTTPFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusBadGateway)
	})

	_, err := client.Subdomains(context.Background(), "example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGather(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePayload))
	})

	results, err := client.Gather(context.Background(), "example.com", "example.org")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results, "example.com")
	assert.Contains(t, results, "example.org")
	// example.com is filtered out of its own result but kept for example.org.
	assert.Contains(t, results["example.org"].Subdomains, "example.com")
}

func TestNormalizeHostname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  WWW.Example.COM.  ", "www.example.com"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHostname(tt.in))
	}
}

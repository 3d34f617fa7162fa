// Package crtsh queries the crt.sh certificate-transparency log for the
// subdomains of a domain. It is a thin JSON parser over the hardened
// httpclient; all safety, retry, and header policy lives there.
package crtsh

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/gosleuth/sleuth/internal/httpclient"
)

const defaultBaseURL = "https://crt.sh"

// Result holds the deduplicated subdomains discovered for one domain.
type Result struct {
	Domain     string
	Total      int
	Subdomains []string
}

// Client queries crt.sh.
type Client struct {
	http    *httpclient.Client
	ownHTTP bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes a caller-owned HTTP client. The caller keeps
// responsibility for closing it.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(client *Client) {
		client.http = c
		client.ownHTTP = false
	}
}

// New creates a crt.sh client. Without options it builds its own hardened
// HTTP client with https enforcement, retries, and randomized user-agents.
func New(options ...Option) *Client {
	client := &Client{}
	for _, option := range options {
		option(client)
	}
	if client.http == nil {
		client.http = httpclient.NewClient(
			httpclient.WithBaseURL(defaultBaseURL),
			httpclient.WithURLRestrictions(httpclient.URLRestrictions{
				ForceHTTPS:         true,
				RejectPrivateHosts: true,
			}),
			httpclient.WithRetryPolicy(httpclient.DefaultRetryPolicy()),
			httpclient.WithUserAgentRandomizer(httpclient.DefaultUserAgentSpec()),
		)
		client.ownHTTP = true
	}
	return client
}

// Close releases the underlying HTTP client if this client built it.
func (c *Client) Close() {
	if c.ownHTTP {
		c.http.Close()
	}
}

// Fetch returns the raw certificate entries for domain.
func (c *Client) Fetch(ctx context.Context, domain string) (gjson.Result, error) {
	req := httpclient.NewRequest(http.MethodGet, "/").
		WithQueryParam("q", "%."+domain).
		WithQueryParam("output", "json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("fetching certificates for %s: %w", domain, err)
	}
	if !resp.IsSuccess() {
		return gjson.Result{}, fmt.Errorf("crt.sh returned %s for %s", resp.Status, domain)
	}

	data := gjson.ParseBytes(resp.Body())
	if !data.IsArray() {
		return gjson.Result{}, fmt.Errorf("unexpected crt.sh payload for %s", domain)
	}
	return data, nil
}

// Subdomains fetches and parses the deduplicated subdomain set for domain.
func (c *Client) Subdomains(ctx context.Context, domain string) (*Result, error) {
	data, err := c.Fetch(ctx, domain)
	if err != nil {
		return nil, err
	}

	domain = normalizeHostname(domain)
	seen := make(map[string]struct{})
	data.ForEach(func(_, entry gjson.Result) bool {
		if nameValue := entry.Get("name_value"); nameValue.Exists() && nameValue.String() != "" {
			for _, line := range strings.Split(nameValue.String(), "\n") {
				collectHostname(seen, line, domain)
			}
		} else if commonName := entry.Get("common_name"); commonName.Exists() {
			collectHostname(seen, commonName.String(), domain)
		}
		return true
	})

	subdomains := make([]string, 0, len(seen))
	for hostname := range seen {
		subdomains = append(subdomains, hostname)
	}
	sort.Strings(subdomains)

	return &Result{
		Domain:     domain,
		Total:      len(subdomains),
		Subdomains: subdomains,
	}, nil
}

// Gather looks up several domains concurrently and keys the results by
// domain. The first failure cancels the remaining lookups.
func (c *Client) Gather(ctx context.Context, domains ...string) (map[string]*Result, error) {
	var mu sync.Mutex
	results := make(map[string]*Result, len(domains))

	g, ctx := errgroup.WithContext(ctx)
	for _, domain := range domains {
		g.Go(func() error {
			result, err := c.Subdomains(ctx, domain)
			if err != nil {
				return err
			}
			mu.Lock()
			results[result.Domain] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// normalizeHostname lowercases and strips surrounding whitespace and any
// trailing dot.
func normalizeHostname(hostname string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(hostname)), ".")
}

func collectHostname(seen map[string]struct{}, raw, domain string) {
	hostname := normalizeHostname(raw)
	if hostname == "" || hostname == domain {
		return
	}
	seen[hostname] = struct{}{}
}

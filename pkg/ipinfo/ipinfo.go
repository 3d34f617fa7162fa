// Package ipinfo looks up IP geolocation records from ipinfo.io. Like
// crtsh, it is a thin parser over the hardened httpclient.
package ipinfo

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/gosleuth/sleuth/internal/httpclient"
)

const defaultBaseURL = "https://ipinfo.io"

// Record is one geolocation lookup. Fields ipinfo.io returns beyond the
// known set land in Extras.
type Record struct {
	IP       string
	City     string
	Country  string
	Postal   string
	Org      string
	Location string
	Timezone string
	Extras   map[string]any
}

var knownFields = map[string]bool{
	"ip": true, "city": true, "country": true, "postal": true,
	"org": true, "loc": true, "timezone": true,
}

// Client queries ipinfo.io.
type Client struct {
	http    *httpclient.Client
	token   string
	ownHTTP bool
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates requests with an ipinfo.io API token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient substitutes a caller-owned HTTP client. The caller keeps
// responsibility for closing it.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		c.http = hc
		c.ownHTTP = false
	}
}

// New creates an ipinfo.io client; without options it builds its own
// hardened HTTP client.
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
			httpclient.WithBrowserHeaders(httpclient.BrowserHeaderOptions{
				Profile: httpclient.ProfileAPI,
			}),
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

// Lookup fetches the geolocation record for ip.
func (c *Client) Lookup(ctx context.Context, ip string) (*Record, error) {
	req := httpclient.NewRequest(http.MethodGet, "/"+ip+"/json")
	if c.token != "" {
		req.WithQueryParam("token", c.token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", ip, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("ipinfo.io returned %s for %s", resp.Status, ip)
	}

	data := gjson.ParseBytes(resp.Body())
	record := &Record{
		IP:       data.Get("ip").String(),
		City:     data.Get("city").String(),
		Country:  data.Get("country").String(),
		Postal:   data.Get("postal").String(),
		Org:      data.Get("org").String(),
		Location: data.Get("loc").String(),
		Timezone: data.Get("timezone").String(),
		Extras:   make(map[string]any),
	}
	if record.IP == "" {
		record.IP = ip
	}
	data.ForEach(func(key, value gjson.Result) bool {
		if !knownFields[key.String()] {
			record.Extras[key.String()] = value.Value()
		}
		return true
	})
	return record, nil
}

// Gather looks up several IPs concurrently and keys the records by IP. The
// first failure cancels the remaining lookups.
func (c *Client) Gather(ctx context.Context, ips ...string) (map[string]*Record, error) {
	var mu sync.Mutex
	records := make(map[string]*Record, len(ips))

	g, ctx := errgroup.WithContext(ctx)
	for _, ip := range ips {
		g.Go(func() error {
			record, err := c.Lookup(ctx, ip)
			if err != nil {
				return err
			}
			mu.Lock()
			records[ip] = record
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

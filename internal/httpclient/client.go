package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultTimeout = 5 * time.Second

// Timeouts holds the per-phase deadlines for a request. Connect bounds
// dialing plus the TLS handshake and Read bounds the wait for response
// headers; net/http has no dedicated write or pool-wait knob, so Write and
// Pool contribute to the overall per-request deadline, which is the sum of
// all four phases whenever the caller's context carries none.
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
	Write   time.Duration
	Pool    time.Duration
}

// DefaultTimeouts is five seconds per phase.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Connect: defaultTimeout,
		Read:    defaultTimeout,
		Write:   defaultTimeout,
		Pool:    defaultTimeout,
	}
}

func (t Timeouts) total() time.Duration {
	return t.Connect + t.Read + t.Write + t.Pool
}

// BasicAuth carries credentials applied to every request.
type BasicAuth struct {
	Username string
	Password string
}

// Client issues requests through a layered transport: hook pipeline, then
// URL-safety enforcement, then the pooled socket layer. All configuration is
// read-only after construction, so one client is safe for concurrent use;
// in-flight requests share its connection pool. Callers own the lifecycle:
// use `defer client.Close()` so the pool is released on every exit path.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	headers       map[string]string
	params        url.Values
	auth          *BasicAuth
	timeouts      Timeouts
	requestHooks  []RequestHook
	responseHooks []ResponseHook
	retry         *RetryPolicy
	limiter       *rate.Limiter

	transportOpts   TransportOptions
	restrictions    *URLRestrictions
	customTransport http.RoundTripper
	mounts          []mount
	followRedirects bool
	maxRedirects    int
	jar             http.CookieJar

	closeOnce sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the base URL request paths resolve against.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeouts overrides the per-phase deadlines.
func WithTimeouts(t Timeouts) Option {
	return func(c *Client) { c.timeouts = t }
}

// WithTimeout sets every phase deadline to d.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeouts = Timeouts{Connect: d, Read: d, Write: d, Pool: d}
	}
}

// WithHeader adds a default header, applied when the request doesn't carry
// the key itself.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithQueryParam adds a default query parameter to every request.
func WithQueryParam(key, value string) Option {
	return func(c *Client) { c.params.Add(key, value) }
}

// WithBasicAuth applies basic auth to every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) { c.auth = &BasicAuth{Username: username, Password: password} }
}

// WithCookieJar installs a cookie jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.jar = jar }
}

// WithFollowRedirects enables redirect following up to max hops. By default
// redirects are returned to the caller unfollowed.
func WithFollowRedirects(max int) Option {
	return func(c *Client) {
		c.followRedirects = true
		c.maxRedirects = max
	}
}

// WithTransportOptions configures the pooled transport built for the client.
func WithTransportOptions(opts TransportOptions) Option {
	return func(c *Client) { c.transportOpts = opts }
}

// WithURLRestrictions attaches a URL-safety policy. Every request, including
// ones through a custom transport, is validated against it before reaching
// the socket layer.
func WithURLRestrictions(r URLRestrictions) Option {
	return func(c *Client) { c.restrictions = &r }
}

// WithTransport substitutes a caller-supplied transport for the built-in
// pooled one. URL restrictions still wrap it if configured.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.customTransport = rt }
}

// WithMount routes requests whose URL starts with prefix (e.g.
// "https://api.example.com") through rt instead of the main transport. URL
// restrictions still apply to mounted requests.
func WithMount(prefix string, rt http.RoundTripper) Option {
	return func(c *Client) { c.mounts = append(c.mounts, mount{prefix: prefix, transport: rt}) }
}

// WithRetryPolicy re-attempts transient network failures per policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = &p }
}

// WithRateLimit gates request starts at perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithRequestHook appends a hook run before each send, in order.
func WithRequestHook(hook RequestHook) Option {
	return func(c *Client) { c.requestHooks = append(c.requestHooks, hook) }
}

// WithResponseHook appends a hook run after each receipt, in order.
func WithResponseHook(hook ResponseHook) Option {
	return func(c *Client) { c.responseHooks = append(c.responseHooks, hook) }
}

// WithBrowserHeaders applies the synthetic browser header set to every
// request.
func WithBrowserHeaders(opts BrowserHeaderOptions) Option {
	return func(c *Client) { c.requestHooks = append(c.requestHooks, opts.Hook()) }
}

// WithUserAgentRandomizer draws a fresh coherent user-agent bundle for every
// request.
func WithUserAgentRandomizer(spec UserAgentSpec) Option {
	return func(c *Client) { c.requestHooks = append(c.requestHooks, spec.Hook()) }
}

// NewClient creates a client with the given options.
func NewClient(options ...Option) *Client {
	client := &Client{
		headers:       make(map[string]string),
		params:        make(url.Values),
		timeouts:      DefaultTimeouts(),
		transportOpts: DefaultTransportOptions(),
	}
	for _, option := range options {
		option(client)
	}

	transport := client.customTransport
	if transport == nil {
		opts := client.transportOpts
		if opts.ConnectTimeout <= 0 {
			opts.ConnectTimeout = client.timeouts.Connect
		}
		if opts.ReadTimeout <= 0 {
			opts.ReadTimeout = client.timeouts.Read
		}
		transport = NewTransport(opts, nil)
	}
	if len(client.mounts) > 0 {
		transport = newMountTransport(transport, client.mounts)
	}
	if client.restrictions != nil {
		transport = &safeTransport{restrictions: *client.restrictions, inner: transport}
	}

	client.httpClient = &http.Client{
		Transport:     transport,
		Jar:           client.jar,
		CheckRedirect: client.redirectPolicy(),
	}
	return client
}

func (c *Client) redirectPolicy() func(*http.Request, []*http.Request) error {
	if !c.followRedirects {
		return func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	max := c.maxRedirects
	if max <= 0 {
		max = 20
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends the request and returns the fully read response. When a retry
// policy is configured, transient network failures are re-attempted with
// jittered backoff; the request is rebuilt and the hook pipeline re-run on
// every attempt.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.retry != nil {
		return Retry(ctx, *c.retry, func(ctx context.Context) (*Response, error) {
			return c.send(ctx, req)
		})
	}
	return c.send(ctx, req)
}

// Get is shorthand for Do with a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodGet, path))
}

func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	httpReq, err := req.build(ctx, c.baseURL)
	if err != nil {
		return nil, err
	}

	for key, value := range c.headers {
		if httpReq.Header.Get(key) == "" {
			httpReq.Header.Set(key, value)
		}
	}
	if len(c.params) > 0 {
		query := httpReq.URL.Query()
		for key, values := range c.params {
			if query.Has(key) {
				continue
			}
			for _, value := range values {
				query.Add(key, value)
			}
		}
		httpReq.URL.RawQuery = query.Encode()
	}
	if c.auth != nil {
		httpReq.SetBasicAuth(c.auth.Username, c.auth.Password)
	}

	if err := runRequestHooks(c.requestHooks, httpReq); err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		return nil, err
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header,
		Duration:   time.Since(start),
		body:       body,
	}
	if err := runResponseHooks(c.responseHooks, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	total := c.timeouts.total()
	if total <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, total)
}

// Close releases the connection pool. It is idempotent and safe to call
// concurrently; requests already in flight finish on their own connections.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if t, ok := c.httpClient.Transport.(interface{ CloseIdleConnections() }); ok {
			t.CloseIdleConnections()
		}
	})
}

package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestClientDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/lookup" {
			t.Errorf("path = %s, want /lookup", r.URL.Path)
		}
		if r.Header.Get("X-Probe") != "1" {
			t.Errorf("X-Probe = %q, want 1", r.Header.Get("X-Probe"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithHeader("X-Probe", "1"),
	)
	defer client.Close()

	resp, err := client.Do(context.Background(), NewRequest(http.MethodGet, "/lookup"))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("status = %d, want 2xx", resp.StatusCode)
	}
	if got := resp.Get("status").String(); got != "ok" {
		t.Errorf("status field = %q, want ok", got)
	}
	if resp.Duration <= 0 {
		t.Error("duration not recorded")
	}
}

func TestClientRequestHeadersWinOverDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Source"); got != "request" {
			t.Errorf("X-Source = %q, want request", got)
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithHeader("X-Source", "client"))
	defer client.Close()

	req := NewRequest(http.MethodGet, "/").WithHeader("X-Source", "request")
	if _, err := client.Do(context.Background(), req); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestClientHookOrdering(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	var order []string
	client := NewClient(
		WithBaseURL(server.URL),
		WithRequestHook(func(*http.Request) error {
			order = append(order, "req1")
			return nil
		}),
		WithRequestHook(func(*http.Request) error {
			order = append(order, "req2")
			return nil
		}),
		WithResponseHook(func(*Response) error {
			order = append(order, "resp1")
			return nil
		}),
		WithResponseHook(func(*Response) error {
			order = append(order, "resp2")
			return nil
		}),
	)
	defer client.Close()

	if _, err := client.Get(context.Background(), "/"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	want := []string{"req1", "req2", "resp1", "resp2"}
	if len(order) != len(want) {
		t.Fatalf("hook order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("hook order = %v, want %v", order, want)
		}
	}
}

// flakyTransport fails with a transient error a fixed number of times before
// delegating to the real transport.
type flakyTransport struct {
	failures int32
	inner    http.RoundTripper
}

func (t *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if atomic.AddInt32(&t.failures, -1) >= 0 {
		return nil, &net.OpError{Op: "read", Err: syscall.ECONNRESET}
	}
	return t.inner.RoundTrip(req)
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithTransport(&flakyTransport{failures: 2, inner: http.DefaultTransport}),
		WithRetryPolicy(RetryPolicy{Attempts: 3, Delay: 0}),
	)
	defer client.Close()

	resp, err := client.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("status = %d, want 2xx", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hits = %d, want 1 (two failures never reached it)", got)
	}
}

func TestClientRetryGivesUpOnPolicyViolation(t *testing.T) {
	var attempts int32
	counting := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}
	})

	client := NewClient(
		WithTransport(counting),
		WithURLRestrictions(URLRestrictions{RejectPrivateHosts: true}),
		WithRetryPolicy(RetryPolicy{Attempts: 5, Delay: 0}),
		WithBaseURL("http://127.0.0.1:9"),
	)
	defer client.Close()

	_, err := client.Get(context.Background(), "/")
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("err = %v, want PolicyError", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 0 {
		t.Errorf("inner transport attempts = %d, want 0", got)
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func okResponse(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     http.Header{},
		Body:       http.NoBody,
		Request:    req,
	}
}

func TestClientRestrictionsWrapCustomTransport(t *testing.T) {
	client := NewClient(
		WithTransport(http.DefaultTransport),
		WithURLRestrictions(URLRestrictions{AllowedSchemes: []string{"ftp"}}),
	)
	defer client.Close()

	if _, ok := client.httpClient.Transport.(*safeTransport); !ok {
		t.Fatalf("transport = %T, want custom transport wrapped by safety layer", client.httpClient.Transport)
	}
}

func TestClientMountsRouteByLongestPrefix(t *testing.T) {
	var hit string
	apiRT := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		hit = "api"
		return okResponse(req), nil
	})
	wideRT := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		hit = "wide"
		return okResponse(req), nil
	})

	client := NewClient(
		WithBaseURL("https://api.example.com"),
		WithMount("https://", wideRT),
		WithMount("https://api.example.com", apiRT),
	)
	defer client.Close()

	if _, err := client.Get(context.Background(), "/v1/ping"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit != "api" {
		t.Errorf("routed to %q, want the longer api mount", hit)
	}
}

func TestClientMountFallsBackToMainTransport(t *testing.T) {
	var mounted, fallback bool
	client := NewClient(
		WithBaseURL("http://example.org"),
		WithTransport(roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			fallback = true
			return okResponse(req), nil
		})),
		WithMount("https://other.test", roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			mounted = true
			return okResponse(req), nil
		})),
	)
	defer client.Close()

	if _, err := client.Get(context.Background(), "/"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if mounted || !fallback {
		t.Errorf("mounted = %v, fallback = %v; want fallback only", mounted, fallback)
	}
}

func TestClientRestrictionsCoverMountedTransports(t *testing.T) {
	var hits int
	client := NewClient(
		WithBaseURL("http://192.168.1.10"),
		WithURLRestrictions(URLRestrictions{RejectPrivateHosts: true}),
		WithMount("http://192.168.1.10", roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			hits++
			return okResponse(req), nil
		})),
	)
	defer client.Close()

	_, err := client.Get(context.Background(), "/")
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("err = %v, want PolicyError", err)
	}
	if hits != 0 {
		t.Errorf("mounted transport hits = %d, want 0", hits)
	}
}

func TestClientDefaultQueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("output"); got != "json" {
			t.Errorf("output param = %q, want json", got)
		}
		if got := r.URL.Query().Get("q"); got != "example.com" {
			t.Errorf("q param = %q, want example.com", got)
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithQueryParam("output", "json"))
	defer client.Close()

	req := NewRequest(http.MethodGet, "/").WithQueryParam("q", "example.com")
	if _, err := client.Do(context.Background(), req); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestClientRedirectsNotFollowedByDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	defer client.Close()

	resp, err := client.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want 302 returned unfollowed", resp.StatusCode)
	}
}

func TestClientBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "probe" || pass != "s3cret" {
			t.Errorf("basic auth = %q/%q/%v", user, pass, ok)
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithBasicAuth("probe", "s3cret"))
	defer client.Close()

	if _, err := client.Get(context.Background(), "/"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	client := NewClient(WithBaseURL("http://example.com"))
	client.Close()
	client.Close() // must not panic or double-release
}

func TestClientRateLimitGatesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRateLimit(20, 1))
	defer client.Close()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.Get(context.Background(), "/"); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	// Burst of 1 at 20 rps means two 50ms waits across three requests.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("elapsed = %v, want rate limiting to slow the loop", elapsed)
	}
}

func TestLatencyRecorderSnapshot(t *testing.T) {
	rec := NewLatencyRecorder()
	hook := rec.Hook()

	for _, d := range []time.Duration{10, 20, 30, 40, 50} {
		if err := hook(&Response{Duration: d * time.Millisecond}); err != nil {
			t.Fatalf("hook: %v", err)
		}
	}

	snap := rec.Snapshot()
	if snap.Count != 5 {
		t.Errorf("count = %d, want 5", snap.Count)
	}
	if snap.Max < 49*time.Millisecond || snap.Max > 51*time.Millisecond {
		t.Errorf("max = %v, want ~50ms", snap.Max)
	}
	if snap.P50 <= 0 || snap.P99 < snap.P50 {
		t.Errorf("suspicious percentiles: p50=%v p99=%v", snap.P50, snap.P99)
	}
}

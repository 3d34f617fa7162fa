package httpclient

import (
	"net/http"
	"strings"
	"testing"
)

func TestBrowserHeadersNavigationProfile(t *testing.T) {
	h := DefaultBrowserHeaderOptions().Headers()

	if accept := h.Get("Accept"); !strings.HasPrefix(accept, "text/html") {
		t.Errorf("navigation accept = %q, want text/html leading", accept)
	}
	if h.Get("Sec-Fetch-Mode") != "navigate" {
		t.Errorf("Sec-Fetch-Mode = %q, want navigate", h.Get("Sec-Fetch-Mode"))
	}
	if h.Get("Sec-Fetch-User") != "?1" {
		t.Errorf("Sec-Fetch-User = %q, want ?1", h.Get("Sec-Fetch-User"))
	}
	if h.Get("Upgrade-Insecure-Requests") != "1" {
		t.Error("navigation profile should carry upgrade-insecure-requests")
	}
	if h.Get("DNT") != "" {
		t.Error("dnt should be absent unless enabled")
	}
}

func TestBrowserHeadersAPIProfile(t *testing.T) {
	opts := BrowserHeaderOptions{Profile: ProfileAPI, DNT: true}
	h := opts.Headers()

	if accept := h.Get("Accept"); !strings.HasPrefix(accept, "application/json") {
		t.Errorf("api accept = %q, want application/json leading", accept)
	}
	if h.Get("Sec-Fetch-Mode") != "cors" {
		t.Errorf("Sec-Fetch-Mode = %q, want cors", h.Get("Sec-Fetch-Mode"))
	}
	if h.Get("Sec-Fetch-Dest") != "empty" {
		t.Errorf("Sec-Fetch-Dest = %q, want empty", h.Get("Sec-Fetch-Dest"))
	}
	if h.Get("Sec-Fetch-User") != "" {
		t.Error("api profile should not carry sec-fetch-user")
	}
	if h.Get("DNT") != "1" {
		t.Error("dnt requested but absent")
	}
}

func TestMergeHeadersFillsAbsentOnly(t *testing.T) {
	dst := http.Header{}
	dst.Set("Accept", "application/xml")

	src := http.Header{}
	src.Set("accept", "text/html") // differing case, same key
	src.Set("Accept-Language", "en-US")

	MergeHeaders(dst, src, false)

	if got := dst.Get("Accept"); got != "application/xml" {
		t.Errorf("Accept = %q, want pre-existing value kept", got)
	}
	if got := dst.Get("Accept-Language"); got != "en-US" {
		t.Errorf("Accept-Language = %q, want en-US", got)
	}
}

func TestMergeHeadersOverwriteReplaces(t *testing.T) {
	dst := http.Header{}
	dst.Set("Accept", "application/xml")

	src := http.Header{}
	src.Set("Accept", "text/html")

	MergeHeaders(dst, src, true)

	if got := dst.Get("Accept"); got != "text/html" {
		t.Errorf("Accept = %q, want overwritten value", got)
	}
}

func TestBrowserHeaderHookRespectsRequestHeaders(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	req.Header.Set("Accept", "application/pdf")

	hook := DefaultBrowserHeaderOptions().Hook()
	if err := hook(req); err != nil {
		t.Fatalf("hook: %v", err)
	}

	if got := req.Header.Get("Accept"); got != "application/pdf" {
		t.Errorf("Accept = %q, want caller value kept without overwrite", got)
	}
	if req.Header.Get("Accept-Language") == "" {
		t.Error("absent headers should be filled")
	}
}

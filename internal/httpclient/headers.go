package httpclient

import "net/http"

// Profile selects which synthetic browser header set is produced: headers a
// browser sends for a top-level navigation, or for a background API/XHR call.
type Profile string

const (
	ProfileNavigation Profile = "navigation"
	ProfileAPI        Profile = "api"
)

// BrowserHeaderOptions configures the static browser-realistic header set.
type BrowserHeaderOptions struct {
	Profile        Profile
	AcceptLanguage string
	AcceptEncoding string
	// DNT adds a do-not-track header.
	DNT bool
	// UpgradeInsecureRequests adds the navigation upgrade hint.
	UpgradeInsecureRequests bool
	// Overwrite replaces headers already present on the request instead of
	// only filling absent ones.
	Overwrite bool
}

// DefaultBrowserHeaderOptions returns the navigation profile with the values
// current Chrome sends.
func DefaultBrowserHeaderOptions() BrowserHeaderOptions {
	return BrowserHeaderOptions{
		Profile:                 ProfileNavigation,
		AcceptLanguage:          "en-US,en;q=0.9",
		AcceptEncoding:          "gzip, deflate, br",
		UpgradeInsecureRequests: true,
	}
}

func (o BrowserHeaderOptions) accept() string {
	if o.Profile == ProfileAPI {
		return "application/json, text/javascript, */*"
	}
	return "text/html,application/xhtml+xml,application/xml;q=0.9," +
		"image/avif,image/webp,image/apng,*/*;q=0.8"
}

func (o BrowserHeaderOptions) fetchMetadata() map[string]string {
	if o.Profile == ProfileAPI {
		return map[string]string{
			"Sec-Fetch-Dest": "empty",
			"Sec-Fetch-Mode": "cors",
			"Sec-Fetch-Site": "same-origin",
		}
	}
	return map[string]string{
		"Sec-Fetch-Dest": "document",
		"Sec-Fetch-Mode": "navigate",
		"Sec-Fetch-Site": "none",
		"Sec-Fetch-User": "?1",
	}
}

// Headers produces the full synthetic header set for the profile.
func (o BrowserHeaderOptions) Headers() http.Header {
	lang := o.AcceptLanguage
	if lang == "" {
		lang = "en-US,en;q=0.9"
	}
	enc := o.AcceptEncoding
	if enc == "" {
		enc = "gzip, deflate, br"
	}

	h := http.Header{}
	h.Set("Accept", o.accept())
	h.Set("Accept-Language", lang)
	h.Set("Accept-Encoding", enc)
	for k, v := range o.fetchMetadata() {
		h.Set(k, v)
	}
	if o.DNT {
		h.Set("DNT", "1")
	}
	if o.UpgradeInsecureRequests {
		h.Set("Upgrade-Insecure-Requests", "1")
	}
	return h
}

// MergeHeaders copies src into dst. Without overwrite only keys absent from
// dst are filled (key comparison is case-insensitive, via canonicalization);
// with overwrite src values replace existing ones.
func MergeHeaders(dst, src http.Header, overwrite bool) {
	for key, values := range src {
		if len(values) == 0 {
			continue
		}
		if !overwrite && dst.Get(key) != "" {
			continue
		}
		dst.Set(key, values[0])
		for _, v := range values[1:] {
			dst.Add(key, v)
		}
	}
}

// Hook returns a request hook applying the browser header set, honoring the
// option's overwrite mode.
func (o BrowserHeaderOptions) Hook() RequestHook {
	headers := o.Headers()
	return func(req *http.Request) error {
		MergeHeaders(req.Header, headers, o.Overwrite)
		return nil
	}
}

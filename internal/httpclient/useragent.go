package httpclient

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
)

// VersionRange bounds the major version drawn for a browser.
type VersionRange struct {
	Min int
	Max int
}

// UserAgentSpec configures the per-request user-agent randomizer: which
// platforms, browsers, and device classes to draw from, per-browser version
// ranges, and how the drawn bundle is applied.
type UserAgentSpec struct {
	Platforms []string // windows, macos, linux, android, ios
	Browsers  []string // chrome, edge, firefox, safari
	Devices   []string // desktop, mobile
	// VersionRanges overrides the built-in major-version range per browser.
	VersionRanges map[string]VersionRange
	// Overwrite replaces a user-agent the request already carries. Companion
	// client-hint headers never overwrite, regardless of this setting.
	Overwrite bool
	// ClientHints applies the sec-ch-ua trio matching the drawn user-agent.
	ClientHints bool
}

// DefaultUserAgentSpec draws desktop Chrome, Edge, or Firefox on any desktop
// platform, with client hints.
func DefaultUserAgentSpec() UserAgentSpec {
	return UserAgentSpec{
		Platforms:   []string{"windows", "macos", "linux"},
		Browsers:    []string{"chrome", "edge", "firefox"},
		Devices:     []string{"desktop"},
		ClientHints: true,
	}
}

var defaultVersionRanges = map[string]VersionRange{
	"chrome":  {Min: 124, Max: 131},
	"edge":    {Min: 124, Max: 131},
	"firefox": {Min: 127, Max: 133},
	"safari":  {Min: 16, Max: 17},
}

// platformTokens mirrors what each browser reports per OS.
var platformTokens = map[string]struct {
	uaOS      string // chromium user-agent OS segment
	firefoxOS string // firefox OS segment, without the rv suffix
	hint      string // sec-ch-ua-platform value
}{
	"windows": {"Windows NT 10.0; Win64; x64", "Windows NT 10.0; Win64; x64", "Windows"},
	"macos":   {"Macintosh; Intel Mac OS X 10_15_7", "Macintosh; Intel Mac OS X 10.15", "macOS"},
	"linux":   {"X11; Linux x86_64", "X11; Linux x86_64", "Linux"},
	"android": {"Linux; Android 14; Pixel 8", "Android 14; Mobile", "Android"},
	"ios":     {"iPhone; CPU iPhone OS 17_5 like Mac OS X", "iPhone; CPU iPhone OS 17_5 like Mac OS X", "iOS"},
}

var mobilePlatforms = map[string]bool{"android": true, "ios": true}

// browserPlatforms restricts which platforms a browser plausibly runs on.
var browserPlatforms = map[string][]string{
	"chrome":  {"windows", "macos", "linux", "android"},
	"edge":    {"windows", "macos"},
	"firefox": {"windows", "macos", "linux", "android"},
	"safari":  {"macos", "ios"},
}

// headerBundle is one coherent draw: a user-agent plus the companion
// client-hint headers that a real browser would send alongside it.
type headerBundle struct {
	userAgent string
	hints     map[string]string
}

func pick(r []string) string {
	return r[rand.IntN(len(r))]
}

func (s UserAgentSpec) versionFor(browser string) int {
	vr, ok := s.VersionRanges[browser]
	if !ok {
		vr = defaultVersionRanges[browser]
	}
	if vr.Max <= vr.Min {
		return vr.Min
	}
	return vr.Min + rand.IntN(vr.Max-vr.Min+1)
}

// draw picks a device class, then a browser and platform consistent with it,
// then composes the user-agent string and matching client hints.
func (s UserAgentSpec) draw() headerBundle {
	devices := s.Devices
	if len(devices) == 0 {
		devices = []string{"desktop"}
	}
	browsers := s.Browsers
	if len(browsers) == 0 {
		browsers = []string{"chrome", "edge", "firefox"}
	}
	platforms := s.Platforms
	if len(platforms) == 0 {
		platforms = []string{"windows", "macos", "linux"}
	}

	mobile := pick(devices) == "mobile"
	browser := pick(browsers)

	candidates := make([]string, 0, len(platforms))
	for _, p := range platforms {
		if mobilePlatforms[p] != mobile {
			continue
		}
		for _, allowed := range browserPlatforms[browser] {
			if p == allowed {
				candidates = append(candidates, p)
				break
			}
		}
	}
	if len(candidates) == 0 {
		// The configured distributions don't intersect for this draw; fall
		// back to something coherent for the browser.
		if mobile {
			candidates = []string{browserPlatforms[browser][len(browserPlatforms[browser])-1]}
		} else {
			candidates = browserPlatforms[browser][:1]
		}
	}
	platform := pick(candidates)
	version := s.versionFor(browser)

	bundle := headerBundle{userAgent: composeUserAgent(browser, platform, version, mobile)}
	if hints := clientHints(browser, platform, version, mobile); hints != nil {
		bundle.hints = hints
	}
	return bundle
}

func composeUserAgent(browser, platform string, version int, mobile bool) string {
	tok := platformTokens[platform]
	switch browser {
	case "firefox":
		return fmt.Sprintf("Mozilla/5.0 (%s; rv:%d.0) Gecko/20100101 Firefox/%d.0", tok.firefoxOS, version, version)
	case "safari":
		if platform == "ios" {
			return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%d.5 Mobile/15E148 Safari/604.1", tok.uaOS, version)
		}
		return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%d.5 Safari/605.1.15", tok.uaOS, version)
	default: // chromium family
		ua := fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0", tok.uaOS, version)
		if mobile {
			ua += " Mobile"
		}
		ua += " Safari/537.36"
		if browser == "edge" {
			ua += fmt.Sprintf(" Edg/%d.0.0.0", version)
		}
		return ua
	}
}

// clientHints returns the low-entropy sec-ch-ua trio for chromium browsers,
// nil for browsers that do not send client hints.
func clientHints(browser, platform string, version int, mobile bool) map[string]string {
	var brand string
	switch browser {
	case "chrome":
		brand = "Google Chrome"
	case "edge":
		brand = "Microsoft Edge"
	default:
		return nil
	}

	mobileHint := "?0"
	if mobile {
		mobileHint = "?1"
	}
	return map[string]string{
		"Sec-Ch-Ua": fmt.Sprintf(`"Chromium";v="%d", "%s";v="%d", "Not_A Brand";v="24"`,
			version, brand, version),
		"Sec-Ch-Ua-Mobile":   mobileHint,
		"Sec-Ch-Ua-Platform": `"` + platformTokens[platform].hint + `"`,
	}
}

// Hook returns a request hook that draws a fresh bundle per request. The
// user-agent is applied only when absent, unless Overwrite is set; companion
// headers only ever fill keys the request does not already carry.
func (s UserAgentSpec) Hook() RequestHook {
	return func(req *http.Request) error {
		bundle := s.draw()
		if s.Overwrite || req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", bundle.userAgent)
		}
		if s.ClientHints {
			for key, value := range bundle.hints {
				if req.Header.Get(key) == "" {
					req.Header.Set(key, value)
				}
			}
		}
		return nil
	}
}

// String describes the spec for diagnostics.
func (s UserAgentSpec) String() string {
	return fmt.Sprintf("ua{platforms=%s browsers=%s devices=%s}",
		strings.Join(s.Platforms, "/"), strings.Join(s.Browsers, "/"), strings.Join(s.Devices, "/"))
}

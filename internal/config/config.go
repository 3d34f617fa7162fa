// Package config loads YAML client profiles and compiles them into
// httpclient options. Profiles are validated against an embedded JSON schema
// before use, so a typo'd knob fails at load time rather than silently
// running with defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/gosleuth/sleuth/internal/httpclient"
)

// Profile is the on-disk client configuration. Durations are seconds.
type Profile struct {
	BaseURL         string  `yaml:"baseUrl"`
	FollowRedirects bool    `yaml:"followRedirects"`
	MaxRedirects    int     `yaml:"maxRedirects"`
	Timeout         float64 `yaml:"timeout"`

	Restrictions struct {
		ForceHTTPS         bool     `yaml:"forceHttps"`
		RejectPrivateHosts bool     `yaml:"rejectPrivateHosts"`
		AllowedSchemes     []string `yaml:"allowedSchemes"`
	} `yaml:"restrictions"`

	Transport struct {
		MaxConnections          int     `yaml:"maxConnections"`
		MaxKeepaliveConnections int     `yaml:"maxKeepaliveConnections"`
		KeepaliveExpiry         float64 `yaml:"keepaliveExpiry"`
		HTTP2                   bool    `yaml:"http2"`
		InsecureSkipVerify      bool    `yaml:"insecureSkipVerify"`
		Socket                  struct {
			NoDelay           bool    `yaml:"nodelay"`
			EnableKeepalive   bool    `yaml:"enableKeepalive"`
			KeepaliveIdle     float64 `yaml:"keepaliveIdle"`
			KeepaliveInterval float64 `yaml:"keepaliveInterval"`
			KeepaliveCount    int     `yaml:"keepaliveCount"`
			UserTimeout       float64 `yaml:"userTimeout"`
		} `yaml:"socket"`
	} `yaml:"transport"`

	Retry struct {
		Attempts int     `yaml:"attempts"`
		Delay    float64 `yaml:"delay"`
		Jitter   float64 `yaml:"jitter"`
	} `yaml:"retry"`

	Headers struct {
		Browser bool   `yaml:"browser"`
		Profile string `yaml:"profile"`
		DNT     bool   `yaml:"dnt"`
	} `yaml:"headers"`

	UserAgent struct {
		Randomize   bool     `yaml:"randomize"`
		Platforms   []string `yaml:"platforms"`
		Browsers    []string `yaml:"browsers"`
		Devices     []string `yaml:"devices"`
		Overwrite   bool     `yaml:"overwrite"`
		ClientHints bool     `yaml:"clientHints"`
	} `yaml:"userAgent"`

	RateLimit struct {
		PerSecond float64 `yaml:"perSecond"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rateLimit"`
}

// Load reads, validates, and parses a profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return Parse(data)
}

// Parse validates and parses a YAML profile.
func Parse(data []byte) (*Profile, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	return &profile, nil
}

// validate round-trips the YAML document through JSON so the schema engine
// sees the value types it understands.
func validate(raw interface{}) error {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding profile for validation: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("encoding profile for validation: %w", err)
	}
	if err := profileSchema.Validate(doc); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

var profileSchema = jsonschema.MustCompileString("profile.json", profileSchemaJSON)

// Options compiles the profile into client options.
func (p *Profile) Options() []httpclient.Option {
	var options []httpclient.Option

	if p.BaseURL != "" {
		options = append(options, httpclient.WithBaseURL(p.BaseURL))
	}
	if p.Timeout > 0 {
		options = append(options, httpclient.WithTimeout(seconds(p.Timeout)))
	}
	if p.FollowRedirects {
		options = append(options, httpclient.WithFollowRedirects(p.MaxRedirects))
	}

	if r := p.Restrictions; r.ForceHTTPS || r.RejectPrivateHosts || len(r.AllowedSchemes) > 0 {
		options = append(options, httpclient.WithURLRestrictions(httpclient.URLRestrictions{
			ForceHTTPS:         r.ForceHTTPS,
			RejectPrivateHosts: r.RejectPrivateHosts,
			AllowedSchemes:     r.AllowedSchemes,
		}))
	}

	transportOpts := httpclient.DefaultTransportOptions()
	if p.Transport.MaxConnections > 0 {
		transportOpts.Limits.MaxConnections = p.Transport.MaxConnections
	}
	if p.Transport.MaxKeepaliveConnections > 0 {
		transportOpts.Limits.MaxKeepaliveConnections = p.Transport.MaxKeepaliveConnections
	}
	if p.Transport.KeepaliveExpiry > 0 {
		transportOpts.Limits.KeepaliveExpiry = seconds(p.Transport.KeepaliveExpiry)
	}
	transportOpts.HTTP2 = p.Transport.HTTP2
	transportOpts.InsecureSkipVerify = p.Transport.InsecureSkipVerify
	transportOpts.Socket = httpclient.SocketOptions{
		NoDelay:           p.Transport.Socket.NoDelay,
		EnableKeepalive:   p.Transport.Socket.EnableKeepalive,
		KeepaliveIdle:     seconds(p.Transport.Socket.KeepaliveIdle),
		KeepaliveInterval: seconds(p.Transport.Socket.KeepaliveInterval),
		KeepaliveCount:    p.Transport.Socket.KeepaliveCount,
		UserTimeout:       seconds(p.Transport.Socket.UserTimeout),
	}
	options = append(options, httpclient.WithTransportOptions(transportOpts))

	if p.Retry.Attempts > 0 {
		options = append(options, httpclient.WithRetryPolicy(httpclient.RetryPolicy{
			Attempts: p.Retry.Attempts,
			Delay:    seconds(p.Retry.Delay),
			Jitter:   p.Retry.Jitter,
		}))
	}

	if p.Headers.Browser {
		headerOpts := httpclient.DefaultBrowserHeaderOptions()
		if p.Headers.Profile == "api" {
			headerOpts.Profile = httpclient.ProfileAPI
			headerOpts.UpgradeInsecureRequests = false
		}
		headerOpts.DNT = p.Headers.DNT
		options = append(options, httpclient.WithBrowserHeaders(headerOpts))
	}

	if p.UserAgent.Randomize {
		spec := httpclient.DefaultUserAgentSpec()
		if len(p.UserAgent.Platforms) > 0 {
			spec.Platforms = p.UserAgent.Platforms
		}
		if len(p.UserAgent.Browsers) > 0 {
			spec.Browsers = p.UserAgent.Browsers
		}
		if len(p.UserAgent.Devices) > 0 {
			spec.Devices = p.UserAgent.Devices
		}
		spec.Overwrite = p.UserAgent.Overwrite
		spec.ClientHints = p.UserAgent.ClientHints
		options = append(options, httpclient.WithUserAgentRandomizer(spec))
	}

	if p.RateLimit.PerSecond > 0 {
		burst := p.RateLimit.Burst
		if burst <= 0 {
			burst = 1
		}
		options = append(options, httpclient.WithRateLimit(p.RateLimit.PerSecond, burst))
	}

	return options
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

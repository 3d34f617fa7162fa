// Package output formats requests, responses, and lookup results for the
// terminal.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gosleuth/sleuth/internal/httpclient"
)

// Formatter renders requests and responses in text form.
type Formatter struct {
	Verbose bool
	scheme  *ColorScheme
}

// NewFormatter creates a formatter. Colors are dropped when noColor is set
// or stdout is not a terminal.
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor || !stdoutIsTerminal() {
		scheme = NoColorScheme()
	}
	return &Formatter{Verbose: verbose, scheme: scheme}
}

// FormatRequest renders an outgoing request.
func (f *Formatter) FormatRequest(req *httpclient.Request, baseURL string) string {
	var buf strings.Builder

	fullURL := strings.TrimRight(baseURL, "/")
	if req.Path != "" {
		fullURL += "/" + strings.TrimLeft(req.Path, "/")
	}
	if len(req.QueryParams) > 0 {
		fullURL += "?" + req.QueryParams.Encode()
	}

	buf.WriteString(fmt.Sprintf("▶ %s %s\n", f.scheme.Method.Sprint(req.Method), f.scheme.URL.Sprint(fullURL)))

	if f.Verbose && len(req.Headers) > 0 {
		for key, value := range req.Headers {
			buf.WriteString(fmt.Sprintf("  %s: %s\n", f.scheme.HeaderKey.Sprint(key), value))
		}
	}
	return buf.String()
}

// FormatResponse renders a received response, pretty-printing JSON bodies.
func (f *Formatter) FormatResponse(resp *httpclient.Response) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("◀ %s (%s)\n", f.statusColor(resp).Sprint(resp.Status), resp.Duration.Round(time.Millisecond)))

	if f.Verbose {
		for key := range resp.Headers {
			buf.WriteString(fmt.Sprintf("  %s: %s\n", f.scheme.HeaderKey.Sprint(key), resp.Headers.Get(key)))
		}
	}

	if body := resp.Body(); len(body) > 0 {
		buf.WriteString(formatBody(body, resp.GetHeader("Content-Type")))
		buf.WriteString("\n")
	}
	return buf.String()
}

func (f *Formatter) statusColor(resp *httpclient.Response) interface{ Sprint(...interface{}) string } {
	switch {
	case resp.IsSuccess():
		return f.scheme.StatusOK
	case resp.IsServerError(), resp.IsClientError():
		return f.scheme.StatusError
	default:
		return f.scheme.StatusWarn
	}
}

func formatBody(body []byte, contentType string) string {
	if strings.Contains(contentType, "json") || json.Valid(body) {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err == nil {
			return pretty.String()
		}
	}
	return string(body)
}

// FormatError renders a failure line.
func (f *Formatter) FormatError(err error) string {
	return f.scheme.Error.Sprint("✗ ") + err.Error() + "\n"
}

// FormatList renders a labeled list of values, one per line.
func (f *Formatter) FormatList(label string, values []string) string {
	var buf strings.Builder
	buf.WriteString(f.scheme.Highlight.Sprint(label) + "\n")
	for _, value := range values {
		buf.WriteString("  " + value + "\n")
	}
	return buf.String()
}

// FormatKV renders aligned key/value pairs in the given key order.
func (f *Formatter) FormatKV(pairs [][2]string) string {
	width := 0
	for _, pair := range pairs {
		if len(pair[0]) > width {
			width = len(pair[0])
		}
	}
	var buf strings.Builder
	for _, pair := range pairs {
		if pair[1] == "" {
			continue
		}
		// Pad before coloring so escape codes don't skew alignment.
		key := fmt.Sprintf("%-*s", width, pair[0])
		buf.WriteString("  " + f.scheme.HeaderKey.Sprint(key) + "  " + pair[1] + "\n")
	}
	return buf.String()
}

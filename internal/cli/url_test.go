package cli

import "testing"

func TestParseURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantBase string
		wantPath string
		wantQ    map[string]string
	}{
		{
			name:     "bare host gets https and root path",
			input:    "example.com",
			wantBase: "https://example.com",
			wantPath: "/",
		},
		{
			name:     "explicit http preserved",
			input:    "http://example.com/robots.txt",
			wantBase: "http://example.com",
			wantPath: "/robots.txt",
		},
		{
			name:     "query split out of the path",
			input:    "https://crt.sh/?q=%25.example.com&output=json",
			wantBase: "https://crt.sh",
			wantPath: "/",
			wantQ:    map[string]string{"q": "%.example.com", "output": "json"},
		},
		{
			name:     "userinfo kept in base",
			input:    "https://probe:pw@example.com/x",
			wantBase: "https://probe:pw@example.com",
			wantPath: "/x",
		},
		{
			name:     "port kept in base",
			input:    "example.com:8443/healthz",
			wantBase: "https://example.com:8443",
			wantPath: "/healthz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, path, query := parseURL(tt.input)
			if base != tt.wantBase {
				t.Errorf("base = %q, want %q", base, tt.wantBase)
			}
			if path != tt.wantPath {
				t.Errorf("path = %q, want %q", path, tt.wantPath)
			}
			for key, want := range tt.wantQ {
				if got := query.Get(key); got != want {
					t.Errorf("query[%s] = %q, want %q", key, got, want)
				}
			}
		})
	}
}

package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosleuth/sleuth/internal/config"
	"github.com/gosleuth/sleuth/internal/httpclient"
	"github.com/gosleuth/sleuth/internal/output"
)

var getCmd = &cobra.Command{
	Use:   "get URL",
	Short: "Make a GET request through the hardened client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headers, _ := cmd.Flags().GetStringArray("header")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		retries, _ := cmd.Flags().GetInt("retries")
		forceHTTPS, _ := cmd.Flags().GetBool("force-https")
		rejectPrivate, _ := cmd.Flags().GetBool("reject-private")
		randomUA, _ := cmd.Flags().GetBool("random-ua")
		browserHeaders, _ := cmd.Flags().GetBool("browser-headers")
		verbose, _ := cmd.Flags().GetBool("verbose")
		noColor, _ := cmd.Flags().GetBool("no-color")
		configPath, _ := cmd.Flags().GetString("config")

		baseURL, path, query := parseURL(args[0])

		options, err := profileOptions(configPath)
		if err != nil {
			return err
		}
		options = append(options, httpclient.WithBaseURL(baseURL))
		if timeout > 0 {
			options = append(options, httpclient.WithTimeout(timeout))
		}
		if forceHTTPS || rejectPrivate {
			options = append(options, httpclient.WithURLRestrictions(httpclient.URLRestrictions{
				ForceHTTPS:         forceHTTPS,
				RejectPrivateHosts: rejectPrivate,
			}))
		}
		if retries > 0 {
			policy := httpclient.DefaultRetryPolicy()
			policy.Attempts = retries
			options = append(options, httpclient.WithRetryPolicy(policy))
		}
		if browserHeaders {
			options = append(options, httpclient.WithBrowserHeaders(httpclient.DefaultBrowserHeaderOptions()))
		}
		if randomUA {
			options = append(options, httpclient.WithUserAgentRandomizer(httpclient.DefaultUserAgentSpec()))
		}

		client := httpclient.NewClient(options...)
		defer client.Close()

		req := httpclient.NewRequest("GET", path)
		for key, values := range query {
			for _, value := range values {
				req.WithQueryParam(key, value)
			}
		}
		for _, header := range headers {
			parts := strings.SplitN(header, ":", 2)
			if len(parts) == 2 {
				req.WithHeader(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
			}
		}

		formatter := output.NewFormatter(verbose, noColor)
		fmt.Print(formatter.FormatRequest(req, baseURL))

		resp, err := client.Do(context.Background(), req)
		if err != nil {
			fmt.Fprint(os.Stderr, formatter.FormatError(err))
			return err
		}

		fmt.Print(formatter.FormatResponse(resp))
		return nil
	},
}

// profileOptions loads client options from a YAML profile, if one was given.
func profileOptions(path string) ([]httpclient.Option, error) {
	if path == "" {
		return nil, nil
	}
	profile, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return profile.Options(), nil
}

// parseURL splits a URL into base URL, path, and query parameters.
func parseURL(fullURL string) (string, string, url.Values) {
	if !strings.Contains(fullURL, "://") {
		fullURL = "https://" + fullURL
	}

	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return fullURL, "/", nil
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	if parsedURL.User != nil {
		baseURL = fmt.Sprintf("%s://%s@%s", parsedURL.Scheme, parsedURL.User.String(), parsedURL.Host)
	}

	path := parsedURL.Path
	if path == "" {
		path = "/"
	}
	return baseURL, path, parsedURL.Query()
}

func init() {
	getCmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers to include (repeatable)")
	getCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Per-phase timeout")
	getCmd.Flags().Int("retries", 0, "Retry transient network failures up to N attempts")
	getCmd.Flags().Bool("force-https", false, "Upgrade http URLs to https before sending")
	getCmd.Flags().Bool("reject-private", false, "Reject literal private/loopback/reserved hosts")
	getCmd.Flags().Bool("random-ua", false, "Randomize the user-agent per request")
	getCmd.Flags().Bool("browser-headers", false, "Apply browser-realistic default headers")
}

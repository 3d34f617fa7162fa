// Package httpclient provides a hardened outbound HTTP client for automated
// crawling: a layered transport enforcing URL-safety policy, connection-pool
// and raw socket tuning, jittered retry of transient network failures, and a
// request/response hook pipeline for browser-realistic header spoofing.
//
// The layers compose at construction time and stay immutable afterwards:
//
//	client := httpclient.NewClient(
//	    httpclient.WithBaseURL("https://crt.sh"),
//	    httpclient.WithURLRestrictions(httpclient.URLRestrictions{
//	        ForceHTTPS:         true,
//	        RejectPrivateHosts: true,
//	    }),
//	    httpclient.WithRetryPolicy(httpclient.DefaultRetryPolicy()),
//	    httpclient.WithUserAgentRandomizer(httpclient.DefaultUserAgentSpec()),
//	)
//	defer client.Close()
//
//	resp, err := client.Get(ctx, "/")
//
// Requests flow: hook pipeline mutates headers, the safety layer validates
// (and may upgrade http to https), the pooled transport sends. The retry
// controller wraps the whole send, so every attempt re-runs the pipeline and
// re-validates. Policy violations are terminal and never retried.
//
// Thread safety: a Client is safe for concurrent use; in-flight requests
// share one bounded connection pool. Close is idempotent.
package httpclient

package httpclient

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Response wraps an HTTP response with its fully read body and timing.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Duration   time.Duration

	body []byte
}

// Body returns the raw response body.
func (r *Response) Body() []byte {
	return r.body
}

// BodyString returns the response body as a string.
func (r *Response) BodyString() string {
	return string(r.body)
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.body, v)
}

// Get extracts a value from the JSON body by gjson path.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.body, path)
}

// GetHeader returns the value of the named response header.
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsClientError reports a 4xx status.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError reports a 5xx status.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

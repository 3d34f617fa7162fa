package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request describes an HTTP request before it is bound to a client. It can
// be built and sent repeatedly; every build produces a fresh http.Request,
// which is what lets the retry controller re-issue it safely.
type Request struct {
	Method      string
	Path        string
	QueryParams url.Values
	Headers     map[string]string
	Body        interface{}
}

// NewRequest creates a request for the given method and path. The path is
// resolved against the client's base URL at send time.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:      method,
		Path:        path,
		QueryParams: make(url.Values),
		Headers:     make(map[string]string),
	}
}

// WithHeader sets a header on the request.
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithQueryParam adds a query parameter.
func (r *Request) WithQueryParam(key, value string) *Request {
	r.QueryParams.Add(key, value)
	return r
}

// WithQueryParams adds multiple query parameters.
func (r *Request) WithQueryParams(params map[string]string) *Request {
	for key, value := range params {
		r.QueryParams.Add(key, value)
	}
	return r
}

// WithBody sets the request body. Strings and byte slices are sent verbatim;
// anything else is marshaled as JSON.
func (r *Request) WithBody(body interface{}) *Request {
	r.Body = body
	return r
}

// build constructs a fresh http.Request against baseURL.
func (r *Request) build(ctx context.Context, baseURL string) (*http.Request, error) {
	reqURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if reqURL.Path == "" {
		reqURL.Path = r.Path
	} else if r.Path != "" {
		reqURL.Path = strings.TrimRight(reqURL.Path, "/") + "/" + strings.TrimLeft(r.Path, "/")
	}

	query := reqURL.Query()
	for key, values := range r.QueryParams {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	reqURL.RawQuery = query.Encode()

	var bodyReader io.Reader
	contentType := ""
	if r.Body != nil {
		switch body := r.Body.(type) {
		case string:
			bodyReader = strings.NewReader(body)
		case []byte:
			bodyReader = bytes.NewReader(body)
		case io.Reader:
			bodyReader = body
		default:
			jsonBody, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			bodyReader = bytes.NewReader(jsonBody)
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, reqURL.String(), bodyReader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

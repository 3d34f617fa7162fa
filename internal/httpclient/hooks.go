package httpclient

import "net/http"

// RequestHook runs against the outgoing request just before it is sent.
// Hooks run in registration order and should only mutate headers.
type RequestHook func(*http.Request) error

// ResponseHook runs against the response after receipt, in registration
// order.
type ResponseHook func(*Response) error

func runRequestHooks(hooks []RequestHook, req *http.Request) error {
	for _, hook := range hooks {
		if err := hook(req); err != nil {
			return err
		}
	}
	return nil
}

func runResponseHooks(hooks []ResponseHook, resp *Response) error {
	for _, hook := range hooks {
		if err := hook(resp); err != nil {
			return err
		}
	}
	return nil
}

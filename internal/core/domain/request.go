package domain

import (
	"fmt"
	"net/http"

	"github.com/samber/mo"
)

// Request describes a single upstream API call.
type Request struct {
	Method    string
	URL       string
	Body      mo.Option[any]
	AuthToken mo.Option[string]
	Headers   map[string]string
}

func Get(url string) Request {
	return Request{Method: http.MethodGet, URL: url}
}

func Post(url string, body any) Request {
	return Request{Method: http.MethodPost, URL: url, Body: mo.Some(body)}
}

// WithBearer returns a copy of the request authorized with a bearer token.
func (r Request) WithBearer(token string) Request {
	r.AuthToken = mo.Some(token)
	return r
}

// WithHeader returns a copy of the request with an additional header.
func (r Request) WithHeader(key, value string) Request {
	headers := make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		headers[k] = v
	}
	headers[key] = value
	r.Headers = headers
	return r
}

// APIError is the failure outcome of an upstream call. Kind is ErrTransport or ErrDecode.
type APIError struct {
	Kind   error
	URL    string
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s returned %d: %s", e.Kind, e.URL, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.URL, e.Detail)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

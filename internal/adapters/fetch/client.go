package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"tbot/internal/core/domain"
	"tbot/internal/core/jsonpath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "tbot/1.0"
	// maxErrorDetail bounds how much of an error body ends up in an APIError.
	maxErrorDetail = 512
)

// Client performs single upstream round trips. It never retries and never caches.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.http = c
	}
}

// WithRateLimit delays outgoing requests to at most limit per second with the given burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(client *Client) {
		client.limiter = rate.NewLimiter(limit, burst)
	}
}

func WithUserAgent(ua string) Option {
	return func(client *Client) {
		client.userAgent = ua
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      http.DefaultClient,
		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) FetchJSON(ctx context.Context, req domain.Request) (jsonpath.Document, error) {
	body, err := c.do(ctx, req)
	if err != nil {
		return jsonpath.Document{}, err
	}

	doc, err := jsonpath.Parse(body)
	if err != nil {
		return jsonpath.Document{}, &domain.APIError{
			Kind:   domain.ErrDecode,
			URL:    req.URL,
			Detail: truncate(body),
		}
	}

	return doc, nil
}

func (c *Client) FetchText(ctx context.Context, req domain.Request) (string, error) {
	body, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (c *Client) do(ctx context.Context, req domain.Request) ([]byte, error) {
	l := log.With().Str("method", req.Method).Str("url", req.URL).Logger()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportErr(req, 0, fmt.Sprintf("rate limiter: %v", err))
		}
	}

	var payload io.Reader
	if body, ok := req.Body.Get(); ok {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		payload = buf
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, payload)
	if err != nil {
		return nil, transportErr(req, 0, err.Error())
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token, ok := req.AuthToken.Get(); ok {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		l.Debug().Err(err).Dur("duration", time.Since(start)).Msg("request failed")
		return nil, transportErr(req, 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	l.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("upstream response")
	if err != nil {
		return nil, transportErr(req, resp.StatusCode, fmt.Sprintf("reading body: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, transportErr(req, resp.StatusCode, truncate(body))
	}

	return body, nil
}

func transportErr(req domain.Request, status int, detail string) error {
	return &domain.APIError{
		Kind:   domain.ErrTransport,
		URL:    req.URL,
		Status: status,
		Detail: detail,
	}
}

func truncate(body []byte) string {
	if len(body) > maxErrorDetail {
		return string(body[:maxErrorDetail]) + "..."
	}
	return string(body)
}

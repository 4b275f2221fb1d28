package port

import (
	"context"
	"tbot/internal/core/domain"
	"tbot/internal/core/jsonpath"
)

type Fetcher interface {
	// FetchJSON performs one round trip and returns the decoded JSON body. Failures are
	// *domain.APIError values of kind domain.ErrTransport or domain.ErrDecode.
	FetchJSON(ctx context.Context, req domain.Request) (jsonpath.Document, error)
	// FetchText performs one round trip and returns the raw body.
	FetchText(ctx context.Context, req domain.Request) (string, error)
}

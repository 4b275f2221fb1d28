package port

import (
	"context"
	"tbot/internal/core/domain"
)

type TextGenerator interface {
	// GenerateFromPrompt sends a single prompt to the completion provider. Calls are not
	// idempotent, the same prompt may produce a different response.
	GenerateFromPrompt(ctx context.Context, prompt domain.Prompt) (domain.ModelResponse, error)
}

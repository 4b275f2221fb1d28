package generator

import (
	"context"
	"fmt"
	"tbot/internal/core/domain"

	"github.com/revrost/go-openrouter"
)

type openRouterClient interface {
	CreateChatCompletion(ctx context.Context, ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

type OpenRouter struct {
	client openRouterClient
	params Params
}

func NewOpenRouter(apiKey string, params Params) *OpenRouter {
	return &OpenRouter{
		params: params,
		client: openrouter.NewClient(
			apiKey,
			openrouter.WithXTitle("tbot"),
		),
	}
}

func (c *OpenRouter) GenerateFromPrompt(ctx context.Context, prompt domain.Prompt) (domain.ModelResponse, error) {
	var messages []openrouter.ChatCompletionMessage

	if c.params.SystemPrompt != "" {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleSystem,
			Content: openrouter.Content{Text: c.params.SystemPrompt},
		})
	}

	messages = append(messages, openrouter.ChatCompletionMessage{
		Role:    openrouter.ChatMessageRoleUser,
		Content: openrouter.Content{Text: prompt.Prompt},
	})

	// Zero values are omitted from the request body and left to the provider.
	resp, err := c.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Messages:         messages,
		Model:            c.params.Model,
		Temperature:      float32(c.params.Temperature),
		MaxTokens:        c.params.MaxTokens,
		TopP:             float32(c.params.TopP),
		FrequencyPenalty: float32(c.params.FrequencyPenalty),
		PresencePenalty:  float32(c.params.PresencePenalty),
	})
	if err != nil {
		return domain.ModelResponse{}, fmt.Errorf("openrouter API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return domain.ModelResponse{}, errNoChoices
	}

	return domain.ModelResponse{
		Response: resp.Choices[0].Message.Content.Text,
		Metadata: domain.ResponseMetadata{
			Model:            resp.Model,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

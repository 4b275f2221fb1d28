package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tbot/internal/core/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Params tunes a completion request. Zero values are left to the provider's defaults.
type Params struct {
	Model            string
	SystemPrompt     string
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

var errNoChoices = errors.New("completion returned no choices")

type OpenAI struct {
	client *openai.Client
	params Params
}

// NewOpenAI creates a generator for OpenAI compatible chat completion endpoints. Completions
// are not idempotent so the SDK's automatic retries are disabled.
func NewOpenAI(apiKey, baseURL string, params Params) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}

	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, params: params}
}

func (o *OpenAI) GenerateFromPrompt(ctx context.Context, prompt domain.Prompt) (domain.ModelResponse, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if o.params.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(o.params.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt.Prompt))

	req := openai.ChatCompletionNewParams{
		Model:    o.params.Model,
		Messages: messages,
	}
	if o.params.Temperature != 0 {
		req.Temperature = openai.Float(o.params.Temperature)
	}
	if o.params.MaxTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(o.params.MaxTokens))
	}
	if o.params.TopP != 0 {
		req.TopP = openai.Float(o.params.TopP)
	}
	if o.params.FrequencyPenalty != 0 {
		req.FrequencyPenalty = openai.Float(o.params.FrequencyPenalty)
	}
	if o.params.PresencePenalty != 0 {
		req.PresencePenalty = openai.Float(o.params.PresencePenalty)
	}

	resp, err := o.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return domain.ModelResponse{}, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return domain.ModelResponse{}, errNoChoices
	}

	return domain.ModelResponse{
		Response: resp.Choices[0].Message.Content,
		Metadata: domain.ResponseMetadata{
			Model:            resp.Model,
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

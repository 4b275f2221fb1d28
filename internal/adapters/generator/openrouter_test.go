package generator

import (
	"context"
	"errors"
	"tbot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/revrost/go-openrouter"
	"github.com/stretchr/testify/assert"
)

// mockClient is a test double for the openRouterClient interface.
type mockClient struct {
	createChatCompletionFunc func(ctx context.Context,
		ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

func (m *mockClient) CreateChatCompletion(ctx context.Context,
	ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
	return m.createChatCompletionFunc(ctx, ccr)
}

func TestOpenRouterGenerator_GenerateFromPrompt(t *testing.T) {
	okResp := openrouter.ChatCompletionResponse{
		Choices: []openrouter.ChatCompletionChoice{{
			Message: openrouter.ChatCompletionMessage{
				Content: openrouter.Content{Text: "hello!"},
			},
		}},
		Model: "openai/gpt-4.1",
		Usage: openrouter.Usage{
			CompletionTokens: 7,
			TotalTokens:      9,
		},
	}

	testCases := []struct {
		name         string
		systemPrompt string
		mockResp     openrouter.ChatCompletionResponse
		mockErr      error
		wantMessages int
		expectedResp domain.ModelResponse
		expectErr    bool
	}{
		{
			name:         "success with system prompt",
			systemPrompt: "system",
			mockResp:     okResp,
			wantMessages: 2,
			expectedResp: domain.ModelResponse{
				Response: "hello!",
				Metadata: domain.ResponseMetadata{
					Model:            "openai/gpt-4.1",
					CompletionTokens: 7,
					TotalTokens:      9,
				},
			},
		},
		{
			name:         "success without system prompt",
			mockResp:     okResp,
			wantMessages: 1,
			expectedResp: domain.ModelResponse{
				Response: "hello!",
				Metadata: domain.ResponseMetadata{
					Model:            "openai/gpt-4.1",
					CompletionTokens: 7,
					TotalTokens:      9,
				},
			},
		},
		{
			name:         "API error returned",
			systemPrompt: "system",
			mockErr:      errors.New("api failure"),
			wantMessages: 2,
			expectErr:    true,
		},
		{
			name:         "no choices",
			mockResp:     openrouter.ChatCompletionResponse{Model: "openai/gpt-4.1"},
			wantMessages: 1,
			expectErr:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got openrouter.ChatCompletionRequest
			mock := &mockClient{
				createChatCompletionFunc: func(_ context.Context,
					ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
					got = ccr
					return tc.mockResp, tc.mockErr
				},
			}
			gen := &OpenRouter{
				client: mock,
				params: Params{Model: "openai/gpt-4.1", SystemPrompt: tc.systemPrompt},
			}

			resp, err := gen.GenerateFromPrompt(t.Context(), domain.Prompt{Prompt: "hi."})
			if tc.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedResp, resp)
			}

			assert.Equal(t, "openai/gpt-4.1", got.Model)
			require.Len(t, got.Messages, tc.wantMessages)
			last := got.Messages[len(got.Messages)-1]
			assert.Equal(t, openrouter.ChatMessageRoleUser, last.Role)
			assert.Equal(t, "hi.", last.Content.Text)
		})
	}
}

func TestOpenRouterGenerator_SamplingParams(t *testing.T) {
	var got openrouter.ChatCompletionRequest
	mock := &mockClient{
		createChatCompletionFunc: func(_ context.Context,
			ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
			got = ccr
			return openrouter.ChatCompletionResponse{
				Choices: []openrouter.ChatCompletionChoice{{
					Message: openrouter.ChatCompletionMessage{Content: openrouter.Content{Text: "ok"}},
				}},
			}, nil
		},
	}
	gen := &OpenRouter{
		client: mock,
		params: Params{
			Model:            "mistralai/mistral-small",
			Temperature:      0.3,
			MaxTokens:        2000,
			TopP:             1,
			FrequencyPenalty: 0.2,
			PresencePenalty:  0.35,
		},
	}

	_, err := gen.GenerateFromPrompt(t.Context(), domain.Prompt{Prompt: "hi."})
	require.NoError(t, err)

	assert.Equal(t, "mistralai/mistral-small", got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 1e-6)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.InDelta(t, 1.0, got.TopP, 1e-6)
	assert.InDelta(t, 0.2, got.FrequencyPenalty, 1e-6)
	assert.InDelta(t, 0.35, got.PresencePenalty, 1e-6)
}

package command

import (
	"strings"
	"tbot/internal/core/domain"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk_Respond(t *testing.T) {
	type TestCase struct {
		description string
		prompt      string
		wantPrompt  string
		response    string
		genErr      error
		wantEdit    string
	}

	testCases := []TestCase{
		{
			description: "adds full stop",
			prompt:      "  tell me a joke ",
			wantPrompt:  "tell me a joke.",
			response:    "\nWhy did the corgi sit down? It was tired.\n",
			wantEdit:    "```Why did the corgi sit down? It was tired.```",
		},
		{
			description: "keeps question mark",
			prompt:      "why?",
			wantPrompt:  "why?",
			response:    "Because.",
			wantEdit:    "```Because.```",
		},
		{
			description: "generator error",
			prompt:      "hello!",
			wantPrompt:  "hello!",
			genErr:      errServer,
			wantEdit:    "```" + askNoResponse + "```",
		},
		{
			description: "empty answer",
			prompt:      "hello!",
			wantPrompt:  "hello!",
			response:    "   ",
			wantEdit:    "```" + askNoResponse + "```",
		},
		{
			description: "code fences in answer do not break the block",
			prompt:      "code!",
			wantPrompt:  "code!",
			response:    "```go\nfmt.Println()\n```",
			wantEdit:    "```'''go\nfmt.Println()\n'''```",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			generator := &MockTextGenerator{response: testCase.response, err: testCase.genErr}
			sender := &MockReplySender{}
			ask := NewAsk(generator, sender, 2000)

			err := ask.Respond(t.Context(), &domain.Command{Name: "ask", Args: []string{testCase.prompt}})
			require.NoError(t, err)

			assert.Equal(t, []string{askPlaceholder}, sender.Placeholders)
			assert.Equal(t, []string{testCase.wantPrompt}, generator.Prompts)
			require.Len(t, sender.Edits, 1)
			assert.Equal(t, testCase.wantEdit, sender.Edits[0].Content)
			assert.Empty(t, sender.Replies)
		})
	}
}

func TestAsk_EmptyPrompt(t *testing.T) {
	generator := &MockTextGenerator{}
	sender := &MockReplySender{}

	err := NewAsk(generator, sender, 2000).Respond(t.Context(), &domain.Command{Name: "ask"})
	require.NoError(t, err)

	require.Len(t, sender.Replies, 1)
	assert.Equal(t, askEmptyPrompt, sender.Replies[0].Content)
	assert.Empty(t, sender.Placeholders)
	assert.Empty(t, generator.Prompts)
}

func TestAsk_Truncates(t *testing.T) {
	generator := &MockTextGenerator{response: strings.Repeat("ä", 3000)}
	sender := &MockReplySender{}

	err := NewAsk(generator, sender, 2000).Respond(t.Context(), &domain.Command{Name: "ask", Args: []string{"long."}})
	require.NoError(t, err)

	edit := sender.Edits[0].Content
	assert.Equal(t, 2000, utf8.RuneCountInString(edit))
	assert.True(t, strings.HasSuffix(edit, "…```"))
}

func TestAsk_PlaceholderFails(t *testing.T) {
	generator := &MockTextGenerator{}
	sender := &MockReplySender{placeholdErr: errNope}

	err := NewAsk(generator, sender, 2000).Respond(t.Context(), &domain.Command{Name: "ask", Args: []string{"hi"}})
	require.ErrorIs(t, err, errNope)
	assert.Empty(t, generator.Prompts)
}

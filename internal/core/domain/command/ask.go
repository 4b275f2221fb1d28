package command

import (
	"context"
	"fmt"
	"strings"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	askPlaceholder = "```Please wait... Fetching response...```"
	askEmptyPrompt = "Could not pass text to AI"
	askNoResponse  = "Did not receive a response from the AI :("
	codeFence      = "```"
)

type Ask struct {
	generator port.TextGenerator
	sender    port.ReplySender
	maxLength int
}

// NewAsk creates the LLM handler. maxLength is the longest message the platforms accept,
// the answer is cut to fit inside it including the code fences.
func NewAsk(generator port.TextGenerator, sender port.ReplySender, maxLength int) *Ask {
	return &Ask{
		generator: generator,
		sender:    sender,
		maxLength: maxLength,
	}
}

func (a *Ask) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "ask",
		Description: "Ask the AI a question",
		Args: []domain.Argument{
			{Name: "prompt", Description: "What to ask", Required: true},
		},
	}
}

func (a *Ask) Respond(ctx context.Context, cmd *domain.Command) error {
	l := log.With().
		Str("requestId", cmd.ID).
		Str("command", a.Describe().Name).
		Logger()

	prompt := strings.TrimSpace(cmd.Arg(0))
	if prompt == "" {
		l.Debug().Msg("empty prompt")
		err := a.sender.SendReply(ctx, cmd, domain.Reply{Content: askEmptyPrompt})
		if err != nil {
			return fmt.Errorf("failed to send empty prompt notice: %w", err)
		}
		return nil
	}

	handle, err := a.sender.SendPlaceholder(ctx, cmd, askPlaceholder)
	if err != nil {
		return fmt.Errorf("failed to send placeholder: %w", err)
	}

	actionCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.sender.SendChatAction(actionCtx, cmd, domain.Typing)

	answer := askNoResponse
	res, err := a.generator.GenerateFromPrompt(ctx, domain.Prompt{Prompt: punctuate(prompt)})
	switch {
	case err != nil:
		l.Error().Err(err).Msg("failed to generate response")
	case strings.TrimSpace(res.Response) == "":
		l.Warn().Str("model", res.Metadata.Model).Msg("model returned an empty response")
	default:
		l.Info().
			Str("model", res.Metadata.Model).
			Int("completionTokens", res.Metadata.CompletionTokens).
			Int("totalTokens", res.Metadata.TotalTokens).
			Msg("received response")
		answer = res.Response
	}

	err = a.sender.EditReply(ctx, handle, domain.Reply{Content: a.codeBlock(answer)})
	if err != nil {
		return fmt.Errorf("failed to edit placeholder: %w", err)
	}

	return nil
}

// punctuate ends the prompt with a full stop unless it already ends a sentence.
func punctuate(prompt string) string {
	switch prompt[len(prompt)-1] {
	case '.', '!', '?':
		return prompt
	}
	return prompt + "."
}

func (a *Ask) codeBlock(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, codeFence, "'''"))

	if limit := a.maxLength - 2*len(codeFence); a.maxLength > 0 && utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		text = string(runes[:limit-1]) + "…"
	}

	return codeFence + text + codeFence
}

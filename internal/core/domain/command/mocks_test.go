package command

import (
	"context"
	"errors"
	"tbot/internal/core/domain"
	"tbot/internal/core/jsonpath"
)

type MockReplySender struct {
	err          error
	placeholdErr error
	editErr      error

	Replies      []domain.Reply
	Placeholders []string
	Edits        []domain.Reply
	Errors       []string
	Actions      []domain.Action
}

func (m *MockReplySender) SendReply(_ context.Context, _ *domain.Command, reply domain.Reply) error {
	m.Replies = append(m.Replies, reply)
	return m.err
}

func (m *MockReplySender) SendPlaceholder(_ context.Context, cmd *domain.Command, text string) (domain.MessageHandle, error) {
	m.Placeholders = append(m.Placeholders, text)
	return domain.MessageHandle{Origin: cmd.Origin, MessageID: "placeholder"}, m.placeholdErr
}

func (m *MockReplySender) EditReply(_ context.Context, _ domain.MessageHandle, reply domain.Reply) error {
	m.Edits = append(m.Edits, reply)
	return m.editErr
}

func (m *MockReplySender) SendChatAction(_ context.Context, _ *domain.Command, action domain.Action) {
	m.Actions = append(m.Actions, action)
}

func (m *MockReplySender) NotifyAndReturnError(_ context.Context, err error, _ *domain.Command) error {
	m.Errors = append(m.Errors, err.Error())
	if m.err != nil {
		return m.err
	}
	return err
}

// LastEmbed returns the embed of the most recent reply or nil.
func (m *MockReplySender) LastEmbed() *domain.Embed {
	if len(m.Replies) == 0 {
		return nil
	}
	return m.Replies[len(m.Replies)-1].Embed
}

// MockFetcher serves canned bodies keyed by request URL.
type MockFetcher struct {
	Bodies   map[string]string
	Errs     map[string]error
	Requests []domain.Request
}

func (m *MockFetcher) FetchJSON(ctx context.Context, req domain.Request) (jsonpath.Document, error) {
	body, err := m.FetchText(ctx, req)
	if err != nil {
		return jsonpath.Document{}, err
	}

	doc, err := jsonpath.Parse([]byte(body))
	if err != nil {
		return jsonpath.Document{}, &domain.APIError{Kind: domain.ErrDecode, URL: req.URL, Detail: err.Error()}
	}
	return doc, nil
}

func (m *MockFetcher) FetchText(_ context.Context, req domain.Request) (string, error) {
	m.Requests = append(m.Requests, req)

	if err, ok := m.Errs[req.URL]; ok {
		return "", err
	}

	body, ok := m.Bodies[req.URL]
	if !ok {
		return "", &domain.APIError{Kind: domain.ErrTransport, URL: req.URL, Status: 404, Detail: "not found"}
	}
	return body, nil
}

func (m *MockFetcher) URLs() []string {
	urls := make([]string, len(m.Requests))
	for i, r := range m.Requests {
		urls[i] = r.URL
	}
	return urls
}

var errServer = &domain.APIError{Kind: domain.ErrTransport, URL: "mock", Status: 500, Detail: "internal server error"}

type MockTextGenerator struct {
	response string
	err      error
	Prompts  []string
}

func (m *MockTextGenerator) GenerateFromPrompt(_ context.Context, prompt domain.Prompt) (domain.ModelResponse, error) {
	m.Prompts = append(m.Prompts, prompt.Prompt)
	if m.err != nil {
		return domain.ModelResponse{}, m.err
	}
	return domain.ModelResponse{
		Response: m.response,
		Metadata: domain.ResponseMetadata{
			Model:            "unit-test",
			CompletionTokens: 24,
			TotalTokens:      42,
		},
	}, nil
}

type MockGuildDirectory struct {
	guild domain.Guild
	err   error
}

func (m *MockGuildDirectory) GuildInfo(_ context.Context, _ domain.Origin) (domain.Guild, error) {
	return m.guild, m.err
}

var errNope = errors.New("nope")

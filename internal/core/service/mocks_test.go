package service

import (
	"context"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"

	"github.com/stretchr/testify/mock"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendReply(ctx context.Context, cmd *domain.Command, reply domain.Reply) error {
	args := m.Called(ctx, cmd, reply)
	return args.Error(0)
}

func (m *mockSender) SendPlaceholder(ctx context.Context, cmd *domain.Command, text string) (domain.MessageHandle, error) {
	args := m.Called(ctx, cmd, text)
	return args.Get(0).(domain.MessageHandle), args.Error(1)
}

func (m *mockSender) EditReply(ctx context.Context, handle domain.MessageHandle, reply domain.Reply) error {
	args := m.Called(ctx, handle, reply)
	return args.Error(0)
}

func (m *mockSender) SendChatAction(_ context.Context, _ *domain.Command, _ domain.Action) {}

func (m *mockSender) NotifyAndReturnError(ctx context.Context, err error, cmd *domain.Command) error {
	m.Called(ctx, err, cmd)
	return err
}

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Register(handler port.Command) {
	m.Called(handler)
}

func (m *mockRegistry) Get(name, subOption string) (port.Command, error) {
	args := m.Called(name, subOption)
	cmd, _ := args.Get(0).(port.Command)
	return cmd, args.Error(1)
}

func (m *mockRegistry) Resolve(name string) string {
	return name
}

func (m *mockRegistry) SubOptions(_ string) []string {
	return nil
}

func (m *mockRegistry) ListCommands() []domain.CommandInfo {
	return nil
}

type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Respond(ctx context.Context, cmd *domain.Command) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func (m *mockHandler) Describe() domain.CommandInfo {
	return domain.CommandInfo{Name: "mock"}
}

type panicHandler struct{}

func (panicHandler) Respond(_ context.Context, _ *domain.Command) error {
	panic("boom")
}

func (panicHandler) Describe() domain.CommandInfo {
	return domain.CommandInfo{Name: "panic"}
}

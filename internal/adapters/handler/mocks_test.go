package handler

import (
	"context"
	"tbot/internal/core/domain"
	"tbot/internal/core/domain/command"

	"github.com/stretchr/testify/mock"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, cmd *domain.Command) {
	m.Called(ctx, cmd)
}

type stubCommand struct {
	info domain.CommandInfo
}

func (s stubCommand) Respond(_ context.Context, _ *domain.Command) error {
	return nil
}

func (s stubCommand) Describe() domain.CommandInfo {
	return s.info
}

func newTestRegistry() *command.Registry {
	r := &command.Registry{}
	r.Register(stubCommand{info: domain.CommandInfo{Name: "ping", Description: "Replies with Pong!"}})
	r.Register(stubCommand{info: domain.CommandInfo{
		Name:        "dog",
		Description: "Random dog picture",
		Aliases:     []string{"corgi"},
		Args:        []domain.Argument{{Name: "breed", Description: "Dog breed"}},
	}})
	r.Register(stubCommand{info: domain.CommandInfo{
		Name:             "f1",
		SubOption:        "driver",
		Description:      "Driver standings",
		GroupDescription: "Formula 1 data",
	}})
	r.Register(stubCommand{info: domain.CommandInfo{
		Name:             "f1",
		SubOption:        "constructor",
		Description:      "Constructor standings",
		GroupDescription: "Formula 1 data",
	}})
	r.Register(stubCommand{info: domain.CommandInfo{
		Name:        "user",
		Description: "Info about you",
		Aliases:     []string{"user_info", "User-Info"},
	}})
	return r
}

package port

import (
	"context"
	"tbot/internal/core/domain"
)

type Command interface {
	// Respond runs the command and delivers its reply to the originating chat.
	Respond(ctx context.Context, cmd *domain.Command) error
	// Describe returns the routing and help metadata of the command handler.
	Describe() domain.CommandInfo
}

type CommandRegistry interface {
	// Register adds a new command handler to the command registry.
	Register(handler Command)
	// Get retrieves the handler for a command name and sub-option, failing with
	// domain.ErrUnknownCommand or domain.ErrUnknownOption.
	Get(name, subOption string) (Command, error)
	// Resolve maps an alias to its canonical command name; unknown names are returned unchanged.
	Resolve(name string) string
	// SubOptions lists the sub-options registered below a command name.
	SubOptions(name string) []string
	// ListCommands returns the metadata of every registered handler, sorted by name and sub-option.
	ListCommands() []domain.CommandInfo
}

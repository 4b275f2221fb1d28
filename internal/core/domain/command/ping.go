package command

import (
	"context"
	"fmt"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"
)

type Ping struct {
	sender port.ReplySender
}

func NewPing(sender port.ReplySender) *Ping {
	return &Ping{sender: sender}
}

func (p *Ping) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "ping",
		Description: "Check if the bot is alive",
	}
}

func (p *Ping) Respond(ctx context.Context, cmd *domain.Command) error {
	err := p.sender.SendReply(ctx, cmd, domain.Reply{Content: "Pong!"})
	if err != nil {
		return fmt.Errorf("failed to send pong: %w", err)
	}

	return nil
}

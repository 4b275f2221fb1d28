package service

import (
	"context"
	"fmt"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

type Authorizer interface {
	IsAuthorized(ctx context.Context, cmd *domain.Command) bool
}

// ChatAuthorizer restricts the bot to allow-listed guilds and chats. An empty allow-list
// admits everyone.
type ChatAuthorizer struct {
	allowlist map[string]struct{}
	sender    port.ReplySender
}

func NewAuthorizer(sender port.ReplySender, allowed []string) *ChatAuthorizer {
	list := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		list[id] = struct{}{}
	}

	return &ChatAuthorizer{
		allowlist: list,
		sender:    sender,
	}
}

const forbidden = "This bot is not enabled here. Ask the bot owner to allow this ID: %s"

func (a *ChatAuthorizer) IsAuthorized(ctx context.Context, cmd *domain.Command) bool {
	if len(a.allowlist) == 0 {
		return true
	}

	if _, ok := a.allowlist[cmd.Origin.GuildID]; ok && cmd.Origin.GuildID != "" {
		return true
	}

	if _, ok := a.allowlist[cmd.Origin.ChannelID]; ok {
		return true
	}

	id := cmd.Origin.GuildID
	if id == "" {
		id = cmd.Origin.ChannelID
	}

	err := a.sender.SendReply(ctx, cmd, domain.Reply{Content: fmt.Sprintf(forbidden, id)})
	if err != nil {
		log.Err(err).Msg("failed to send unauthorized warning")
	}

	return false
}

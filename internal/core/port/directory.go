package port

import (
	"context"
	"tbot/internal/core/domain"
)

type GuildDirectory interface {
	// GuildInfo looks up the server (guild or group chat) a command was sent from.
	GuildInfo(ctx context.Context, origin domain.Origin) (domain.Guild, error)
}

package port

import (
	"context"
	"tbot/internal/core/domain"
)

type ReplySender interface {
	// SendReply answers the command with a text and/or embed reply.
	SendReply(ctx context.Context, cmd *domain.Command, reply domain.Reply) error
	// SendPlaceholder sends an immediate low-content reply that is completed later with EditReply.
	SendPlaceholder(ctx context.Context, cmd *domain.Command, text string) (domain.MessageHandle, error)
	// EditReply replaces the content of a message previously sent with SendPlaceholder.
	EditReply(ctx context.Context, handle domain.MessageHandle, reply domain.Reply) error
	// SendChatAction signals activity (e.g. typing) in the command's chat.
	SendChatAction(ctx context.Context, cmd *domain.Command, action domain.Action)
	// NotifyAndReturnError sends an error notification in reply to the command and returns the error.
	NotifyAndReturnError(ctx context.Context, err error, cmd *domain.Command) error
}

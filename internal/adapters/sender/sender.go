package sender

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const maxErrorText = 300

// errorText is the user facing form of a handler failure.
func errorText(err error) string {
	text := err.Error()
	if utf8.RuneCountInString(text) > maxErrorText {
		text = string([]rune(text)[:maxErrorText]) + "..."
	}
	return "Error: " + text
}

// notifyFailed combines a handler error with the failure to report it.
func notifyFailed(err, sendErr error) error {
	return errors.Join(err, fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, sendErr))
}

// Router forwards every call to the sender of the command's platform.
type Router struct {
	senders map[domain.Platform]port.ReplySender
}

func NewRouter() *Router {
	return &Router{senders: make(map[domain.Platform]port.ReplySender)}
}

func (r *Router) Add(platform domain.Platform, s port.ReplySender) {
	r.senders[platform] = s
}

func (r *Router) route(origin domain.Origin) (port.ReplySender, error) {
	s, ok := r.senders[origin.Platform]
	if !ok {
		return nil, fmt.Errorf("%w: no sender for platform %q", domain.ErrUnsupported, origin.Platform)
	}
	return s, nil
}

func (r *Router) SendReply(ctx context.Context, cmd *domain.Command, reply domain.Reply) error {
	s, err := r.route(cmd.Origin)
	if err != nil {
		return err
	}
	return s.SendReply(ctx, cmd, reply)
}

func (r *Router) SendPlaceholder(ctx context.Context, cmd *domain.Command, text string) (domain.MessageHandle, error) {
	s, err := r.route(cmd.Origin)
	if err != nil {
		return domain.MessageHandle{}, err
	}
	return s.SendPlaceholder(ctx, cmd, text)
}

func (r *Router) EditReply(ctx context.Context, handle domain.MessageHandle, reply domain.Reply) error {
	s, err := r.route(handle.Origin)
	if err != nil {
		return err
	}
	return s.EditReply(ctx, handle, reply)
}

func (r *Router) SendChatAction(ctx context.Context, cmd *domain.Command, action domain.Action) {
	s, err := r.route(cmd.Origin)
	if err != nil {
		log.Debug().Err(err).Msg("skipping chat action")
		return
	}
	s.SendChatAction(ctx, cmd, action)
}

func (r *Router) NotifyAndReturnError(ctx context.Context, err error, cmd *domain.Command) error {
	s, routeErr := r.route(cmd.Origin)
	if routeErr != nil {
		return notifyFailed(err, routeErr)
	}
	return s.NotifyAndReturnError(ctx, err, cmd)
}

// GuildInfo forwards to the sender of the origin's platform when it can look up guilds.
func (r *Router) GuildInfo(ctx context.Context, origin domain.Origin) (domain.Guild, error) {
	s, err := r.route(origin)
	if err != nil {
		return domain.Guild{}, err
	}

	directory, ok := s.(port.GuildDirectory)
	if !ok {
		return domain.Guild{}, fmt.Errorf("%w: server info on %s", domain.ErrUnsupported, origin.Platform)
	}
	return directory.GuildInfo(ctx, origin)
}

var shortcodes = strings.NewReplacer(
	":dog:", "🐶",
	":mage:", "🧙",
)

// expandShortcodes swaps Discord emoji shortcodes for the emoji itself.
func expandShortcodes(s string) string {
	return shortcodes.Replace(s)
}

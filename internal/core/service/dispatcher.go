package service

import (
	"context"
	"errors"
	"fmt"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"
	"time"

	"github.com/rs/zerolog/log"
)

// Dispatcher routes parsed commands to their handlers.
type Dispatcher struct {
	registry port.CommandRegistry
	sender   port.ReplySender
	auth     Authorizer
	counter  *Counter
	timeout  time.Duration
}

type DispatcherParams struct {
	Registry port.CommandRegistry
	Sender   port.ReplySender
	Auth     Authorizer
	Counter  *Counter
	// Timeout bounds a single handler run. Zero leaves handlers without a deadline.
	Timeout time.Duration
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	counter := p.Counter
	if counter == nil {
		counter = NewCounter()
	}

	return &Dispatcher{
		registry: p.Registry,
		sender:   p.Sender,
		auth:     p.Auth,
		counter:  counter,
		timeout:  p.Timeout,
	}
}

func (d *Dispatcher) Counter() *Counter {
	return d.counter
}

// Dispatch runs the handler registered for cmd. Unknown commands and sub-options are answered
// with a fixed reply. Handler failures and panics are logged and never escape.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd *domain.Command) {
	l := log.With().
		Str("requestId", cmd.ID).
		Str("platform", string(cmd.Origin.Platform)).
		Str("channelId", cmd.Origin.ChannelID).
		Str("command", cmd.Name).
		Str("option", cmd.SubOption).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Msg("command handler panicked")
			_ = d.sender.NotifyAndReturnError(ctx, fmt.Errorf("internal error in %s", cmd.Name), cmd)
		}
	}()

	handler, err := d.registry.Get(cmd.Name, cmd.SubOption)
	switch {
	case errors.Is(err, domain.ErrUnknownCommand):
		d.counter.Increment(domain.UnknownBucket)
		l.Info().Msg("no handler for command")
		d.fallback(ctx, cmd, domain.NotImplementedReply)
		return
	case errors.Is(err, domain.ErrUnknownOption):
		d.counter.Increment(cmd.Name)
		l.Info().Msg("no handler for option")
		d.fallback(ctx, cmd, domain.InvalidOptionReply)
		return
	case err != nil:
		d.counter.Increment(domain.UnknownBucket)
		l.Error().Err(err).Msg("failed to look up command handler")
		d.fallback(ctx, cmd, domain.NotImplementedReply)
		return
	}

	d.counter.Increment(cmd.Name)

	if d.auth != nil && !d.auth.IsAuthorized(ctx, cmd) {
		l.Debug().Msg("not authorized")
		return
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := handler.Respond(ctx, cmd); err != nil {
		l.Err(err).Dur("took", time.Since(start)).Msg("failed to respond to command")
		return
	}

	l.Debug().Dur("took", time.Since(start)).Msg("command handled")
}

func (d *Dispatcher) fallback(ctx context.Context, cmd *domain.Command, text string) {
	if err := d.sender.SendReply(ctx, cmd, domain.Reply{Content: text}); err != nil {
		log.Err(err).Str("requestId", cmd.ID).Msg("failed to send fallback reply")
	}
}

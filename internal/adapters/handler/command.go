package handler

import (
	"context"
	"sync"
	"tbot/internal/core/domain"

	"github.com/gammazero/workerpool"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, cmd *domain.Command)
}

// Command runs dispatches on a bounded worker pool so a slow upstream never blocks the
// platform event loops.
type Command struct {
	dispatcher Dispatcher
	pool       *workerpool.WorkerPool

	mu       sync.RWMutex
	stopping bool
}

func NewCommand(dispatcher Dispatcher, maxConcurrent int) *Command {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Command{
		dispatcher: dispatcher,
		pool:       workerpool.New(maxConcurrent),
	}
}

// Submit queues cmd and returns immediately. Commands without an ID get a fresh request ID.
// Commands arriving after Stop are dropped.
func (c *Command) Submit(ctx context.Context, cmd *domain.Command) {
	if cmd.ID == "" {
		cmd.ID = newRequestID()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stopping {
		log.Warn().
			Str("requestId", cmd.ID).
			Str("command", cmd.Name).
			Msg("dropping command, shutting down")
		return
	}

	log.Debug().
		Str("requestId", cmd.ID).
		Str("platform", string(cmd.Origin.Platform)).
		Str("command", cmd.Name).
		Str("option", cmd.SubOption).
		Int("queued", c.pool.WaitingQueueSize()).
		Msg("received command")

	c.pool.Submit(func() {
		c.dispatcher.Dispatch(ctx, cmd)
	})
}

// Stop waits for queued commands to finish.
func (c *Command) Stop() {
	c.mu.Lock()
	c.stopping = true
	c.mu.Unlock()

	c.pool.StopWait()
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		log.Err(err).Msg("failed to generate request id")
		return "unknown"
	}
	return id.String()
}

package command

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"strconv"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"
	"tbot/internal/core/service"
	"time"

	"github.com/rs/zerolog/log"
)

type Stats struct {
	counter *service.Counter
	sender  port.ReplySender
	started time.Time
}

func NewStats(counter *service.Counter, sender port.ReplySender) *Stats {
	return &Stats{counter: counter, sender: sender, started: time.Now()}
}

func (s *Stats) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "stats",
		Description: "Show command usage and runtime statistics",
	}
}

const kb = 1024

const runtimeTemplate = `allocated mem: %d KB
goroutines: %d
heap: %d KB
stack: %d KB
uptime: %s
compiled with %s for %s-%s`

func (s *Stats) Respond(ctx context.Context, cmd *domain.Command) error {
	l := log.With().
		Str("requestId", cmd.ID).
		Str("command", s.Describe().Name).
		Logger()

	data := []metrics.Sample{
		{Name: "/memory/classes/heap/objects:bytes"},
		{Name: "/memory/classes/heap/stacks:bytes"},
		{Name: "/memory/classes/total:bytes"},
	}
	metrics.Read(data)

	for _, sample := range data {
		l.Debug().Str("name", sample.Name).Msgf("%d", sample.Value.Uint64())
	}

	goos, goarch := runtime.GOOS, runtime.GOARCH
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "GOOS":
				goos = setting.Value
			case "GOARCH":
				goarch = setting.Value
			}
		}
	}

	entries := s.counter.Snapshot()

	names := make(domain.Column, len(entries))
	counts := make(domain.Column, len(entries))
	for i, e := range entries {
		names[i] = e.Name
		counts[i] = strconv.Itoa(e.Count)
	}

	builder := domain.NewEmbed("Bot Statistics")
	if len(entries) == 0 {
		builder.AddField("Commands", "none yet", false)
	} else {
		builder.AddColumn("Command", names, true).AddColumn("Count", counts, true)
	}

	embed, err := builder.
		AddField("Runtime", fmt.Sprintf(
			runtimeTemplate,
			data[2].Value.Uint64()/kb,
			runtime.NumGoroutine(),
			data[0].Value.Uint64()/kb,
			data[1].Value.Uint64()/kb,
			time.Since(s.started).Round(time.Second),
			runtime.Version(), goos, goarch,
		), false).
		Build()
	if err != nil {
		return s.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	err = s.sender.SendReply(ctx, cmd, domain.Reply{Embed: &embed})
	if err != nil {
		return fmt.Errorf("failed to send stats: %w", err)
	}

	return nil
}

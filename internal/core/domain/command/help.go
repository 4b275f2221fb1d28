package command

import (
	"context"
	"fmt"
	"strings"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"
)

type Help struct {
	registry port.CommandRegistry
	sender   port.ReplySender
	prefix   string
}

// NewHelp lists the commands of registry. prefix is the text-message prefix advertised next
// to the slash commands, it may be empty.
func NewHelp(registry port.CommandRegistry, sender port.ReplySender, prefix string) *Help {
	return &Help{registry: registry, sender: sender, prefix: prefix}
}

func (h *Help) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "help",
		Description: "List available commands",
	}
}

func (h *Help) Respond(ctx context.Context, cmd *domain.Command) error {
	sb := &strings.Builder{}

	for _, info := range h.registry.ListCommands() {
		usage := "/" + info.Name
		if info.SubOption != "" {
			usage += " " + info.SubOption
		}
		for _, arg := range info.Args {
			if arg.Required {
				usage += " <" + arg.Name + ">"
			} else {
				usage += " [" + arg.Name + "]"
			}
		}

		_, err := fmt.Fprintf(sb, "`%s` %s", usage, info.Description)
		if err != nil {
			return fmt.Errorf("failed to construct response: %w", err)
		}

		if len(info.Aliases) > 0 {
			_, err = fmt.Fprintf(sb, " (aliases: %s)", strings.Join(info.Aliases, ", "))
			if err != nil {
				return fmt.Errorf("failed to construct response: %w", err)
			}
		}

		sb.WriteByte('\n')
	}

	builder := domain.NewEmbed("Commands").SetDescription(sb.String())
	if h.prefix != "" {
		builder.SetFooter(fmt.Sprintf("Text messages work too, e.g. %sping", h.prefix))
	}

	embed, err := builder.Build()
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	err = h.sender.SendReply(ctx, cmd, domain.Reply{Embed: &embed})
	if err != nil {
		return fmt.Errorf("failed to send help: %w", err)
	}

	return nil
}

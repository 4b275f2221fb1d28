package handler

import (
	"context"
	"sort"
	"strconv"
	"tbot/internal/core/domain"
	"tbot/internal/core/domain/command"
	"tbot/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type Submitter interface {
	Submit(ctx context.Context, cmd *domain.Command)
}

type Telegram struct {
	commands Submitter
	registry port.CommandRegistry
}

func NewTelegram(commands Submitter, registry port.CommandRegistry) *Telegram {
	return &Telegram{commands: commands, registry: registry}
}

// Handle matches bot.HandlerFunc.
func (t *Telegram) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	cmd, ok := command.Parse(text, t.registry, "/")
	if !ok {
		log.Debug().Int64("chatId", msg.Chat.ID).Msg("ignoring message without command")
		return
	}

	cmd.Origin = domain.Origin{
		Platform:  domain.Telegram,
		ChannelID: strconv.FormatInt(msg.Chat.ID, 10),
		MessageID: strconv.Itoa(msg.ID),
	}
	if msg.Chat.Type != models.ChatTypePrivate {
		cmd.Origin.GuildID = cmd.Origin.ChannelID
	}
	if msg.From != nil {
		cmd.User = telegramUser(msg.From)
	}

	t.commands.Submit(ctx, cmd)
}

func telegramUser(u *models.User) domain.User {
	tag := u.FirstName
	if u.Username != "" {
		tag = "@" + u.Username
	}

	return domain.User{
		ID:   strconv.FormatInt(u.ID, 10),
		Name: u.FirstName,
		Tag:  tag,
	}
}

type CommandMenuSetter interface {
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

// TelegramMenu lists one menu entry per command name and alias.
func TelegramMenu(registry port.CommandRegistry) []models.BotCommand {
	seen := make(map[string]bool)
	var menu []models.BotCommand

	add := func(name, description string) {
		if seen[name] || !telegramCommandName(name) {
			return
		}
		seen[name] = true
		menu = append(menu, models.BotCommand{Command: name, Description: description})
	}

	for _, info := range registry.ListCommands() {
		description := info.Description
		if info.SubOption != "" && info.GroupDescription != "" {
			description = info.GroupDescription
		}
		add(info.Name, description)
		for _, alias := range info.Aliases {
			add(alias, description)
		}
	}

	sort.Slice(menu, func(i, j int) bool { return menu[i].Command < menu[j].Command })
	return menu
}

func RegisterTelegramCommands(ctx context.Context, setter CommandMenuSetter, registry port.CommandRegistry) error {
	menu := TelegramMenu(registry)

	_, err := setter.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: menu})
	if err != nil {
		return err
	}

	log.Info().Int("commands", len(menu)).Msg("telegram command menu updated")
	return nil
}

func telegramCommandName(name string) bool {
	if name == "" || len(name) > 32 {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

package command

import (
	"context"
	"errors"
	"fmt"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"
	"time"
)

const infoDateLayout = "Jan 2, 2006 15:04 MST"

var errNoUser = errors.New("no user attached to command")

type UserInfo struct {
	sender port.ReplySender
}

func NewUserInfo(sender port.ReplySender) *UserInfo {
	return &UserInfo{sender: sender}
}

func (u *UserInfo) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "userinfo",
		Description: "Show information about yourself",
		Aliases:     []string{"user_info"},
	}
}

func (u *UserInfo) Respond(ctx context.Context, cmd *domain.Command) error {
	user := cmd.User
	if user.ID == "" {
		return u.sender.NotifyAndReturnError(ctx, errNoUser, cmd)
	}

	title := user.Tag
	if title == "" {
		title = user.Name
	}

	embed, err := domain.NewEmbed(title).
		SetThumbnail(user.AvatarURL).
		AddField("Creation Date", formatDate(user.CreatedAt), false).
		AddField("User ID", user.ID, false).
		Build()
	if err != nil {
		return u.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	err = u.sender.SendReply(ctx, cmd, domain.Reply{Embed: &embed})
	if err != nil {
		return fmt.Errorf("failed to send user info: %w", err)
	}

	return nil
}

const defaultGuildIcon = "https://cdn.discordapp.com/embed/avatars/0.png"

type ServerInfo struct {
	directory port.GuildDirectory
	sender    port.ReplySender
}

func NewServerInfo(directory port.GuildDirectory, sender port.ReplySender) *ServerInfo {
	return &ServerInfo{directory: directory, sender: sender}
}

func (s *ServerInfo) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "serverinfo",
		Description: "Show information about this server",
		Aliases:     []string{"server_info"},
	}
}

func (s *ServerInfo) Respond(ctx context.Context, cmd *domain.Command) error {
	guild, err := s.directory.GuildInfo(ctx, cmd.Origin)
	if err != nil {
		return s.sender.NotifyAndReturnError(ctx, fmt.Errorf("error looking up server: %w", err), cmd)
	}

	icon := guild.IconURL
	if icon == "" {
		icon = defaultGuildIcon
	}

	description := guild.Description
	if description == "" {
		description = "N/A"
	}

	embed, err := domain.NewEmbed(guild.Name).
		SetThumbnail(icon).
		AddField("Server Description", description, false).
		AddField("Creation Date", formatDate(guild.CreatedAt), false).
		AddField("Server ID", guild.ID, false).
		Build()
	if err != nil {
		return s.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	err = s.sender.SendReply(ctx, cmd, domain.Reply{Embed: &embed})
	if err != nil {
		return fmt.Errorf("failed to send server info: %w", err)
	}

	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(infoDateLayout)
}

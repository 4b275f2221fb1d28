package handler

import (
	"context"
	"sort"
	"strings"
	"tbot/internal/core/domain"
	"tbot/internal/core/domain/command"
	"tbot/internal/core/port"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand,
		options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Discord turns gateway events into commands. ctx is handed to every dispatched command
// since discordgo handlers carry none.
type Discord struct {
	ctx      context.Context
	commands Submitter
	registry port.CommandRegistry
	prefix   string
	guildID  string
}

func NewDiscord(ctx context.Context, commands Submitter, registry port.CommandRegistry, prefix, guildID string) *Discord {
	return &Discord{
		ctx:      ctx,
		commands: commands,
		registry: registry,
		prefix:   prefix,
		guildID:  guildID,
	}
}

func (d *Discord) OnReady(s *discordgo.Session, r *discordgo.Ready) {
	var appID string
	switch {
	case r.Application != nil && r.Application.ID != "":
		appID = r.Application.ID
	case r.User != nil:
		appID = r.User.ID
	}
	log.Info().Str("appId", appID).Int("guilds", len(r.Guilds)).Msg("discord session ready")

	if err := d.RegisterCommands(s, appID); err != nil {
		log.Err(err).Msg("failed to register slash commands")
	}
}

// RegisterCommands replaces the application's slash commands, scoped to the configured
// guild when there is one.
func (d *Discord) RegisterCommands(registrar CommandRegistrar, appID string) error {
	defs := SlashCommands(d.registry)

	registered, err := registrar.ApplicationCommandBulkOverwrite(appID, d.guildID, defs)
	if err != nil {
		return err
	}

	scope := "global"
	if d.guildID != "" {
		scope = "guild " + d.guildID
	}
	log.Info().Int("commands", len(registered)).Str("scope", scope).Msg("slash commands registered")

	return nil
}

func (d *Discord) OnInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmd := InteractionCommand(i.Interaction)
	cmd.Name = d.registry.Resolve(cmd.Name)

	d.commands.Submit(d.ctx, cmd)
}

func (d *Discord) OnMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || d.prefix == "" {
		return
	}

	cmd, ok := command.Parse(m.Content, d.registry, d.prefix)
	if !ok {
		return
	}

	cmd.Origin = domain.Origin{
		Platform:  domain.Discord,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
	}
	cmd.User = discordUser(m.Author)

	d.commands.Submit(d.ctx, cmd)
}

// InteractionCommand converts a slash command interaction. A sub command becomes the
// sub-option, string options become arguments in declaration order.
func InteractionCommand(i *discordgo.Interaction) *domain.Command {
	data := i.ApplicationCommandData()

	cmd := &domain.Command{
		Name: data.Name,
		Origin: domain.Origin{
			Platform:         domain.Discord,
			GuildID:          i.GuildID,
			ChannelID:        i.ChannelID,
			InteractionID:    i.ID,
			InteractionToken: i.Token,
			AppID:            i.AppID,
		},
	}

	options := data.Options
	if len(options) > 0 && options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		cmd.SubOption = options[0].Name
		options = options[0].Options
	}

	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			cmd.Args = append(cmd.Args, opt.StringValue())
		}
	}

	switch {
	case i.Member != nil && i.Member.User != nil:
		cmd.User = discordUser(i.Member.User)
	case i.User != nil:
		cmd.User = discordUser(i.User)
	}

	return cmd
}

func discordUser(u *discordgo.User) domain.User {
	created, err := discordgo.SnowflakeTimestamp(u.ID)
	if err != nil {
		log.Debug().Err(err).Str("userId", u.ID).Msg("could not decode user creation date")
	}

	return domain.User{
		ID:        u.ID,
		Name:      u.Username,
		Tag:       u.String(),
		AvatarURL: u.AvatarURL("256"),
		CreatedAt: created,
	}
}

// SlashCommands builds one application command per command name and alias. Handlers sharing
// a name become sub commands.
func SlashCommands(registry port.CommandRegistry) []*discordgo.ApplicationCommand {
	byName := make(map[string]*discordgo.ApplicationCommand)
	var aliases []domain.CommandInfo

	for _, info := range registry.ListCommands() {
		def, ok := byName[info.Name]
		if !ok {
			def = &discordgo.ApplicationCommand{
				Name:        info.Name,
				Description: info.Description,
				Type:        discordgo.ChatApplicationCommand,
			}
			byName[info.Name] = def
		}

		if info.SubOption == "" {
			def.Options = stringOptions(info.Args)
		} else {
			if info.GroupDescription != "" {
				def.Description = info.GroupDescription
			}
			def.Options = append(def.Options, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        info.SubOption,
				Description: info.Description,
				Options:     stringOptions(info.Args),
			})
		}

		if len(info.Aliases) > 0 {
			aliases = append(aliases, info)
		}
	}

	for _, info := range aliases {
		for _, alias := range info.Aliases {
			alias = strings.ToLower(alias)
			if _, taken := byName[alias]; taken {
				continue
			}
			def := *byName[info.Name]
			def.Name = alias
			byName[alias] = &def
		}
	}

	defs := make([]*discordgo.ApplicationCommand, 0, len(byName))
	for _, def := range byName {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	return defs
}

func stringOptions(args []domain.Argument) []*discordgo.ApplicationCommandOption {
	var opts []*discordgo.ApplicationCommandOption
	for _, arg := range args {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        arg.Name,
			Description: arg.Description,
			Required:    arg.Required,
		})
	}
	return opts
}

package sender

import (
	"context"
	"fmt"
	"sync"
	"tbot/internal/core/domain"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type DiscordSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse,
		options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
}

const (
	DiscordMessageLimit = 2000
	// originalResponse addresses the message an interaction was answered with.
	originalResponse = "@original"
	// interactionTTL is how long Discord accepts follow-ups for an interaction token.
	interactionTTL = 15 * time.Minute
	typingRepeat   = 8 * time.Second
)

type ackState int

const (
	unanswered ackState = iota
	deferred
	answered
)

type interactionAck struct {
	mu      sync.Mutex
	state   ackState
	created time.Time
}

type Discord struct {
	session DiscordSession
	acks    sync.Map
}

func NewDiscord(session DiscordSession) *Discord {
	return &Discord{session: session}
}

func interaction(origin domain.Origin) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        origin.InteractionID,
		AppID:     origin.AppID,
		Token:     origin.InteractionToken,
		ChannelID: origin.ChannelID,
		GuildID:   origin.GuildID,
	}
}

// ack returns the locked acknowledgement state of an interaction. Stale entries are dropped.
func (d *Discord) ack(id string) *interactionAck {
	now := time.Now()
	d.acks.Range(func(key, value any) bool {
		if now.Sub(value.(*interactionAck).created) > interactionTTL {
			d.acks.Delete(key)
		}
		return true
	})

	v, _ := d.acks.LoadOrStore(id, &interactionAck{created: now})
	a := v.(*interactionAck)
	a.mu.Lock()
	return a
}

func (d *Discord) SendReply(_ context.Context, cmd *domain.Command, reply domain.Reply) error {
	_, err := d.send(cmd.Origin, reply)
	return err
}

func (d *Discord) SendPlaceholder(_ context.Context, cmd *domain.Command, text string) (domain.MessageHandle, error) {
	id, err := d.send(cmd.Origin, domain.Reply{Content: text})
	if err != nil {
		return domain.MessageHandle{}, err
	}
	return domain.MessageHandle{Origin: cmd.Origin, MessageID: id}, nil
}

// send delivers a reply and returns the id of its first message. Interactions are answered
// once, later replies become follow-ups.
func (d *Discord) send(origin domain.Origin, reply domain.Reply) (string, error) {
	contents := pack([]string{reply.Content}, DiscordMessageLimit)
	if len(contents) == 0 {
		contents = []string{""}
	}
	embeds := discordEmbeds(reply.Embed)

	if !origin.IsInteraction() {
		var first string
		for i, content := range contents {
			data := &discordgo.MessageSend{Content: content}
			if i == 0 {
				data.Embeds = embeds
				if origin.MessageID != "" {
					data.Reference = &discordgo.MessageReference{
						MessageID: origin.MessageID,
						ChannelID: origin.ChannelID,
						GuildID:   origin.GuildID,
					}
				}
			}

			msg, err := d.session.ChannelMessageSendComplex(origin.ChannelID, data)
			if err != nil {
				return "", fmt.Errorf("failed to send message: %w", err)
			}
			if i == 0 {
				first = msg.ID
			}
		}
		return first, nil
	}

	in := interaction(origin)
	a := d.ack(origin.InteractionID)
	defer a.mu.Unlock()

	var first string
	for i, content := range contents {
		var msgEmbeds []*discordgo.MessageEmbed
		if i == 0 {
			msgEmbeds = embeds
		}

		switch a.state {
		case unanswered:
			err := d.session.InteractionRespond(in, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{Content: content, Embeds: msgEmbeds},
			})
			if err != nil {
				return "", fmt.Errorf("failed to respond to interaction: %w", err)
			}
			if i == 0 {
				first = originalResponse
			}
		case deferred:
			_, err := d.session.InteractionResponseEdit(in, &discordgo.WebhookEdit{
				Content: &content,
				Embeds:  &msgEmbeds,
			})
			if err != nil {
				return "", fmt.Errorf("failed to edit deferred response: %w", err)
			}
			if i == 0 {
				first = originalResponse
			}
		case answered:
			msg, err := d.session.FollowupMessageCreate(in, true, &discordgo.WebhookParams{
				Content: content,
				Embeds:  msgEmbeds,
			})
			if err != nil {
				return "", fmt.Errorf("failed to send follow-up: %w", err)
			}
			if i == 0 {
				first = msg.ID
			}
		}
		a.state = answered
	}

	return first, nil
}

func (d *Discord) EditReply(_ context.Context, handle domain.MessageHandle, reply domain.Reply) error {
	content := reply.Content
	if contents := pack([]string{content}, DiscordMessageLimit); len(contents) > 0 {
		content = contents[0]
	}
	embeds := discordEmbeds(reply.Embed)

	if handle.Origin.IsInteraction() && handle.MessageID == originalResponse {
		_, err := d.session.InteractionResponseEdit(interaction(handle.Origin), &discordgo.WebhookEdit{
			Content: &content,
			Embeds:  &embeds,
		})
		if err != nil {
			return fmt.Errorf("failed to edit interaction response: %w", err)
		}
		return nil
	}

	_, err := d.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      handle.MessageID,
		Channel: handle.Origin.ChannelID,
		Content: &content,
		Embeds:  &embeds,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}

// SendChatAction defers interactions so slow handlers stay within Discord's acknowledgement
// window. Plain messages get a typing indicator until ctx is done.
func (d *Discord) SendChatAction(ctx context.Context, cmd *domain.Command, _ domain.Action) {
	origin := cmd.Origin

	if origin.IsInteraction() {
		a := d.ack(origin.InteractionID)
		defer a.mu.Unlock()

		if a.state != unanswered {
			return
		}

		err := d.session.InteractionRespond(interaction(origin), &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		})
		if err != nil {
			log.Err(err).Str("interactionId", origin.InteractionID).Msg("error deferring interaction")
			return
		}
		a.state = deferred
		return
	}

	for {
		if err := d.session.ChannelTyping(origin.ChannelID); err != nil {
			log.Err(err).Str("channelId", origin.ChannelID).Msg("error sending typing indicator")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(typingRepeat):
		}
	}
}

func (d *Discord) NotifyAndReturnError(ctx context.Context, err error, cmd *domain.Command) error {
	log.Err(err).Str("requestId", cmd.ID).Str("command", cmd.Name).Msg("notifying user about failure")

	embed, buildErr := domain.NewEmbed("Something went wrong").
		SetColor(domain.ColorRed).
		SetDescription(errorText(err)).
		Build()
	if buildErr != nil {
		return notifyFailed(err, buildErr)
	}

	sendErr := d.SendReply(ctx, cmd, domain.Reply{Embed: &embed})
	if sendErr != nil {
		return notifyFailed(err, sendErr)
	}

	return err
}

func (d *Discord) GuildInfo(_ context.Context, origin domain.Origin) (domain.Guild, error) {
	if origin.GuildID == "" {
		return domain.Guild{}, fmt.Errorf("%w: server info in direct messages", domain.ErrUnsupported)
	}

	g, err := d.session.Guild(origin.GuildID)
	if err != nil {
		return domain.Guild{}, fmt.Errorf("failed to get guild: %w", err)
	}

	created, err := discordgo.SnowflakeTimestamp(g.ID)
	if err != nil {
		log.Debug().Err(err).Str("guildId", g.ID).Msg("could not decode guild creation date")
	}

	return domain.Guild{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		IconURL:     g.IconURL("256"),
		CreatedAt:   created,
	}, nil
}

const emptyField = "\u200b"

func discordEmbeds(e *domain.Embed) []*discordgo.MessageEmbed {
	if e == nil {
		return nil
	}

	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       int(e.Color),
	}
	if e.Thumbnail != "" {
		out.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail}
	}
	if e.Image != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: e.Image}
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}

	for _, f := range e.Fields {
		name, value := f.Name, f.Value
		if name == "" {
			name = emptyField
		}
		if value == "" {
			value = emptyField
		}
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: f.Inline})
	}

	return []*discordgo.MessageEmbed{out}
}

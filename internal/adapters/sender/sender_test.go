package sender

import (
	"tbot/internal/core/domain"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRouter_RoutesByPlatform(t *testing.T) {
	session := new(MockSession)
	mb := new(MockBot)

	router := NewRouter()
	router.Add(domain.Discord, NewDiscord(session))
	router.Add(domain.Telegram, NewTelegram(mb))

	session.On("ChannelMessageSendComplex", "20", mock.Anything).Return(&discordgo.Message{ID: "1"}, nil).Once()
	mb.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *bot.SendMessageParams) bool {
		return p.Text == "hi"
	})).Return(&models.Message{ID: 1}, nil).Once()

	require.NoError(t, router.SendReply(t.Context(), prefixCommand(), domain.Reply{Content: "hi"}))
	require.NoError(t, router.SendReply(t.Context(), telegramCommand(), domain.Reply{Content: "hi"}))

	session.AssertExpectations(t)
	mb.AssertExpectations(t)
}

func TestRouter_UnknownPlatform(t *testing.T) {
	router := NewRouter()
	cmd := &domain.Command{Origin: domain.Origin{Platform: "irc"}}

	err := router.SendReply(t.Context(), cmd, domain.Reply{Content: "hi"})
	require.ErrorIs(t, err, domain.ErrUnsupported)

	_, err = router.GuildInfo(t.Context(), cmd.Origin)
	require.ErrorIs(t, err, domain.ErrUnsupported)

	err = router.NotifyAndReturnError(t.Context(), errServerDown, cmd)
	require.ErrorIs(t, err, errServerDown)
	require.ErrorIs(t, err, domain.ErrSendingReplyFailed)
}

var errServerDown = &domain.APIError{Kind: domain.ErrTransport, URL: "u", Status: 503, Detail: "down"}

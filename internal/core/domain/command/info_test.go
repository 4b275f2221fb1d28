package command

import (
	"tbot/internal/core/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserInfo_Respond(t *testing.T) {
	sender := &MockReplySender{}
	cmd := &domain.Command{
		Name: "userinfo",
		User: domain.User{
			ID:        "80351110224678912",
			Name:      "nelly",
			Tag:       "nelly#1337",
			AvatarURL: "https://cdn.discordapp.com/avatars/1/a.png",
			CreatedAt: time.Date(2015, 5, 13, 9, 30, 0, 0, time.UTC),
		},
	}

	err := NewUserInfo(sender).Respond(t.Context(), cmd)
	require.NoError(t, err)

	embed := sender.LastEmbed()
	require.NotNil(t, embed)
	assert.Equal(t, "nelly#1337", embed.Title)
	assert.Equal(t, "https://cdn.discordapp.com/avatars/1/a.png", embed.Thumbnail)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "May 13, 2015 09:30 UTC", embed.Fields[0].Value)
	assert.Equal(t, "80351110224678912", embed.Fields[1].Value)
}

func TestUserInfo_NoUser(t *testing.T) {
	sender := &MockReplySender{}

	err := NewUserInfo(sender).Respond(t.Context(), &domain.Command{Name: "userinfo"})
	require.ErrorIs(t, err, errNoUser)
	assert.Empty(t, sender.Replies)
}

func TestServerInfo_Respond(t *testing.T) {
	type TestCase struct {
		description string
		guild       domain.Guild
		wantIcon    string
		wantDesc    string
	}

	testCases := []TestCase{
		{
			description: "full guild",
			guild: domain.Guild{
				ID: "42", Name: "Corgi Club", Description: "short legs only",
				IconURL: "https://cdn.discordapp.com/icons/42/x.png", CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			wantIcon: "https://cdn.discordapp.com/icons/42/x.png",
			wantDesc: "short legs only",
		},
		{
			description: "defaults",
			guild:       domain.Guild{ID: "43", Name: "Bare"},
			wantIcon:    defaultGuildIcon,
			wantDesc:    "N/A",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			sender := &MockReplySender{}
			directory := &MockGuildDirectory{guild: testCase.guild}

			err := NewServerInfo(directory, sender).Respond(t.Context(), &domain.Command{Name: "serverinfo"})
			require.NoError(t, err)

			embed := sender.LastEmbed()
			require.NotNil(t, embed)
			assert.Equal(t, testCase.guild.Name, embed.Title)
			assert.Equal(t, testCase.wantIcon, embed.Thumbnail)
			assert.Equal(t, testCase.wantDesc, embed.Fields[0].Value)
			assert.Equal(t, testCase.guild.ID, embed.Fields[2].Value)
		})
	}
}

func TestServerInfo_Unsupported(t *testing.T) {
	sender := &MockReplySender{}
	directory := &MockGuildDirectory{err: domain.ErrUnsupported}

	err := NewServerInfo(directory, sender).Respond(t.Context(), &domain.Command{Name: "serverinfo"})
	require.ErrorIs(t, err, domain.ErrUnsupported)
	assert.Len(t, sender.Errors, 1)
}

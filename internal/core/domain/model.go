package domain

import "time"

type Platform string

const (
	Discord  Platform = "discord"
	Telegram Platform = "telegram"
)

// Origin addresses the inbound event a command was parsed from.
type Origin struct {
	Platform         Platform
	GuildID          string
	ChannelID        string
	MessageID        string
	InteractionID    string
	InteractionToken string
	AppID            string
}

// IsInteraction reports whether the command arrived as a platform interaction (slash command)
// rather than a plain text message.
func (o Origin) IsInteraction() bool {
	return o.InteractionID != "" && o.InteractionToken != ""
}

type User struct {
	ID        string
	Name      string
	Tag       string
	AvatarURL string
	CreatedAt time.Time
}

type Command struct {
	ID        string
	Name      string
	SubOption string
	Args      []string
	Origin    Origin
	User      User
}

// Arg returns the i-th argument or an empty string.
func (c *Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

type Argument struct {
	Name        string
	Description string
	Required    bool
}

// CommandInfo describes how a handler is routed and presented to users.
type CommandInfo struct {
	Name             string
	SubOption        string
	Description      string
	GroupDescription string
	Aliases          []string
	Args             []Argument
}

// MessageHandle refers to a message sent earlier in the same handler invocation.
type MessageHandle struct {
	Origin    Origin
	MessageID string
}

type Reply struct {
	Content string
	Embed   *Embed
}

type Action string

const (
	Typing       Action = "typing"
	SendingPhoto Action = "sending_photo"
)

type Guild struct {
	ID          string
	Name        string
	Description string
	IconURL     string
	CreatedAt   time.Time
}

type Prompt struct {
	Prompt string
}

type ModelResponse struct {
	Response string
	Metadata ResponseMetadata
}

type ResponseMetadata struct {
	Model            string
	CompletionTokens int
	TotalTokens      int
}

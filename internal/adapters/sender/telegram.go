package sender

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"tbot/internal/core/domain"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

//go:generate mockery --name TelegramBot

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
}

const (
	TelegramMessageLimit = 4096
	TelegramCaptionLimit = 1024
)

type Telegram struct {
	bot TelegramBot
}

func NewTelegram(bot TelegramBot) *Telegram {
	return &Telegram{bot: bot}
}

func (s *Telegram) SendReply(ctx context.Context, cmd *domain.Command, reply domain.Reply) error {
	chatID, messageID, err := telegramIDs(cmd.Origin.ChannelID, cmd.Origin.MessageID)
	if err != nil {
		return err
	}

	blocks := renderTelegram(reply)

	if reply.Embed != nil && reply.Embed.Image != "" {
		caption := strings.Join(blocks, "\n")
		params := &bot.SendPhotoParams{
			ChatID:          chatID,
			Photo:           &models.InputFileString{Data: reply.Embed.Image},
			ReplyParameters: replyTo(chatID, messageID),
		}
		if utf8.RuneCountInString(caption) <= TelegramCaptionLimit {
			params.Caption = caption
			params.ParseMode = models.ParseModeHTML
			blocks = nil
		}

		_, err = s.bot.SendPhoto(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to send photo: %w", err)
		}

		messageID = 0
	}

	for i, chunk := range pack(blocks, TelegramMessageLimit) {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      chunk,
			ParseMode: models.ParseModeHTML,
		}
		if i == 0 {
			params.ReplyParameters = replyTo(chatID, messageID)
		}

		_, err = s.bot.SendMessage(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to send message chunk %d: %w", i, err)
		}
	}

	return nil
}

func (s *Telegram) SendPlaceholder(ctx context.Context, cmd *domain.Command, text string) (domain.MessageHandle, error) {
	chatID, messageID, err := telegramIDs(cmd.Origin.ChannelID, cmd.Origin.MessageID)
	if err != nil {
		return domain.MessageHandle{}, err
	}

	msg, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            renderContent(text),
		ParseMode:       models.ParseModeHTML,
		ReplyParameters: replyTo(chatID, messageID),
	})
	if err != nil {
		return domain.MessageHandle{}, fmt.Errorf("failed to send placeholder: %w", err)
	}

	return domain.MessageHandle{Origin: cmd.Origin, MessageID: strconv.Itoa(msg.ID)}, nil
}

func (s *Telegram) EditReply(ctx context.Context, handle domain.MessageHandle, reply domain.Reply) error {
	chatID, messageID, err := telegramIDs(handle.Origin.ChannelID, handle.MessageID)
	if err != nil {
		return err
	}

	chunks := pack(renderTelegram(reply), TelegramMessageLimit)
	if len(chunks) == 0 {
		return nil
	}

	_, err = s.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      chunks[0],
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}

	for _, chunk := range chunks[1:] {
		_, err = s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      chunk,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			return fmt.Errorf("failed to send message chunk: %w", err)
		}
	}

	return nil
}

const ChatActionRepeatSeconds = 5

func (s *Telegram) SendChatAction(ctx context.Context, cmd *domain.Command, action domain.Action) {
	chatID, err := strconv.ParseInt(cmd.Origin.ChannelID, 10, 64)
	if err != nil {
		log.Err(err).Str("chatID", cmd.Origin.ChannelID).Msg("invalid chat id for action")
		return
	}

	var chatAction models.ChatAction
	switch action {
	case domain.SendingPhoto:
		chatAction = models.ChatActionUploadPhoto
	default:
		chatAction = models.ChatActionTyping
	}

	log.Debug().Int64("chatID", chatID).Msg("starting action routine")
	for {
		log.Debug().Int64("chatID", chatID).Msg("transmitting action")
		_, err := s.bot.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: chatAction,
		})
		if err != nil {
			log.Err(err).Msg("error sending chat action")
			return
		}

		select {
		case <-ctx.Done():
			log.Debug().Int64("chatID", chatID).Msg("done, stopping action routine")
			return
		case <-time.After(ChatActionRepeatSeconds * time.Second):
		}
	}
}

func (s *Telegram) NotifyAndReturnError(ctx context.Context, err error, cmd *domain.Command) error {
	log.Err(err).Str("requestId", cmd.ID).Str("command", cmd.Name).Msg("notifying user about failure")

	sendErr := s.SendReply(ctx, cmd, domain.Reply{Content: errorText(err)})
	if sendErr != nil {
		return notifyFailed(err, sendErr)
	}

	return err
}

// GuildInfo describes the group chat a command came from. Telegram does not expose a
// creation date.
func (s *Telegram) GuildInfo(ctx context.Context, origin domain.Origin) (domain.Guild, error) {
	chatID, err := strconv.ParseInt(origin.ChannelID, 10, 64)
	if err != nil {
		return domain.Guild{}, fmt.Errorf("invalid chat id %q: %w", origin.ChannelID, err)
	}

	chat, err := s.bot.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return domain.Guild{}, fmt.Errorf("failed to get chat: %w", err)
	}

	if chat.Type == models.ChatTypePrivate {
		return domain.Guild{}, fmt.Errorf("%w: server info in private chats", domain.ErrUnsupported)
	}

	return domain.Guild{
		ID:          strconv.FormatInt(chat.ID, 10),
		Name:        chat.Title,
		Description: chat.Description,
	}, nil
}

func telegramIDs(chat, message string) (int64, int, error) {
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid chat id %q: %w", chat, err)
	}

	if message == "" {
		return chatID, 0, nil
	}

	messageID, err := strconv.Atoi(message)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid message id %q: %w", message, err)
	}

	return chatID, messageID, nil
}

func replyTo(chatID int64, messageID int) *models.ReplyParameters {
	if messageID == 0 {
		return nil
	}
	return &models.ReplyParameters{MessageID: messageID, ChatID: chatID}
}

// renderTelegram renders a reply as HTML blocks. Every block is a complete element so blocks
// may be split across messages.
func renderTelegram(reply domain.Reply) []string {
	var blocks []string

	if reply.Content != "" {
		blocks = append(blocks, renderContent(reply.Content))
	}

	e := reply.Embed
	if e == nil {
		return blocks
	}

	if e.Title != "" {
		blocks = append(blocks, "<b>"+html.EscapeString(expandShortcodes(e.Title))+"</b>")
	}
	if e.Description != "" {
		blocks = append(blocks, renderContent(e.Description))
	}

	for i := 0; i < len(e.Fields); i++ {
		f := e.Fields[i]
		if !f.Column {
			name := html.EscapeString(expandShortcodes(strings.ReplaceAll(f.Name, "**", "")))
			blocks = append(blocks, "<b>"+name+"</b>\n"+renderContent(f.Value))
			continue
		}

		// Adjacent columns become one table.
		j := i
		for j < len(e.Fields) && e.Fields[j].Column {
			j++
		}
		blocks = append(blocks, renderTable(e.Fields[i:j]))
		i = j - 1
	}

	if e.Footer != "" {
		blocks = append(blocks, "<i>"+html.EscapeString(e.Footer)+"</i>")
	}

	return blocks
}

func renderTable(cols []domain.Field) string {
	cells := make([][]string, len(cols))
	widths := make([]int, len(cols))
	rows := 0

	for c, col := range cols {
		values := strings.Split(strings.TrimSuffix(col.Value, "\n"), "\n")
		if col.Rows == 0 {
			values = nil
		}
		cells[c] = append([]string{strings.Trim(col.Name, "*-")}, values...)
		rows = max(rows, len(cells[c]))
		for _, v := range cells[c] {
			widths[c] = max(widths[c], utf8.RuneCountInString(v))
		}
	}

	sb := &strings.Builder{}
	sb.WriteString("<pre>")
	for r := range rows {
		for c := range cols {
			var v string
			if r < len(cells[c]) {
				v = cells[c][r]
			}
			if c < len(cols)-1 {
				v += strings.Repeat(" ", widths[c]-utf8.RuneCountInString(v)+2)
			}
			sb.WriteString(html.EscapeString(v))
		}
		if r < rows-1 {
			sb.WriteByte('\n')
		}
	}
	sb.WriteString("</pre>")

	return sb.String()
}

// renderContent escapes text for HTML and turns ``` fenced sections into <pre> blocks.
func renderContent(text string) string {
	parts := strings.Split(text, "```")
	sb := &strings.Builder{}

	for i, part := range parts {
		// Odd parts are inside a fence, an unterminated fence is left as text.
		if i%2 == 1 && i < len(parts)-1 {
			sb.WriteString("<pre>" + html.EscapeString(part) + "</pre>")
			continue
		}
		if i%2 == 1 {
			sb.WriteString(html.EscapeString("```"))
		}
		sb.WriteString(renderInline(part))
	}

	return sb.String()
}

// renderInline escapes text and converts **bold** markers.
func renderInline(text string) string {
	parts := strings.Split(expandShortcodes(text), "**")
	sb := &strings.Builder{}

	for i, part := range parts {
		escaped := html.EscapeString(part)
		switch {
		case i%2 == 1 && i < len(parts)-1:
			sb.WriteString("<b>" + escaped + "</b>")
		case i%2 == 1:
			sb.WriteString("**" + escaped)
		default:
			sb.WriteString(escaped)
		}
	}

	return sb.String()
}

// pack joins blocks with blank lines into messages of at most limit runes. A single block
// longer than limit is cut into pieces by splitHTML.
func pack(blocks []string, limit int) []string {
	var out []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, b := range blocks {
		n := utf8.RuneCountInString(b)

		if n > limit {
			flush()
			out = append(out, splitHTML(b, limit)...)
			continue
		}

		sep := 0
		if curLen > 0 {
			sep = 2
		}
		if curLen+sep+n > limit {
			flush()
			sep = 0
		}
		if sep > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(b)
		curLen += sep + n
	}
	flush()

	return out
}

type openTag struct {
	name string
	tag  string
}

// splitHTML cuts an HTML block into pieces of at most limit runes. Cuts fall between tags,
// entities and characters only. Tags still open at a cut are closed at the end of the piece
// and reopened at the start of the next one.
func splitHTML(block string, limit int) []string {
	var out []string
	var open []openTag
	var cur strings.Builder
	curLen := 0
	// fresh is true while the piece holds nothing but reopened tags.
	fresh := true

	closing := func(tags []openTag) string {
		var sb strings.Builder
		for i := len(tags) - 1; i >= 0; i-- {
			sb.WriteString("</" + tags[i].name + ">")
		}
		return sb.String()
	}

	for _, tok := range htmlTokens(block) {
		name, isClose, isTag := parseTag(tok)

		after := open
		switch {
		case isTag && isClose:
			for i := len(open) - 1; i >= 0; i-- {
				if open[i].name == name {
					after = open[:i:i]
					break
				}
			}
		case isTag:
			after = append(open[:len(open):len(open)], openTag{name: name, tag: tok})
		}

		need := curLen + utf8.RuneCountInString(tok) + utf8.RuneCountInString(closing(after))
		if need > limit && !fresh {
			out = append(out, cur.String()+closing(open))
			cur.Reset()
			curLen = 0
			for _, t := range open {
				cur.WriteString(t.tag)
				curLen += utf8.RuneCountInString(t.tag)
			}
			fresh = true
		}

		cur.WriteString(tok)
		curLen += utf8.RuneCountInString(tok)
		open = after
		if !isTag {
			fresh = false
		}
	}

	if !fresh {
		out = append(out, cur.String()+closing(open))
	}

	return out
}

// htmlTokens splits s into tags, entities and single characters.
func htmlTokens(s string) []string {
	var tokens []string

	for len(s) > 0 {
		end := 0
		switch s[0] {
		case '<':
			end = strings.IndexByte(s, '>') + 1
		case '&':
			if semi := strings.IndexByte(s, ';'); semi > 0 && semi <= 10 {
				end = semi + 1
			}
		}
		if end <= 0 {
			_, end = utf8.DecodeRuneInString(s)
		}

		tokens = append(tokens, s[:end])
		s = s[end:]
	}

	return tokens
}

// parseTag reports whether tok is a tag and returns its element name.
func parseTag(tok string) (name string, isClose, isTag bool) {
	if len(tok) < 3 || tok[0] != '<' || tok[len(tok)-1] != '>' {
		return "", false, false
	}

	inner := tok[1 : len(tok)-1]
	if strings.HasPrefix(inner, "/") {
		return inner[1:], true, true
	}

	name, _, _ = strings.Cut(inner, " ")
	return name, false, true
}

// Package telegram reads group messages through the Telegram Bot API and
// resolves member roles with getChatMember.
package telegram

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/campus-notice-collector/internal/extract"
	"github.com/campus-notice-collector/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Platform is the ChatMessage.Platform value for Telegram messages
const Platform = "telegram"

// anonymousAdmin marks messages sent on behalf of the group itself, which
// only administrators can do
const anonymousAdmin = "anonymous_admin"

// BotAPI is the part of *tgbotapi.BotAPI the source uses
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Source delivers Telegram group messages as ChatMessages
type Source struct {
	bot     BotAPI
	timeout int
	log     zerolog.Logger
}

// NewBot connects to the Bot API with token
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return bot, nil
}

// NewSource creates a source long-polling with the given timeout in seconds
func NewSource(bot BotAPI, timeout int, log zerolog.Logger) *Source {
	return &Source{
		bot:     bot,
		timeout: timeout,
		log:     log.With().Str("component", "telegram").Logger(),
	}
}

// Listen forwards group messages to out until ctx is done
func (s *Source) Listen(ctx context.Context, out chan<- models.ChatMessage) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = s.timeout
	u.AllowedUpdates = []string{"message"}

	updates := s.bot.GetUpdatesChan(u)
	defer s.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || !(msg.Chat.IsGroup() || msg.Chat.IsSuperGroup()) {
				continue
			}
			select {
			case out <- s.Convert(msg):
			case <-ctx.Done():
				return
			}
		}
	}
}

// Convert normalizes a message. Captions stand in for text, text_link
// entities become <a href> markup and photos become image references.
func (s *Source) Convert(msg *tgbotapi.Message) models.ChatMessage {
	text, entities := msg.Text, msg.Entities
	if text == "" {
		text, entities = msg.Caption, msg.CaptionEntities
	}
	content := renderLinks(text, entities)

	if len(msg.Photo) > 0 {
		// Sizes are ordered smallest first.
		photo := msg.Photo[len(msg.Photo)-1]
		url, err := s.bot.GetFileDirectURL(photo.FileID)
		if err != nil {
			s.log.Warn().Err(err).Str("file_id", photo.FileID).Msg("Failed to resolve photo URL")
		} else {
			content += extract.ImageRef(photo.FileID, url)
		}
	}

	out := models.ChatMessage{
		Platform:   Platform,
		MessageID:  strconv.Itoa(msg.MessageID),
		GroupID:    strconv.FormatInt(msg.Chat.ID, 10),
		Content:    content,
		ReceivedAt: msg.Time(),
	}

	switch {
	case msg.SenderChat != nil && msg.SenderChat.ID == msg.Chat.ID:
		out.SenderID = anonymousAdmin
		out.SenderName = msg.Chat.Title
	case msg.From != nil:
		out.SenderID = strconv.FormatInt(msg.From.ID, 10)
		out.SenderName = displayName(msg.From)
	}
	return out
}

// MemberRole maps getChatMember status onto roles
func (s *Source) MemberRole(ctx context.Context, groupID, userID string) (models.Role, error) {
	if userID == anonymousAdmin {
		return models.RoleAdmin, nil
	}
	chatID, err := strconv.ParseInt(groupID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid chat id %q: %w", groupID, err)
	}
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	member, err := s.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: uid},
	})
	if err != nil {
		return "", fmt.Errorf("getChatMember: %w", err)
	}

	switch member.Status {
	case "creator":
		return models.RoleOwner, nil
	case "administrator":
		return models.RoleAdmin, nil
	default:
		return models.RoleMember, nil
	}
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// renderLinks wraps text_link entities in anchor tags. Entity offsets
// count UTF-16 code units.
func renderLinks(text string, entities []tgbotapi.MessageEntity) string {
	var links []tgbotapi.MessageEntity
	for _, e := range entities {
		if e.Type == "text_link" && e.URL != "" {
			links = append(links, e)
		}
	}
	if len(links) == 0 {
		return text
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Offset < links[j].Offset })

	units := utf16.Encode([]rune(text))
	var b strings.Builder
	pos := 0
	for _, e := range links {
		end := e.Offset + e.Length
		if e.Offset < pos || end > len(units) {
			continue
		}
		b.WriteString(string(utf16.Decode(units[pos:e.Offset])))
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, html.EscapeString(e.URL), string(utf16.Decode(units[e.Offset:end])))
		pos = end
	}
	b.WriteString(string(utf16.Decode(units[pos:])))
	return b.String()
}

// Package onebot receives QQ group messages from a OneBot v11 endpoint
// (HTTP POST event reporting) and answers role lookups through its HTTP
// API.
package onebot

import (
	"strconv"
	"time"

	"github.com/campus-notice-collector/internal/models"
)

// Platform is the ChatMessage.Platform value for OneBot messages
const Platform = "onebot"

// Event is the subset of a OneBot v11 event report the collector reads
type Event struct {
	Time        int64  `json:"time"`
	SelfID      int64  `json:"self_id"`
	PostType    string `json:"post_type"`
	MessageType string `json:"message_type"`
	SubType     string `json:"sub_type"`
	MessageID   int64  `json:"message_id"`
	GroupID     int64  `json:"group_id"`
	UserID      int64  `json:"user_id"`
	RawMessage  string `json:"raw_message"`
	Sender      Sender `json:"sender"`
}

// Sender describes the author of a group message
type Sender struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
	Card     string `json:"card"`
	Role     string `json:"role"`
}

// IsGroupMessage reports whether the event is a message posted in a group
func (e *Event) IsGroupMessage() bool {
	return e.PostType == "message" && e.MessageType == "group"
}

// ChatMessage converts a group message event. The receive time is the
// local clock, not the event timestamp.
func (e *Event) ChatMessage(received time.Time) models.ChatMessage {
	name := e.Sender.Card
	if name == "" {
		name = e.Sender.Nickname
	}
	return models.ChatMessage{
		Platform:   Platform,
		MessageID:  strconv.FormatInt(e.MessageID, 10),
		GroupID:    strconv.FormatInt(e.GroupID, 10),
		SenderID:   strconv.FormatInt(e.UserID, 10),
		SenderName: name,
		Content:    e.RawMessage,
		ReceivedAt: received,
	}
}

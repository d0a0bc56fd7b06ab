package models

import (
	"time"
)

// Role is a sender's standing in a chat group
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// CanPublish reports whether messages from this role are ingested
func (r Role) CanPublish() bool {
	return r == RoleOwner || r == RoleAdmin
}

// ChatMessage is a normalized group message from any chat platform
type ChatMessage struct {
	Platform   string
	MessageID  string
	GroupID    string
	SenderID   string
	SenderName string
	Content    string
	ReceivedAt time.Time
}

// PublishDateLayout is the timestamp format stored for chat records
const PublishDateLayout = "2006-01-02 15:04:05"

// Package chat turns group messages from a chat platform into classified
// records. Platform specifics live in the onebot and telegram subpackages;
// both deliver models.ChatMessage values on a channel and resolve member
// roles for the adapter.
package chat

import (
	"context"

	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/service"
	"github.com/rs/zerolog"
)

// RoleResolver looks up a sender's current role in a group
type RoleResolver interface {
	MemberRole(ctx context.Context, groupID, userID string) (models.Role, error)
}

// Processor extracts and classifies an admitted message
type Processor interface {
	Process(ctx context.Context, msg models.ChatMessage) (models.Classified, bool)
}

// GroupDirectory names groups for logging
type GroupDirectory interface {
	GroupName(groupID string) string
}

// Adapter is the chat ingestion producer. Messages are handled one at a
// time in arrival order.
type Adapter struct {
	messages  <-chan models.ChatMessage
	roles     RoleResolver
	processor Processor
	groups    GroupDirectory
	log       zerolog.Logger
}

// NewAdapter creates an adapter reading from messages
func NewAdapter(messages <-chan models.ChatMessage, roles RoleResolver, processor Processor, groups GroupDirectory, log zerolog.Logger) *Adapter {
	return &Adapter{
		messages:  messages,
		roles:     roles,
		processor: processor,
		groups:    groups,
		log:       log.With().Str("component", "chat_adapter").Logger(),
	}
}

// Name implements service.Producer
func (a *Adapter) Name() string { return "chat" }

// Produce handles messages until ctx is done or the channel is closed.
// Both are a normal shutdown for a listener.
func (a *Adapter) Produce(ctx context.Context, emit service.EmitFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-a.messages:
			if !ok {
				return nil
			}
			if err := a.handle(ctx, msg, emit); err != nil {
				return err
			}
		}
	}
}

func (a *Adapter) handle(ctx context.Context, msg models.ChatMessage, emit service.EmitFunc) error {
	log := a.log.With().
		Str("group_id", msg.GroupID).
		Str("group", a.groupName(msg.GroupID)).
		Str("sender", msg.SenderName).
		Str("message_id", msg.MessageID).
		Logger()

	role, err := a.roles.MemberRole(ctx, msg.GroupID, msg.SenderID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve member role")
		return nil
	}
	if !role.CanPublish() {
		log.Debug().Str("role", string(role)).Msg("Sender not eligible")
		return nil
	}

	classified, ok := a.processor.Process(ctx, msg)
	if !ok {
		return nil
	}

	if err := emit(ctx, classified); err != nil {
		return err
	}

	log.Info().
		Str("title", classified.Title).
		Str("publish_date", classified.PublishDate).
		Str("event_date", classified.EventDate).
		Msg("Admin message ingested")
	return nil
}

func (a *Adapter) groupName(groupID string) string {
	if a.groups == nil {
		return groupID
	}
	return a.groups.GroupName(groupID)
}

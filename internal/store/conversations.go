package store

import (
	"context"
	"fmt"

	"github.com/jocilejr/whatsbot/internal/model"
)

func conversationNotFound(id string) error {
	return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
}

func conversationIndex(convs []model.Conversation, id string) int {
	for i := range convs {
		if convs[i].ID == id {
			return i
		}
	}
	return -1
}

// ListConversations returns the owner's conversations. An unknown owner has
// none.
func (s *Store) ListConversations(ownerID string) []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneConversations(s.snap.Conversations[ownerID])
}

func (s *Store) GetConversation(ownerID, id string) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs := s.snap.Conversations[ownerID]
	i := conversationIndex(convs, id)
	if i < 0 {
		return model.Conversation{}, conversationNotFound(id)
	}
	return convs[i].Clone(), nil
}

// CreateConversation opens a conversation on one of the owner's devices. An
// empty address is stored as null.
func (s *Store) CreateConversation(ctx context.Context, ownerID, deviceID, name, address string) (model.Conversation, error) {
	var created model.Conversation
	err := s.mutate(ctx, "create_conversation", func(next *model.Snapshot) (bool, error) {
		if _, _, err := lookupDevice(next, ownerID, deviceID); err != nil {
			return false, err
		}
		created = model.Conversation{
			ID:        s.newID(),
			OwnerID:   ownerID,
			DeviceID:  deviceID,
			Name:      name,
			Messages:  []model.Message{},
			UpdatedAt: s.now(),
		}
		if address != "" {
			created.Address = &address
		}
		next.Conversations[ownerID] = append(next.Conversations[ownerID], created)
		return true, nil
	})
	if err != nil {
		return model.Conversation{}, err
	}
	return created.Clone(), nil
}

// AppendMessage records a self-sent message at the end of the conversation.
// The unread counter is left alone.
func (s *Store) AppendMessage(ctx context.Context, ownerID, conversationID, text string) (model.Message, error) {
	var msg model.Message
	err := s.mutate(ctx, "append_message", func(next *model.Snapshot) (bool, error) {
		convs := next.Conversations[ownerID]
		i := conversationIndex(convs, conversationID)
		if i < 0 {
			return false, conversationNotFound(conversationID)
		}
		now := s.now()
		msg = model.Message{
			From:   model.SelfSender,
			Text:   text,
			SentAt: now,
			Status: model.MessageSent,
		}
		convs[i].Messages = append(convs[i].Messages, msg)
		convs[i].UpdatedAt = now
		return true, nil
	})
	if err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

func (s *Store) DeleteConversation(ctx context.Context, ownerID, id string) (bool, error) {
	deleted := false
	err := s.mutate(ctx, "delete_conversation", func(next *model.Snapshot) (bool, error) {
		convs := next.Conversations[ownerID]
		i := conversationIndex(convs, id)
		if i < 0 {
			return false, nil
		}
		next.Conversations[ownerID] = append(convs[:i], convs[i+1:]...)
		deleted = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

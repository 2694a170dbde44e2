package store

import (
	"encoding/json"

	"github.com/documind-ai/documind/internal/chat"
)

// The two fixed keys of the persisted envelope. Splitting them means
// switching the active conversation never rewrites the (potentially large)
// message history, and either value can be recovered independently.
const (
	conversationsKey = "chatbot-conversations"
	activeIDKey      = "chatbot-current-conversation"
)

// SaveConversations serializes the full ordered list and overwrites the
// previous value.
func (s *Store) SaveConversations(conversations []chat.Conversation) error {
	data, err := json.Marshal(conversations)
	if err != nil {
		return err
	}
	return s.Set(conversationsKey, string(data))
}

// LoadConversations reads the persisted conversation list. Fails soft: an
// absent key, a read error, or a corrupt blob all yield an empty list. A
// parse failure is logged but never surfaced; conversation history is not
// critical data.
func (s *Store) LoadConversations() []chat.Conversation {
	raw, ok, err := s.Get(conversationsKey)
	if err != nil {
		s.logger.Warn("reading conversations failed", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var conversations []chat.Conversation
	if err := json.Unmarshal([]byte(raw), &conversations); err != nil {
		s.logger.Warn("parsing stored conversations failed, starting empty", "error", err)
		return nil
	}
	return conversations
}

// SaveActiveID persists the active conversation id. An empty id clears it.
func (s *Store) SaveActiveID(id string) error {
	if id == "" {
		return s.Delete(activeIDKey)
	}
	return s.Set(activeIDKey, id)
}

// LoadActiveID returns the persisted active conversation id, ok=false when
// none is stored.
func (s *Store) LoadActiveID() (string, bool) {
	id, ok, err := s.Get(activeIDKey)
	if err != nil {
		s.logger.Warn("reading active conversation id failed", "error", err)
		return "", false
	}
	return id, ok && id != ""
}

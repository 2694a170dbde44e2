package chat

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Message roles as they appear on the wire and in persisted state.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a conversation. Immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an ordered thread of messages. Messages are appended in
// chronological order and that order is the display order.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultTitle is assigned to a conversation until its first message names it.
const DefaultTitle = "New Conversation"

const maxTitleLength = 50

// TitleFromMessage derives a conversation title from its first user message:
// the text unchanged if it fits, otherwise the first 50 characters with
// trailing whitespace trimmed and an ellipsis marker appended.
func TitleFromMessage(text string) string {
	if utf8.RuneCountInString(text) <= maxTitleLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:maxTitleLength]), " \t\n") + "..."
}

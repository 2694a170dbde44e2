package chat

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Apology is appended as the assistant reply when the backend call fails.
// The underlying error is logged, never shown verbatim.
const Apology = "Sorry, I encountered an error while processing your message. Please try again."

// ErrBusy is returned by Send while another send is still in flight.
var ErrBusy = errors.New("a message is already in flight")

// Sender forwards a user message to the backend and returns the reply.
type Sender interface {
	SendMessage(ctx context.Context, content, conversationID string) (string, error)
}

// Store persists conversation state between runs. Loads are fail-soft:
// missing or unreadable state comes back empty, never as an error.
type Store interface {
	SaveConversations(conversations []Conversation) error
	LoadConversations() []Conversation
	SaveActiveID(id string) error
	LoadActiveID() (string, bool)
}

// Exchange is the pair of messages appended by a single send.
type Exchange struct {
	User      Message
	Assistant Message
}

// App owns the chat state: the ordered conversation list, the active
// conversation id, and the single in-flight send flag. All methods are safe
// for concurrent use; at most one send runs at a time.
type App struct {
	sender Sender
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu            sync.Mutex
	conversations []Conversation
	activeID      string
	sending       bool
}

// NewApp creates an App. Pass a nil store to keep state in memory only.
func NewApp(sender Sender, store Store) *App {
	return &App{
		sender: sender,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// Load hydrates conversations and the active id from the store. The saved
// active id wins if that conversation still exists, otherwise the first
// conversation becomes active.
func (a *App) Load() {
	if a.store == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.conversations = a.store.LoadConversations()
	a.activeID = ""

	if saved, ok := a.store.LoadActiveID(); ok {
		for _, c := range a.conversations {
			if c.ID == saved {
				a.activeID = saved
				break
			}
		}
	}
	if a.activeID == "" && len(a.conversations) > 0 {
		a.activeID = a.conversations[0].ID
	}
}

// NewConversation creates an empty conversation, inserts it at the front of
// the list, makes it active, and returns its id.
func (a *App) NewConversation() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.newConversationLocked()
}

func (a *App) newConversationLocked() string {
	now := a.now()
	conv := Conversation{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.conversations = append([]Conversation{conv}, a.conversations...)
	a.activeID = conv.ID
	a.persistLocked()
	return conv.ID
}

// Send appends content as a user message to the active conversation
// (creating one if none is active), calls the backend, and appends the
// reply, or the fixed Apology on failure, as an assistant message. The
// user message is visible before the backend call is issued. Returns
// ErrBusy if another send has not settled yet.
func (a *App) Send(ctx context.Context, content string) (Exchange, error) {
	a.mu.Lock()
	if a.sending {
		a.mu.Unlock()
		return Exchange{}, ErrBusy
	}

	if a.activeID == "" {
		a.newConversationLocked()
	}
	convID := a.activeID

	userMsg := Message{
		ID:        strconv.FormatInt(a.now().UnixMilli(), 10),
		Content:   content,
		Role:      RoleUser,
		Timestamp: a.now(),
	}
	a.appendLocked(convID, userMsg, true)
	a.sending = true
	a.mu.Unlock()

	reply, err := a.sender.SendMessage(ctx, content, convID)

	assistantContent := reply
	if err != nil {
		a.logger.Error("sending message failed", "conversation_id", convID, "error", err)
		assistantContent = Apology
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Same-tick sends collide on millisecond ids; offset the assistant id
	// past its paired user message.
	assistantMsg := Message{
		ID:        strconv.FormatInt(a.now().UnixMilli()+1, 10),
		Content:   assistantContent,
		Role:      RoleAssistant,
		Timestamp: a.now(),
	}
	a.appendLocked(convID, assistantMsg, false)
	a.sending = false

	return Exchange{User: userMsg, Assistant: assistantMsg}, nil
}

// appendLocked adds msg to the conversation with the given id, refreshing
// UpdatedAt. When titleFromFirst is set and the conversation was empty, the
// message content names the conversation.
func (a *App) appendLocked(convID string, msg Message, titleFromFirst bool) {
	for i := range a.conversations {
		if a.conversations[i].ID != convID {
			continue
		}
		if titleFromFirst && len(a.conversations[i].Messages) == 0 {
			a.conversations[i].Title = TitleFromMessage(msg.Content)
		}
		a.conversations[i].Messages = append(a.conversations[i].Messages, msg)
		a.conversations[i].UpdatedAt = a.now()
		break
	}
	a.persistLocked()
}

// Select makes the conversation with the given id active.
func (a *App) Select(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.conversations {
		if c.ID == id {
			a.activeID = id
			a.persistLocked()
			return nil
		}
	}
	return errors.New("no such conversation: " + id)
}

// Delete removes the conversation with the given id. If it was active, the
// first remaining conversation becomes active, or none if the list is empty.
func (a *App) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i, c := range a.conversations {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.New("no such conversation: " + id)
	}

	a.conversations = append(a.conversations[:idx], a.conversations[idx+1:]...)
	if a.activeID == id {
		a.activeID = ""
		if len(a.conversations) > 0 {
			a.activeID = a.conversations[0].ID
		}
	}
	a.persistLocked()
	return nil
}

// Conversations returns a snapshot of the conversation list in display order.
func (a *App) Conversations() []Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Conversation, len(a.conversations))
	copy(out, a.conversations)
	for i := range out {
		msgs := make([]Message, len(out[i].Messages))
		copy(msgs, out[i].Messages)
		out[i].Messages = msgs
	}
	return out
}

// Active returns the active conversation, or false if none is active.
func (a *App) Active() (Conversation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.conversations {
		if c.ID == a.activeID {
			msgs := make([]Message, len(c.Messages))
			copy(msgs, c.Messages)
			c.Messages = msgs
			return c, true
		}
	}
	return Conversation{}, false
}

// ActiveID returns the active conversation id, empty if none.
func (a *App) ActiveID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeID
}

// Sending reports whether a send is in flight.
func (a *App) Sending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sending
}

func (a *App) persistLocked() {
	if a.store == nil {
		return
	}
	if err := a.store.SaveConversations(a.conversations); err != nil {
		a.logger.Warn("saving conversations failed", "error", err)
	}
	if err := a.store.SaveActiveID(a.activeID); err != nil {
		a.logger.Warn("saving active conversation id failed", "error", err)
	}
}

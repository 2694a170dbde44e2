package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSender struct {
	reply string
	err   error

	mu    sync.Mutex
	calls []string // conversation ids, in call order
	block chan struct{}
}

func (f *fakeSender) SendMessage(ctx context.Context, content, conversationID string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, conversationID)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.reply, f.err
}

// tickingClock advances one millisecond per reading so message ids stay
// distinct within a test.
func tickingClock() func() time.Time {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var n int64
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}
}

func newTestApp(s Sender) *App {
	a := NewApp(s, nil)
	a.now = tickingClock()
	return a
}

func TestSend_CreatesConversationWhenNoneActive(t *testing.T) {
	sender := &fakeSender{reply: "42"}
	app := newTestApp(sender)

	if app.ActiveID() != "" {
		t.Fatal("expected no active conversation initially")
	}

	if _, err := app.Send(context.Background(), "what is the answer"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	convs := app.Conversations()
	if len(convs) != 1 {
		t.Fatalf("got %d conversations, want 1", len(convs))
	}
	if app.ActiveID() != convs[0].ID {
		t.Errorf("active id = %q, want %q", app.ActiveID(), convs[0].ID)
	}
	if convs[0].Title != "what is the answer" {
		t.Errorf("title = %q, want first message content", convs[0].Title)
	}
}

func TestSend_SuccessAppendsBothMessagesInOrder(t *testing.T) {
	sender := &fakeSender{reply: "42"}
	app := newTestApp(sender)

	ex, err := app.Send(context.Background(), "what is the answer")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	conv, ok := app.Active()
	if !ok {
		t.Fatal("no active conversation")
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(conv.Messages))
	}
	if conv.Messages[0].Role != RoleUser || conv.Messages[0].Content != "what is the answer" {
		t.Errorf("first message = %+v, want user message", conv.Messages[0])
	}
	if conv.Messages[1].Role != RoleAssistant || conv.Messages[1].Content != "42" {
		t.Errorf("second message = %+v, want assistant reply", conv.Messages[1])
	}
	if ex.Assistant.Content != "42" {
		t.Errorf("exchange assistant content = %q, want 42", ex.Assistant.Content)
	}
	if app.Sending() {
		t.Error("sending flag still set after send settled")
	}
}

func TestSend_FailureAppendsApology(t *testing.T) {
	sender := &fakeSender{err: errors.New("backend exploded")}
	app := newTestApp(sender)

	ex, err := app.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	conv, _ := app.Active()
	if len(conv.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(conv.Messages))
	}
	if conv.Messages[1].Content != Apology {
		t.Errorf("assistant content = %q, want apology", conv.Messages[1].Content)
	}
	if ex.Assistant.Content != Apology {
		t.Errorf("exchange assistant content = %q, want apology", ex.Assistant.Content)
	}
	if app.Sending() {
		t.Error("sending flag still set after failed send")
	}
}

func TestSend_UserMessageVisibleBeforeCallSettles(t *testing.T) {
	sender := &fakeSender{reply: "later", block: make(chan struct{})}
	app := newTestApp(sender)

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Send(context.Background(), "first")
	}()

	// Wait for the optimistic append.
	deadline := time.After(2 * time.Second)
	for {
		conv, ok := app.Active()
		if ok && len(conv.Messages) == 1 {
			if conv.Messages[0].Role != RoleUser {
				t.Errorf("pending message role = %q, want user", conv.Messages[0].Role)
			}
			if !app.Sending() {
				t.Error("sending flag not set while call in flight")
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("user message never appeared")
		case <-time.After(time.Millisecond):
		}
	}

	// A second send must be rejected while the first is in flight.
	if _, err := app.Send(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent send error = %v, want ErrBusy", err)
	}

	close(sender.block)
	<-done

	conv, _ := app.Active()
	if len(conv.Messages) != 2 {
		t.Fatalf("got %d messages after settle, want 2", len(conv.Messages))
	}
}

func TestSend_AssistantIDOffsetFromUserID(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	app := NewApp(sender, nil)
	// Frozen clock: every reading is the same millisecond.
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	app.now = func() time.Time { return fixed }

	ex, err := app.Send(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ex.User.ID == ex.Assistant.ID {
		t.Errorf("user and assistant ids collide: %q", ex.User.ID)
	}
}

func TestDelete_ActiveFallsBackToFirstRemaining(t *testing.T) {
	app := newTestApp(&fakeSender{})

	first := app.NewConversation()
	second := app.NewConversation()
	third := app.NewConversation() // list order: third, second, first

	if err := app.Select(second); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := app.Delete(second); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// First remaining in display order is the newest conversation.
	if app.ActiveID() != third {
		t.Errorf("active id = %q, want %q", app.ActiveID(), third)
	}

	if err := app.Delete(third); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if app.ActiveID() != first {
		t.Errorf("active id = %q, want %q", app.ActiveID(), first)
	}

	if err := app.Delete(first); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if app.ActiveID() != "" {
		t.Errorf("active id = %q, want empty after deleting last", app.ActiveID())
	}
}

func TestDelete_InactiveKeepsActive(t *testing.T) {
	app := newTestApp(&fakeSender{})

	first := app.NewConversation()
	second := app.NewConversation()

	if err := app.Select(second); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := app.Delete(first); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if app.ActiveID() != second {
		t.Errorf("active id = %q, want %q", app.ActiveID(), second)
	}
}

func TestDelete_Unknown(t *testing.T) {
	app := newTestApp(&fakeSender{})
	if err := app.Delete("nope"); err == nil {
		t.Error("expected error deleting unknown conversation")
	}
}

func TestNewConversation_InsertedAtFront(t *testing.T) {
	app := newTestApp(&fakeSender{})

	older := app.NewConversation()
	newer := app.NewConversation()

	convs := app.Conversations()
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	if convs[0].ID != newer || convs[1].ID != older {
		t.Errorf("order = [%s %s], want newest first", convs[0].ID, convs[1].ID)
	}
	if convs[0].Title != DefaultTitle {
		t.Errorf("title = %q, want %q", convs[0].Title, DefaultTitle)
	}
}

func TestSend_ReusesActiveConversation(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	app := newTestApp(sender)

	id := app.NewConversation()
	if _, err := app.Send(context.Background(), "one"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := app.Send(context.Background(), "two"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(sender.calls) != 2 {
		t.Fatalf("backend called %d times, want 2", len(sender.calls))
	}
	for _, got := range sender.calls {
		if got != id {
			t.Errorf("backend conversation id = %q, want %q", got, id)
		}
	}

	conv, _ := app.Active()
	if len(conv.Messages) != 4 {
		t.Errorf("got %d messages, want 4", len(conv.Messages))
	}
	if conv.Title != "one" {
		t.Errorf("title = %q, want %q (from first message only)", conv.Title, "one")
	}
}

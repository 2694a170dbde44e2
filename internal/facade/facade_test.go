package facade

import (
	"context"
	"io"

	"github.com/documind-ai/documind/internal/backend"
	"github.com/documind-ai/documind/internal/chat"
	"github.com/documind-ai/documind/internal/docs"
	"github.com/documind-ai/documind/internal/status"
)

// --- shared fakes ---

type fakeSender struct {
	reply string
	err   error
}

func (f *fakeSender) SendMessage(_ context.Context, _, _ string) (string, error) {
	return f.reply, f.err
}

type fakeDocBackend struct {
	sessionID string
	answer    string
	sessions  []backend.Session
	err       error
}

func (f *fakeDocBackend) AnalyzeText(_ context.Context, _ string) (backend.Upload, error) {
	if f.err != nil {
		return backend.Upload{}, f.err
	}
	return backend.Upload{DocumentID: f.sessionID, Status: "success"}, nil
}

func (f *fakeDocBackend) UploadPDF(_ context.Context, _ string, r io.Reader, _ func(float64)) (backend.Upload, error) {
	if f.err != nil {
		return backend.Upload{}, f.err
	}
	io.Copy(io.Discard, r)
	return backend.Upload{DocumentID: f.sessionID, Status: "success"}, nil
}

func (f *fakeDocBackend) AskQuestion(_ context.Context, _, _ string) (backend.Answer, error) {
	if f.err != nil {
		return backend.Answer{}, f.err
	}
	return backend.Answer{Answer: f.answer, Confidence: 1.0}, nil
}

func (f *fakeDocBackend) ListSessions(_ context.Context) []backend.Session {
	return f.sessions
}

func (f *fakeDocBackend) LoadSession(_ context.Context, sessionID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "loaded text", nil
}

type fakeChecker struct {
	healthy bool
}

func (f *fakeChecker) CheckHealth(_ context.Context) bool {
	return f.healthy
}

func newTestDeps(sender *fakeSender, docBackend *fakeDocBackend) Deps {
	return Deps{
		Chat:   chat.NewApp(sender, nil),
		Docs:   docs.NewWorkspace(docBackend),
		Status: status.NewWatcher(&fakeChecker{healthy: true}, 0),
	}
}

package docs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/documind-ai/documind/internal/backend"
)

// ErrNoDocument is returned by Ask before a document has been opened.
var ErrNoDocument = errors.New("no document is open")

// ErrBusy is returned while an upload or analysis is still in flight.
var ErrBusy = errors.New("an upload is already in flight")

// Backend is the slice of the backend client the workspace needs.
type Backend interface {
	AnalyzeText(ctx context.Context, text string) (backend.Upload, error)
	UploadPDF(ctx context.Context, name string, r io.Reader, onProgress func(float64)) (backend.Upload, error)
	AskQuestion(ctx context.Context, question, documentID string) (backend.Answer, error)
	ListSessions(ctx context.Context) []backend.Session
	LoadSession(ctx context.Context, sessionID string) (string, error)
}

// Workspace owns the document surface: the current document and the single
// in-flight upload flag. A successful upload or analysis transitions the
// workspace to the new session; on failure no transition happens and the
// error is returned to the caller.
type Workspace struct {
	backend Backend
	logger  *slog.Logger
	fetcher *http.Client

	mu      sync.Mutex
	current *Document
	busy    bool
}

// NewWorkspace creates a Workspace over the given backend.
func NewWorkspace(b Backend) *Workspace {
	return &Workspace{
		backend: b,
		logger:  slog.Default(),
		fetcher: &http.Client{Timeout: 15 * time.Second},
	}
}

func (w *Workspace) begin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	w.busy = true
	return nil
}

func (w *Workspace) finish(doc *Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if doc != nil {
		w.current = doc
	}
}

// SubmitText sends pasted text for analysis and opens the resulting session.
func (w *Workspace) SubmitText(ctx context.Context, text string) (Document, error) {
	if err := w.begin(); err != nil {
		return Document{}, err
	}

	up, err := w.backend.AnalyzeText(ctx, text)
	if err != nil {
		w.finish(nil)
		w.logger.Error("analyzing text failed", "error", err)
		return Document{}, err
	}

	doc := Document{
		ID:      up.DocumentID,
		Name:    "Pasted text",
		Size:    int64(len(text)),
		Type:    TypeText,
		Content: text,
	}
	w.finish(&doc)
	return doc, nil
}

// UploadFile uploads a PDF and opens the resulting session. Non-PDF files
// are rejected before any network traffic. A text preview is extracted
// best-effort; extraction failure only loses the preview.
func (w *Workspace) UploadFile(ctx context.Context, path string, onProgress func(float64)) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Document{}, fmt.Errorf("reading file info: %w", err)
	}

	header := make([]byte, 5)
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, []byte("%PDF-")) {
		return Document{}, fmt.Errorf("%s is not a PDF file", filepath.Base(path))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Document{}, fmt.Errorf("rewinding file: %w", err)
	}

	preview, err := extractPDFText(path, previewLimit)
	if err != nil {
		w.logger.Warn("extracting PDF preview failed", "file", path, "error", err)
		preview = ""
	}

	if err := w.begin(); err != nil {
		return Document{}, err
	}

	up, err := w.backend.UploadPDF(ctx, filepath.Base(path), f, onProgress)
	if err != nil {
		w.finish(nil)
		w.logger.Error("uploading file failed", "file", path, "error", err)
		return Document{}, err
	}

	doc := Document{
		ID:      up.DocumentID,
		Name:    filepath.Base(path),
		Size:    info.Size(),
		Type:    TypePDF,
		Content: preview,
	}
	w.finish(&doc)
	return doc, nil
}

// AnalyzeURL fetches a web page, extracts its visible text, and submits it
// the same way pasted text is.
func (w *Workspace) AnalyzeURL(ctx context.Context, rawURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	resp, err := w.fetcher.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Document{}, fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	title, text, err := extractPageText(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	if text == "" {
		return Document{}, fmt.Errorf("no readable text found at %s", rawURL)
	}

	doc, err := w.SubmitText(ctx, text)
	if err != nil {
		return Document{}, err
	}

	name := title
	if name == "" {
		name = rawURL
	}
	w.mu.Lock()
	w.current.Name = name
	w.current.Type = TypeURL
	doc = *w.current
	w.mu.Unlock()
	return doc, nil
}

// Ask sends a question against the current document.
func (w *Workspace) Ask(ctx context.Context, question string) (backend.Answer, error) {
	w.mu.Lock()
	doc := w.current
	w.mu.Unlock()
	if doc == nil {
		return backend.Answer{}, ErrNoDocument
	}
	return w.backend.AskQuestion(ctx, question, doc.ID)
}

// AskAbout sends a question against an explicit session id without
// changing the current document.
func (w *Workspace) AskAbout(ctx context.Context, question, sessionID string) (backend.Answer, error) {
	return w.backend.AskQuestion(ctx, question, sessionID)
}

// OpenSession loads an existing server-side session and makes it current.
func (w *Workspace) OpenSession(ctx context.Context, sessionID string) (Document, error) {
	text, err := w.backend.LoadSession(ctx, sessionID)
	if err != nil {
		w.logger.Error("loading session failed", "session_id", sessionID, "error", err)
		return Document{}, err
	}

	doc := Document{
		ID:      sessionID,
		Name:    sessionID,
		Size:    int64(len(text)),
		Type:    TypeText,
		Content: text,
	}
	w.mu.Lock()
	w.current = &doc
	w.mu.Unlock()
	return doc, nil
}

// Sessions lists the server-side sessions. Fails soft to an empty list.
func (w *Workspace) Sessions(ctx context.Context) []backend.Session {
	return w.backend.ListSessions(ctx)
}

// Current returns the open document, or false when none is open.
func (w *Workspace) Current() (Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return Document{}, false
	}
	return *w.current, true
}

// Busy reports whether an upload or analysis is in flight.
func (w *Workspace) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

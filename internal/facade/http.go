// Package facade exposes the chat and document surfaces over a local HTTP
// API and an MCP server, so editors and other local tools can drive the
// same state the CLI does.
package facade

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/documind-ai/documind/internal/backend"
	"github.com/documind-ai/documind/internal/chat"
	"github.com/documind-ai/documind/internal/docs"
	"github.com/documind-ai/documind/internal/status"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds the surfaces the facade exposes.
type Deps struct {
	Chat   *chat.App
	Docs   *docs.Workspace
	Status *status.Watcher
}

// NewHandler returns the local HTTP API handler.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/status", handleStatus(deps))
	r.Get("/conversations", handleListConversations(deps))
	r.Post("/conversations", handleNewConversation(deps))
	r.Delete("/conversations/{id}", handleDeleteConversation(deps))
	r.Post("/conversations/{id}/messages", handleSendMessage(deps))
	r.Post("/documents/text", handleSubmitText(deps))
	r.Get("/sessions", handleListSessions(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Status.State())
	}
}

func handleListConversations(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversations := deps.Chat.Conversations()
		if conversations == nil {
			conversations = []chat.Conversation{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"conversations": conversations,
			"active_id":     deps.Chat.ActiveID(),
		})
	}
}

func handleNewConversation(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := deps.Chat.NewConversation()
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func handleDeleteConversation(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := deps.Chat.Delete(id); err != nil {
			httpError(w, http.StatusNotFound, "conversation not found: %s", id)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func handleSendMessage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Content == "" {
			httpError(w, http.StatusBadRequest, "content is required")
			return
		}

		id := chi.URLParam(r, "id")
		if err := deps.Chat.Select(id); err != nil {
			httpError(w, http.StatusNotFound, "conversation not found: %s", id)
			return
		}

		exchange, err := deps.Chat.Send(r.Context(), req.Content)
		if errors.Is(err, chat.ErrBusy) {
			httpError(w, http.StatusConflict, "a message is already in flight")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "sending message: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]chat.Message{
			"user":      exchange.User,
			"assistant": exchange.Assistant,
		})
	}
}

type submitTextRequest struct {
	Text string `json:"text"`
}

func handleSubmitText(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req submitTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Text == "" {
			httpError(w, http.StatusBadRequest, "text is required")
			return
		}

		doc, err := deps.Docs.SubmitText(r.Context(), req.Text)
		if errors.Is(err, docs.ErrBusy) {
			httpError(w, http.StatusConflict, "an upload is already in flight")
			return
		}
		if err != nil {
			httpError(w, http.StatusBadGateway, "analyzing text: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, doc)
	}
}

func handleListSessions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := deps.Docs.Sessions(r.Context())
		if sessions == nil {
			sessions = []backend.Session{}
		}
		writeJSON(w, http.StatusOK, map[string][]backend.Session{"sessions": sessions})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}

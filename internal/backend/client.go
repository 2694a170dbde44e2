// Package backend is the HTTP client for the remote DocuMind RAG backend.
// Every failure shape (unreachable host, non-2xx status, malformed body,
// missing field) is normalized into *APIError so callers never have to
// tell transport problems apart from application ones.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIError is the single error category produced by this client.
type APIError struct {
	Status  int // HTTP status, 0 for transport-level failures
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return e.Message
}

// Upload is the result of a successful document upload or text analysis.
type Upload struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// Answer is the backend's reply to a document question. The backend does
// not report confidence, so it is fixed at 1.0.
type Answer struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// Session identifies a server-side document session.
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client talks to the backend at a fixed base URL. A single client session
// id accompanies uploads.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// New creates a Client targeting the given backend base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: uuid.NewString(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SessionID returns the client session id sent with uploads.
func (c *Client) SessionID() string {
	return c.sessionID
}

// SetTimeout overrides the default 30s request timeout. Non-positive
// values are ignored.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("marshalling request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("backend not reachable: %v", err)}
	}
	return resp, nil
}

// SendMessage posts a chat message and returns the backend's reply text.
// A non-success status fails with the response body as the error message.
func (c *Client) SendMessage(ctx context.Context, message, conversationID string) (string, error) {
	resp, err := c.postJSON(ctx, "/query", map[string]string{
		"message":        message,
		"conversationId": conversationID,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var data struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", &APIError{Message: fmt.Sprintf("decoding response: %v", err)}
	}
	return data.Response, nil
}

// progressReader reports the fraction of body bytes handed to the transport.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	fn    func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.fn != nil && p.total > 0 {
		p.fn(float64(p.read) / float64(p.total))
	}
	return n, err
}

// UploadPDF posts a PDF as multipart form data together with the client
// session id. The optional progress callback receives fractions in (0, 1]
// as the body is transferred; pass nil to ignore.
func (c *Client) UploadPDF(ctx context.Context, name string, r io.Reader, onProgress func(float64)) (Upload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return Upload{}, &APIError{Message: fmt.Sprintf("building form: %v", err)}
	}
	if _, err := io.Copy(part, r); err != nil {
		return Upload{}, &APIError{Message: fmt.Sprintf("reading file: %v", err)}
	}
	if err := mw.WriteField("session_id", c.sessionID); err != nil {
		return Upload{}, &APIError{Message: fmt.Sprintf("building form: %v", err)}
	}
	if err := mw.Close(); err != nil {
		return Upload{}, &APIError{Message: fmt.Sprintf("building form: %v", err)}
	}

	body := &progressReader{r: &buf, total: int64(buf.Len()), fn: onProgress}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-pdf", body)
	if err != nil {
		return Upload{}, &APIError{Message: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = int64(buf.Len())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Upload{}, &APIError{Message: fmt.Sprintf("network error during upload: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Upload{}, &APIError{Status: resp.StatusCode, Message: "upload failed"}
	}

	var up Upload
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return Upload{}, &APIError{Message: fmt.Sprintf("invalid response format: %v", err)}
	}
	return up, nil
}

// AnalyzeText posts raw text for analysis. The backend answers with a
// session id; a missing id fails with the server's error message when one
// is present.
func (c *Client) AnalyzeText(ctx context.Context, text string) (Upload, error) {
	resp, err := c.postJSON(ctx, "/upload-text", map[string]string{"text": text})
	if err != nil {
		return Upload{}, err
	}
	defer resp.Body.Close()

	var data struct {
		SessionID string `json:"session_id"`
		Error     string `json:"error"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr != nil || data.SessionID == "" {
		msg := data.Error
		if msg == "" {
			msg = "no response from server"
		}
		return Upload{}, &APIError{Status: resp.StatusCode, Message: msg}
	}

	return Upload{DocumentID: data.SessionID, Status: "success"}, nil
}

// AskQuestion posts a question against a document session and returns the
// answer. Fails if the response lacks an answer.
func (c *Client) AskQuestion(ctx context.Context, question, documentID string) (Answer, error) {
	resp, err := c.postJSON(ctx, "/query", map[string]string{
		"message":         question,
		"conversation_id": documentID,
	})
	if err != nil {
		return Answer{}, err
	}
	defer resp.Body.Close()

	var data struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr != nil || data.Response == "" {
		msg := data.Error
		if msg == "" {
			msg = "no response from server"
		}
		return Answer{}, &APIError{Status: resp.StatusCode, Message: msg}
	}

	return Answer{Answer: data.Response, Confidence: 1.0}, nil
}

// CheckHealth reports whether the backend answers GET /health with
// status "ok". Any failure yields false; it never returns an error.
func (c *Client) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	var data struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return false
	}
	return data.Status == "ok"
}

// ListSessions returns the server-side document sessions. Fails soft: any
// failure yields an empty list.
func (c *Client) ListSessions(ctx context.Context) []Session {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/list-sessions", nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	var data struct {
		Sessions []string `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil
	}

	sessions := make([]Session, len(data.Sessions))
	for i, id := range data.Sessions {
		sessions[i] = Session{ID: id, Name: id}
	}
	return sessions
}

// LoadSession activates a server-side session and returns its source text.
func (c *Client) LoadSession(ctx context.Context, sessionID string) (string, error) {
	resp, err := c.postJSON(ctx, "/load_session", map[string]string{"session_id": sessionID})
	if err != nil {
		return "", err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Message: "failed to load session"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/get-common-txt?session_id="+url.QueryEscape(sessionID), nil)
	if err != nil {
		return "", &APIError{Message: fmt.Sprintf("creating request: %v", err)}
	}
	txtResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &APIError{Message: fmt.Sprintf("backend not reachable: %v", err)}
	}
	defer txtResp.Body.Close()

	if txtResp.StatusCode < 200 || txtResp.StatusCode >= 300 {
		return "", &APIError{Status: txtResp.StatusCode, Message: "failed to load session"}
	}

	text, err := io.ReadAll(txtResp.Body)
	if err != nil {
		return "", &APIError{Message: fmt.Sprintf("reading session text: %v", err)}
	}
	return string(text), nil
}

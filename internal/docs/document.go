package docs

// Document types.
const (
	TypePDF  = "pdf"
	TypeText = "text"
	TypeURL  = "url"
)

// Document is the unit the question/answer flow works against: an uploaded
// or pasted source identified by a server-assigned session id. It lives for
// the duration of the run; server-side sessions can be reopened by id.
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// QuickActions are canned prompts offered against a fresh document.
var QuickActions = []string{
	"Summarize this document",
	"Extract key points",
	"Get main topics",
}

package docs

import (
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// previewLimit caps the extracted preview text, in bytes.
const previewLimit = 4096

// extractPDFText pulls plain text out of a PDF for preview, truncated to
// limit bytes.
func extractPDFText(path string, limit int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	body, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	text, err := io.ReadAll(io.LimitReader(body, int64(limit)))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(text)), nil
}

// extractPageText parses an HTML page and returns its title and visible
// text. Script, style, and other non-content elements are skipped and
// whitespace is collapsed.
func extractPageText(r io.Reader) (title, text string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				if n.Data == "head" {
					for c := n.FirstChild; c != nil; c = c.NextSibling {
						if c.Type == html.ElementNode && c.Data == "title" && c.FirstChild != nil {
							title = strings.TrimSpace(c.FirstChild.Data)
						}
					}
				}
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, strings.Join(strings.Fields(sb.String()), " "), nil
}

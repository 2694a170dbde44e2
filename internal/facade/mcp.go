package facade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/documind-ai/documind/internal/chat"
	"github.com/documind-ai/documind/internal/docs"
)

// NewMCPServer creates an MCP server exposing the chat and document
// surfaces as tools.
func NewMCPServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"documind",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("documind — terminal client for a document Q&A backend with persisted chat conversations."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("send_message",
			mcp.WithDescription("Send a chat message into the active conversation and return the assistant reply."),
			mcp.WithString("content", mcp.Description("The message text"), mcp.Required()),
		),
		mcpSendMessage(deps),
	)

	s.AddTool(
		mcp.NewTool("ask_document",
			mcp.WithDescription("Ask a question about the currently open document."),
			mcp.WithString("question", mcp.Description("The question to ask"), mcp.Required()),
			mcp.WithString("session_id", mcp.Description("Ask against this session instead of the open document")),
		),
		mcpAskDocument(deps),
	)

	s.AddTool(
		mcp.NewTool("analyze_text",
			mcp.WithDescription("Submit raw text for analysis and open the resulting document session."),
			mcp.WithString("text", mcp.Description("The text to analyze"), mcp.Required()),
		),
		mcpAnalyzeText(deps),
	)

	s.AddTool(
		mcp.NewTool("list_sessions",
			mcp.WithDescription("List document sessions available on the backend."),
		),
		mcpListSessions(deps),
	)

	return s
}

func mcpSendMessage(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		exchange, err := deps.Chat.Send(ctx, content)
		if errors.Is(err, chat.ErrBusy) {
			return mcpError("a message is already in flight"), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("send failed: %v", err)), nil
		}

		return mcpText(exchange.Assistant.Content), nil
	}
}

func mcpAskDocument(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		sessionID := req.GetString("session_id", "")

		var answer string
		if sessionID != "" {
			a, err := deps.Docs.AskAbout(ctx, question, sessionID)
			if err != nil {
				return mcpError(fmt.Sprintf("ask failed: %v", err)), nil
			}
			answer = a.Answer
		} else {
			a, err := deps.Docs.Ask(ctx, question)
			if errors.Is(err, docs.ErrNoDocument) {
				return mcpError("no document is open; analyze text or pass a session_id first"), nil
			}
			if err != nil {
				return mcpError(fmt.Sprintf("ask failed: %v", err)), nil
			}
			answer = a.Answer
		}

		return mcpText(answer), nil
	}
}

func mcpAnalyzeText(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		doc, err := deps.Docs.SubmitText(ctx, text)
		if errors.Is(err, docs.ErrBusy) {
			return mcpError("an upload is already in flight"), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("analysis failed: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Opened document session %s", doc.ID)), nil
	}
}

func mcpListSessions(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessions := deps.Docs.Sessions(ctx)
		if len(sessions) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(sessions)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal sessions: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/documind-ai/documind/internal/backend"
	"github.com/documind-ai/documind/internal/chat"
	"github.com/documind-ai/documind/internal/config"
	"github.com/documind-ai/documind/internal/docs"
	"github.com/documind-ai/documind/internal/store"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:     "documind",
	Short:   "Terminal client for a DocuMind document Q&A backend",
	Version: version,
	Long: `documind is a terminal client for a DocuMind chat/RAG backend.

It keeps chat conversations in a local store, uploads documents for
analysis, and answers questions against them. Run 'documind serve' to
expose the same surfaces over a local HTTP API and MCP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func initLogging(cfg config.Config) {
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func newBackendClient(cfg config.Config) *backend.Client {
	client := backend.New(cfg.Backend.BaseURL)
	client.SetTimeout(time.Duration(cfg.Backend.TimeoutSeconds) * time.Second)
	return client
}

// openChatApp wires the chat controller over the persistent store. The
// returned store must be closed by the caller.
func openChatApp(cfg config.Config, client *backend.Client) (*chat.App, *store.Store, error) {
	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}

	app := chat.NewApp(client, st)
	app.Load()
	return app, st, nil
}

func newWorkspace(client *backend.Client) *docs.Workspace {
	return docs.NewWorkspace(client)
}

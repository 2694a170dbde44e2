package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/documind-ai/documind/internal/config"
	"github.com/documind-ai/documind/internal/docs"
	"github.com/documind-ai/documind/internal/store"
)

// currentSessionKey remembers the open document session between runs.
const currentSessionKey = "documind-current-session"

func saveCurrentSession(cfg config.Config, sessionID string) {
	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		printWarning("could not record current session: %v", err)
		return
	}
	defer st.Close()
	if err := st.Set(currentSessionKey, sessionID); err != nil {
		printWarning("could not record current session: %v", err)
	}
}

func loadCurrentSession(cfg config.Config) string {
	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		return ""
	}
	defer st.Close()
	id, ok, err := st.Get(currentSessionKey)
	if err != nil || !ok {
		return ""
	}
	return id
}

func printQuickActions() {
	fmt.Fprintln(os.Stderr, "Try:")
	for _, qa := range docs.QuickActions {
		fmt.Fprintf(os.Stderr, "  documind ask %q\n", qa)
	}
}

// --- upload ---

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF for analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		workspace := newWorkspace(newBackendClient(cfg))

		printStep("Uploading %s...", args[0])
		lastPercent := -1
		doc, err := workspace.UploadFile(cmd.Context(), args[0], func(fraction float64) {
			percent := int(fraction * 100)
			if percent != lastPercent {
				lastPercent = percent
				fmt.Fprintf(os.Stderr, "\r  %d%%", percent)
			}
		})
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}

		saveCurrentSession(cfg, doc.ID)
		printSuccess("Uploaded %s (%d bytes), session %s", doc.Name, doc.Size, doc.ID)
		printQuickActions()
		return nil
	},
}

// --- analyze ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze text, a file, or a web page",
	Long: `Analyze text, a file, or a web page and open the resulting session.

Examples:
  documind analyze --text "paste of the source material"
  documind analyze --file ./notes.txt
  documind analyze --url https://example.com/article`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		url, _ := cmd.Flags().GetString("url")

		if text == "" && file == "" && url == "" {
			return fmt.Errorf("one of --text, --file, or --url is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		workspace := newWorkspace(newBackendClient(cfg))

		var doc docs.Document
		switch {
		case text != "":
			doc, err = workspace.SubmitText(cmd.Context(), text)
		case file != "":
			data, readErr := os.ReadFile(file)
			if readErr != nil {
				return fmt.Errorf("reading file: %w", readErr)
			}
			doc, err = workspace.SubmitText(cmd.Context(), string(data))
		case url != "":
			printStep("Fetching %s...", url)
			doc, err = workspace.AnalyzeURL(cmd.Context(), url)
		}
		if err != nil {
			return err
		}

		saveCurrentSession(cfg, doc.ID)
		printSuccess("Opened %s session %s (%s)", doc.Type, doc.ID, truncate(doc.Name, 50))
		printQuickActions()
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("text", "", "raw text to analyze")
	analyzeCmd.Flags().String("file", "", "path of a text file to analyze")
	analyzeCmd.Flags().String("url", "", "URL of a web page to analyze")
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the open document",
	Args:  cobra.MinimumNArgs(1),
	Long: `Ask a question about the open document.

Quick actions worth trying:
  documind ask "Summarize this document"
  documind ask "Extract key points"
  documind ask "Get main topics"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		sessionID, _ := cmd.Flags().GetString("session")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		if sessionID == "" {
			sessionID = loadCurrentSession(cfg)
		}
		if sessionID == "" {
			return fmt.Errorf("no document is open; run upload, analyze, or open first (or pass --session)")
		}

		workspace := newWorkspace(newBackendClient(cfg))
		answer, err := workspace.AskAbout(cmd.Context(), question, sessionID)
		if err != nil {
			return err
		}

		fmt.Println(answer.Answer)
		return nil
	},
}

func init() {
	askCmd.Flags().String("session", "", "session id to ask against")
}

// --- sessions ---

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List document sessions on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		sessions := newWorkspace(newBackendClient(cfg)).Sessions(cmd.Context())
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		current := loadCurrentSession(cfg)
		for _, s := range sessions {
			marker := "  "
			if s.ID == current {
				marker = colorize(colorGreen, "* ")
			}
			fmt.Printf("%s%s\n", marker, colorize(colorCyan, s.ID))
		}
		return nil
	},
}

// --- open ---

var openCmd = &cobra.Command{
	Use:   "open <session-id>",
	Short: "Open an existing document session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		workspace := newWorkspace(newBackendClient(cfg))
		doc, err := workspace.OpenSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		saveCurrentSession(cfg, doc.ID)
		printSuccess("Opened session %s (%d bytes of source text)", doc.ID, doc.Size)
		return nil
	},
}

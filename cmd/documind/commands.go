package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/documind-ai/documind/internal/chat"
	"github.com/documind-ai/documind/internal/config"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a chat message into the active conversation",
	Long: `Send a chat message into the active conversation.

Examples:
  documind chat "what did the report conclude?"
  documind chat -i`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive, _ := cmd.Flags().GetBool("interactive")

		if !interactive && len(args) == 0 {
			return fmt.Errorf("a message is required (or use -i for interactive mode)")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		client := newBackendClient(cfg)
		app, st, err := openChatApp(cfg, client)
		if err != nil {
			return err
		}
		defer st.Close()

		if !interactive {
			return sendOnce(cmd, app, strings.Join(args, " "))
		}

		if active, ok := app.Active(); ok {
			printStep("Continuing %q", active.Title)
		} else {
			printStep("Starting a new conversation")
		}

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for {
			fmt.Fprint(os.Stderr, colorize(colorBold, "> "))
			if !scanner.Scan() {
				fmt.Fprintln(os.Stderr)
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}
			if err := sendOnce(cmd, app, line); err != nil {
				printError("%v", err)
			}
		}
	},
}

func sendOnce(cmd *cobra.Command, app *chat.App, message string) error {
	exchange, err := app.Send(cmd.Context(), message)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), exchange.Assistant.Content)
	return nil
}

func init() {
	chatCmd.Flags().BoolP("interactive", "i", false, "read messages from stdin until exit")
}

// --- conversations ---

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "Manage stored conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		app, st, err := openChatApp(cfg, newBackendClient(cfg))
		if err != nil {
			return err
		}
		defer st.Close()

		conversations := app.Conversations()
		if len(conversations) == 0 {
			fmt.Println("No conversations yet.")
			return nil
		}

		activeID := app.ActiveID()
		for _, c := range conversations {
			marker := "  "
			if c.ID == activeID {
				marker = colorize(colorGreen, "* ")
			}
			fmt.Printf("%s%s  %s  (%d messages, updated %s)\n",
				marker,
				colorize(colorCyan, c.ID),
				truncate(c.Title, 50),
				len(c.Messages),
				c.UpdatedAt.Local().Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

var conversationsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new empty conversation and make it active",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		app, st, err := openChatApp(cfg, newBackendClient(cfg))
		if err != nil {
			return err
		}
		defer st.Close()

		id := app.NewConversation()
		printSuccess("Created conversation %s", id)
		return nil
	},
}

var conversationsSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Make a conversation active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		app, st, err := openChatApp(cfg, newBackendClient(cfg))
		if err != nil {
			return err
		}
		defer st.Close()

		if err := app.Select(args[0]); err != nil {
			return err
		}
		printSuccess("Selected conversation %s", args[0])
		return nil
	},
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		initLogging(cfg)

		app, st, err := openChatApp(cfg, newBackendClient(cfg))
		if err != nil {
			return err
		}
		defer st.Close()

		if err := app.Delete(args[0]); err != nil {
			return err
		}
		printSuccess("Deleted conversation %s", args[0])
		if next := app.ActiveID(); next != "" {
			printStatus("Active", "%s", next)
		}
		return nil
	},
}

func init() {
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsNewCmd)
	conversationsCmd.AddCommand(conversationsSelectCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend and local state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			printError("config error: %v", err)
			return nil
		}
		initLogging(cfg)

		client := newBackendClient(cfg)
		if client.CheckHealth(cmd.Context()) {
			printStatus("Backend", "online at %s", cfg.Backend.BaseURL)
		} else {
			printStatus("Backend", "offline (%s)", cfg.Backend.BaseURL)
		}

		app, st, err := openChatApp(cfg, client)
		if err != nil {
			printStatus("Storage", "error: %v", err)
		} else {
			defer st.Close()
			printStatus("Conversations", "%d", len(app.Conversations()))
			if active, ok := app.Active(); ok {
				printStatus("Active", "%s (%d messages)", truncate(active.Title, 50), len(active.Messages))
			}
		}

		sessions := newWorkspace(client).Sessions(cmd.Context())
		printStatus("Sessions", "%d", len(sessions))
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/documind-ai/documind/internal/config"
	"github.com/documind-ai/documind/internal/facade"
	"github.com/documind-ai/documind/internal/status"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP facade and MCP server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio only",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd.Context())
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "documind.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServe(parent context.Context) error {
	fmt.Fprintf(os.Stderr, "documind version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogging(cfg)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Refuse to start a second instance on the same port.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	selfURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	probe := &http.Client{Timeout: 2 * time.Second}
	if resp, probeErr := probe.Get(selfURL); probeErr == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("documind is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("documind is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	client := newBackendClient(cfg)
	app, st, err := openChatApp(cfg, client)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}()

	deps := facade.Deps{
		Chat:   app,
		Docs:   newWorkspace(client),
		Status: status.NewWatcher(client, time.Duration(cfg.Status.PollSeconds)*time.Second),
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: facade.NewHandler(deps),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Status.Run(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("documind listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		stdioSrv := server.NewStdioServer(facade.NewMCPServer(deps))
		if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runMCP(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogging(cfg)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := newBackendClient(cfg)
	app, st, err := openChatApp(cfg, client)
	if err != nil {
		return err
	}
	defer st.Close()

	deps := facade.Deps{
		Chat:   app,
		Docs:   newWorkspace(client),
		Status: status.NewWatcher(client, time.Duration(cfg.Status.PollSeconds)*time.Second),
	}

	slog.Info("MCP server started (stdio transport)")
	stdioSrv := server.NewStdioServer(facade.NewMCPServer(deps))
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

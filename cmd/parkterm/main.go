package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/advancepark/parkterm/internal/config"
	"github.com/advancepark/parkterm/internal/creds"
	"github.com/advancepark/parkterm/internal/feed"
	"github.com/advancepark/parkterm/internal/observability"
	"github.com/advancepark/parkterm/internal/session"
	"github.com/advancepark/parkterm/internal/tui"
	"github.com/advancepark/parkterm/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("parkterm " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "logout":
			return runLogout(cfg)
		case "login":
			// Sign-in happens inside the TUI; fall through and launch it.
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	log, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	store := creds.NewFileStore(cfg.Auth.TokenFile)
	c := client.New(cfg.API.BaseURL, store, log)
	sess := session.NewManager(c, store, log)
	fd := feed.New(c, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Proactive refresh keeps the access token fresh in the background.
	go sess.RunRefreshLoop(ctx, cfg.Auth.RefreshInterval())

	// Live push channel. Reconnects pick up the current access token, so
	// starting it before sign-in is fine; dials just fail until then.
	stream := feed.NewStream(cfg.API.WSURL, func() string {
		return store.Tokens().Access
	}, log)
	go stream.Run(ctx)

	app := tui.NewApp(sess, fd, c, stream.Events(), cfg.API.WebURL)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}

	log.Info("shutting down")
	return nil
}

func runLogout(cfg *config.Config) error {
	store := creds.NewFileStore(cfg.Auth.TokenFile)
	if !store.Tokens().HasAccess() && !store.Tokens().HasRefresh() {
		fmt.Println("Already logged out.")
		return nil
	}

	log := zap.NewNop()
	c := client.New(cfg.API.BaseURL, store, log)
	sess := session.NewManager(c, store, log)
	sess.Logout(context.Background())
	fmt.Println("Logged out.")
	return nil
}

func printHelp() {
	fmt.Print(`parkterm - terminal client for the parking platform

Usage:
  parkterm              open the dashboard
  parkterm login        open the dashboard at the sign-in form
  parkterm logout       clear the stored session
  parkterm version      show version
  parkterm help         show this help

Environment:
  PARKTERM_API_URL                  REST API base URL
  PARKTERM_WS_URL                   notification socket URL
  PARKTERM_WEB_URL                  browser dashboard URL
  PARKTERM_TOKEN_FILE               token storage path
  PARKTERM_LOG_LEVEL                debug, info, warn, error
  PARKTERM_LOG_FILE                 log file path
  PARKTERM_REFRESH_INTERVAL_MINUTES proactive token refresh cadence
`)
}

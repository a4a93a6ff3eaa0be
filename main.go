// minichat TUI - a terminal client for the minichat conversation backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/minichat-tui/internal/api"
	"github.com/jeranaias/minichat-tui/internal/cli"
	"github.com/jeranaias/minichat-tui/internal/config"
	"github.com/jeranaias/minichat-tui/internal/server"
	"github.com/jeranaias/minichat-tui/internal/session"
	"github.com/jeranaias/minichat-tui/internal/store"
	"github.com/jeranaias/minichat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		runServe(os.Args[2:])
		return
	}

	var (
		plain       = flag.Bool("plain", false, "use the line-mode REPL instead of the full-screen UI")
		serverURL   = flag.String("server", "", "backend base URL (overrides config)")
		configPath  = flag.String("config", "", "config file path (default ~/.minichat/config.toml)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("minichat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.Server.URL,
		Timeout: cfg.Server.RequestTimeout,
	})
	engine := session.New(store.New(), client)

	if err := client.CheckRunning(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: backend at %s is not responding; start one with 'minichat serve'\n", cfg.Server.URL)
	}

	// The full-screen UI needs a real terminal; pipes get the REPL's raw output.
	if *plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		runPlain(engine)
		return
	}
	runTUI(cfg, path, engine)
}

// =============================================================================
// MODES
// =============================================================================

func runTUI(cfg *config.Config, configPath string, engine *session.Session) {
	p := tea.NewProgram(
		chat.New(cfg.UI, engine),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Config edits restyle the running UI without a restart.
	watcher, err := config.NewWatcher(configPath, func(updated *config.Config) {
		p.Send(chat.ThemeChangedMsg{UI: updated.UI})
	})
	if err == nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPlain(engine *session.Session) {
	repl := cli.NewREPL(engine)
	defer repl.Close()
	if err := repl.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// SERVE
// =============================================================================

// runServe starts the bundled development backend.
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "config file path (default ~/.minichat/config.toml)")
		addr       = fs.String("addr", "", "listen address (overrides config)")
		dbPath     = fs.String("db", "", "SQLite database path (overrides config)")
	)
	fs.Parse(args)

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("serve: %v", err)
	}
	if *addr != "" {
		cfg.Serve.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Serve.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("serve: %v", err)
	}

	storage, err := server.OpenStorage(cfg.Serve.DBPath)
	if err != nil {
		log.Fatalf("serve: open storage: %v", err)
	}
	defer storage.Close()

	srv := server.New(storage, cfg.Serve)
	log.Printf("minichat server listening on %s (db: %s)", cfg.Serve.Addr, cfg.Serve.DBPath)
	if err := srv.ListenAndServe(cfg.Serve.Addr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

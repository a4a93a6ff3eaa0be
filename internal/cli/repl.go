// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the plain-terminal REPL mode.
//
// Interactive commands:
//
//	/new              Start a new conversation
//	/list             List conversations
//	/select N         Switch to conversation number N (from /list)
//	/rename TITLE     Rename the current conversation
//	/delete           Delete the current conversation
//	/image PATH       Attach a local image to the next message
//	/help             Show available commands
//	/quit             Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jeranaias/minichat-tui/internal/model"
	"github.com/jeranaias/minichat-tui/internal/session"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#61ffca")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a277ff")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6767"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6d6d6d"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#61ffca"))
)

// =============================================================================
// REPL
// =============================================================================

// REPL is the plain-terminal front end over the session engine.
type REPL struct {
	engine   *session.Session
	line     *liner.State
	renderer *glamour.TermRenderer

	pendingImage string
	historyPath  string
}

// NewREPL creates the REPL. A glamour renderer is only set up when stdout
// is a terminal; otherwise replies print raw.
func NewREPL(engine *session.Session) *REPL {
	r := &REPL{
		engine: engine,
		line:   liner.NewLiner(),
	}
	r.line.SetCtrlCAborts(true)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			r.renderer = renderer
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		r.historyPath = filepath.Join(home, ".minichat", "history")
		if f, err := os.Open(r.historyPath); err == nil {
			r.line.ReadHistory(f)
			f.Close()
		}
	}

	return r
}

// Close persists history and restores the terminal.
func (r *REPL) Close() {
	if r.historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(r.historyPath), 0o755); err == nil {
			if f, err := os.Create(r.historyPath); err == nil {
				r.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	r.line.Close()
}

// Run drives the read-eval-print loop until /quit or EOF.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Println(headerStyle.Render("minichat") + subtleStyle.Render("  ·  /help for commands"))

	if err := r.engine.LoadConversations(ctx); err != nil {
		fmt.Println(errorStyle.Render("warning: " + r.engine.LastError()))
	}

	for {
		input, err := r.line.Prompt(r.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			// EOF (ctrl+d) ends the session.
			fmt.Println()
			return nil
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" && r.pendingImage == "" {
			continue
		}
		r.line.AppendHistory(input)

		if strings.HasPrefix(trimmed, "/") {
			if quit := r.handleCommand(ctx, trimmed); quit {
				return nil
			}
			continue
		}

		r.sendTurn(ctx, input)
	}
}

// prompt shows the active conversation title.
func (r *REPL) prompt() string {
	title := "new chat"
	if c := r.engine.Store().ActiveConversation(); c != nil {
		title = c.DisplayTitle()
	}
	if r.pendingImage != "" {
		title += " [img]"
	}
	return promptStyle.Render(title + " > ")
}

// =============================================================================
// SEND
// =============================================================================

func (r *REPL) sendTurn(ctx context.Context, content string) {
	imagePath := r.pendingImage
	r.pendingImage = ""

	err := r.engine.SendTurn(ctx, content, imagePath)
	switch {
	case errors.Is(err, session.ErrEmptyTurn):
		return
	case errors.Is(err, session.ErrSendInFlight):
		fmt.Println(subtleStyle.Render("still waiting for the previous reply"))
		return
	case err != nil:
		fmt.Println(errorStyle.Render("error: " + r.engine.LastError()))
		return
	}

	messages := r.engine.Store().ActiveMessages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleAssistant {
			r.printReply(messages[i].Content)
			break
		}
	}
}

// printReply renders a reply with glamour when possible, raw otherwise.
func (r *REPL) printReply(content string) {
	if r.renderer != nil {
		if rendered, err := r.renderer.Render(content); err == nil {
			fmt.Print(rendered)
			return
		}
	}
	fmt.Println(content)
}

// =============================================================================
// COMMANDS
// =============================================================================

// handleCommand executes one slash command; it returns true on /quit.
func (r *REPL) handleCommand(ctx context.Context, input string) bool {
	command, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(subtleStyle.Render("/new /list /select N /rename TITLE /delete /image PATH /quit"))

	case "/new":
		if err := r.engine.Create(ctx); err != nil {
			fmt.Println(errorStyle.Render("error: " + r.engine.LastError()))
		}

	case "/list":
		r.printConversations()

	case "/select":
		r.selectByNumber(ctx, arg)

	case "/rename":
		active := r.engine.Store().ActiveID()
		if active == "" {
			fmt.Println(errorStyle.Render("no active conversation"))
			break
		}
		err := r.engine.Rename(ctx, active, arg)
		if errors.Is(err, session.ErrEmptyTitle) {
			fmt.Println(errorStyle.Render("usage: /rename TITLE"))
		} else if err != nil {
			fmt.Println(errorStyle.Render("error: " + r.engine.LastError()))
		}

	case "/delete":
		active := r.engine.Store().ActiveID()
		if active == "" {
			fmt.Println(errorStyle.Render("no active conversation"))
			break
		}
		if err := r.engine.Delete(ctx, active); err != nil {
			fmt.Println(errorStyle.Render("error: " + r.engine.LastError()))
		}

	case "/image":
		if arg == "" {
			fmt.Println(errorStyle.Render("usage: /image PATH"))
			break
		}
		r.pendingImage = arg
		fmt.Println(subtleStyle.Render("image attached to next message: " + arg))

	default:
		fmt.Println(errorStyle.Render("unknown command " + command))
	}
	return false
}

func (r *REPL) printConversations() {
	conversations := r.engine.Store().Conversations()
	if len(conversations) == 0 {
		fmt.Println(subtleStyle.Render("no conversations"))
		return
	}
	activeID := r.engine.Store().ActiveID()
	for i, c := range conversations {
		line := fmt.Sprintf("%2d. %s", i+1, c.DisplayTitle())
		if c.ID == activeID {
			fmt.Println(currentStyle.Render(line + "  (current)"))
		} else {
			fmt.Println(line)
		}
	}
}

func (r *REPL) selectByNumber(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	conversations := r.engine.Store().Conversations()
	if err != nil || n < 1 || n > len(conversations) {
		fmt.Println(errorStyle.Render("usage: /select N  (see /list)"))
		return
	}
	if err := r.engine.Select(ctx, conversations[n-1].ID); err != nil {
		fmt.Println(errorStyle.Render("error: " + r.engine.LastError()))
		return
	}
	// Replay the conversation so the user sees where they are.
	for _, m := range r.engine.Store().ActiveMessages() {
		fmt.Println(headerStyle.Render(m.Role.DisplayName() + ":"))
		if m.Role == model.RoleAssistant {
			r.printReply(m.Content)
		} else {
			fmt.Println(m.Content)
		}
	}
}

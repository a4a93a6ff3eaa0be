// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/minichat-tui/internal/config"
)

// =============================================================================
// MESSAGES
// =============================================================================

// syncDoneMsg reports that one engine operation finished. The engine has
// already applied its effect to the store; the view re-reads the store and
// the error text when this arrives.
type syncDoneMsg struct {
	op  string
	err error
}

// sendDoneMsg is syncDoneMsg for the send path; separated so the spinner
// state follows the gate, not arbitrary refreshes.
type sendDoneMsg struct {
	err error
}

// ThemeChangedMsg is sent from outside the program when the config watcher
// sees a UI section change.
type ThemeChangedMsg struct {
	UI config.UIConfig
}

// =============================================================================
// ENGINE COMMANDS
// =============================================================================

// Engine operations run on command goroutines; bubbletea applies their
// results back on the update loop. No operation is cancellable once its
// network step has started, so commands use a background context.

func (m *Model) loadConversationsCmd() tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{op: "load", err: m.session.LoadConversations(context.Background())}
	}
}

func (m *Model) selectCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{op: "select", err: m.session.Select(context.Background(), id)}
	}
}

func (m *Model) createCmd() tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{op: "create", err: m.session.Create(context.Background())}
	}
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{op: "delete", err: m.session.Delete(context.Background(), id)}
	}
}

func (m *Model) renameCmd(id, title string) tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{op: "rename", err: m.session.Rename(context.Background(), id, title)}
	}
}

func (m *Model) sendCmd(content, imagePath string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: m.session.SendTurn(context.Background(), content, imagePath)}
	}
}

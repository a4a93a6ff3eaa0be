// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/minichat-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen: sidebar, message viewport, input and
// status line.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	sidebar := components.Sidebar{
		Theme:  m.theme,
		Width:  m.sidebarWidth(),
		Height: m.height - 1,
	}.Render(
		m.session.Store().Conversations(),
		m.cursor,
		m.session.Store().ActiveID(),
	)

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		m.theme.InputFrame.Width(m.chatWidth()).Render(m.input.View()),
		m.statusLine(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

// statusLine shows, in priority order: the rename prompt, the in-flight
// spinner, the last error, a transient status note, or the key help.
func (m *Model) statusLine() string {
	if m.renaming {
		return m.theme.Title.Render("rename: ") + m.renameInput.View()
	}

	if m.session.Loading() {
		return m.theme.Spinner.Render(m.spinner.View()) + m.theme.Help.Render(" waiting for reply...")
	}

	if errText := m.session.LastError(); errText != "" {
		return m.theme.ErrorBar.Render("error: " + errText)
	}

	var parts []string
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "tab: focus", "ctrl+n: new", "ctrl+y: copy", "ctrl+c: quit")
	return m.theme.Help.Render(strings.Join(parts, "  ·  "))
}

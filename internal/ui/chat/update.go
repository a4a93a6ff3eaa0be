// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/minichat-tui/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.chatWidth()
		m.viewport.Height = m.height - 7
		m.input.SetWidth(m.chatWidth() - 2)
		m.refreshViewport()
		return m, nil

	case ThemeChangedMsg:
		m.uiCfg = msg.UI
		m.theme = styles.NewTheme(msg.UI.Theme)
		m.refreshViewport()
		return m, nil

	case syncDoneMsg:
		m.clampCursor()
		m.refreshViewport()
		return m, nil

	case sendDoneMsg:
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.session.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey dispatches a key press depending on mode and focus.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	if m.renaming {
		return m.handleRenameKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.FocusNext):
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewConv):
		return m, m.createCmd()

	case key.Matches(msg, m.keyMap.CopyReply):
		if content := m.lastAssistantContent(); content != "" {
			// OSC52: works over SSH, needs no display server.
			m.output.Copy(content)
			m.status = "reply copied"
		}
		return m, nil

	case key.Matches(msg, m.keyMap.CopyCode):
		if code := m.lastAssistantCode(); code != "" {
			m.output.Copy(code)
			m.status = "code copied"
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

// handleSidebarKey navigates and manages the conversation list.
func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < m.session.Store().ConversationCount()-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Send): // enter selects
		if c := m.cursorConversation(); c != nil {
			return m, m.selectCmd(c.ID)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.DeleteConv):
		if c := m.cursorConversation(); c != nil {
			return m, m.deleteCmd(c.ID)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Rename):
		if c := m.cursorConversation(); c != nil {
			m.renaming = true
			m.renameInput.SetValue(c.DisplayTitle())
			m.renameInput.Focus()
		}
		return m, nil
	}
	return m, nil
}

// handleInputKey feeds the textarea and intercepts send.
func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Send) && !msg.Alt {
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput turns the input buffer into a send, honoring the gate and the
// /image attachment command.
func (m *Model) submitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	trimmed := strings.TrimSpace(value)

	if path, ok := strings.CutPrefix(trimmed, "/image "); ok {
		m.pendingImage = strings.TrimSpace(path)
		m.input.Reset()
		m.status = "image attached: " + m.pendingImage
		return m, nil
	}

	if trimmed == "" && m.pendingImage == "" {
		return m, nil
	}

	// Advisory gate check: a send in flight makes this a no-op rather than
	// a queued retry.
	if m.session.Loading() {
		m.status = "still waiting for the previous reply"
		return m, nil
	}

	content := value
	imagePath := m.pendingImage
	m.input.Reset()
	m.pendingImage = ""
	m.status = ""

	return m, tea.Batch(m.sendCmd(content, imagePath), m.spinner.Tick)
}

// handleRenameKey runs the inline rename prompt.
func (m *Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.renaming = false
		title := m.renameInput.Value()
		m.renameInput.Reset()
		if c := m.cursorConversation(); c != nil {
			return m, m.renameCmd(c.ID, title)
		}
		return m, nil
	case "esc":
		m.renaming = false
		m.renameInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

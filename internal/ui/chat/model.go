// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the minichat TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jeranaias/minichat-tui/internal/config"
	"github.com/jeranaias/minichat-tui/internal/model"
	"github.com/jeranaias/minichat-tui/internal/segment"
	"github.com/jeranaias/minichat-tui/internal/session"
	"github.com/jeranaias/minichat-tui/internal/ui/components"
	"github.com/jeranaias/minichat-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It issues commands to
// the session engine and renders whatever the store holds; it never mutates
// conversation state itself.
type Model struct {
	theme *styles.Theme
	uiCfg config.UIConfig

	session *session.Session
	keyMap  KeyMap

	width  int
	height int

	focus  focusArea
	cursor int // sidebar keyboard position

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	renaming    bool
	renameInput textinput.Model

	// pendingImage is a local file attached to the next send.
	pendingImage string

	status string

	output *termenv.Output
}

// New creates the chat view bound to a session engine.
func New(uiCfg config.UIConfig, engine *session.Session) *Model {
	input := textarea.New()
	input.Placeholder = "Type a message... (/image <path> attaches a file)"
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	renameInput := textinput.New()
	renameInput.Placeholder = "new title"

	return &Model{
		theme:       styles.NewTheme(uiCfg.Theme),
		uiCfg:       uiCfg,
		session:     engine,
		keyMap:      DefaultKeyMap(),
		viewport:    viewport.New(0, 0),
		input:       input,
		spinner:     sp,
		renameInput: renameInput,
		output:      termenv.DefaultOutput(),
	}
}

// Init loads the conversation list on startup.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadConversationsCmd(), textarea.Blink)
}

// =============================================================================
// STORE SNAPSHOTS
// =============================================================================

// refreshViewport re-renders the active message list into the viewport.
func (m *Model) refreshViewport() {
	messages := m.session.Store().ActiveMessages()

	view := components.MessageView{
		Theme:     m.theme,
		MaxWidth:  m.chatWidth(),
		CodeStyle: m.uiCfg.CodeStyle,
	}

	var b strings.Builder
	for i := range messages {
		b.WriteString(view.Render(&messages[i]))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

// clampCursor keeps the sidebar cursor inside the conversation list.
func (m *Model) clampCursor() {
	count := m.session.Store().ConversationCount()
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// cursorConversation returns the conversation under the sidebar cursor.
func (m *Model) cursorConversation() *model.Conversation {
	conversations := m.session.Store().Conversations()
	if m.cursor < 0 || m.cursor >= len(conversations) {
		return nil
	}
	c := conversations[m.cursor]
	return &c
}

// lastAssistantContent returns the raw content of the newest assistant
// message, for clipboard copy.
func (m *Model) lastAssistantContent() string {
	messages := m.session.Store().ActiveMessages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}

// lastAssistantCode returns the concatenated code segments of the newest
// assistant message, or "" when it contains no fenced code.
func (m *Model) lastAssistantCode() string {
	content := m.lastAssistantContent()
	if content == "" {
		return ""
	}
	var parts []string
	for _, s := range segment.CodeOnly(segment.Parse(content)) {
		parts = append(parts, strings.TrimRight(s.Text, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) sidebarWidth() int {
	w := m.uiCfg.SidebarWidth
	if w > m.width/2 && m.width > 0 {
		w = m.width / 2
	}
	return w
}

func (m *Model) chatWidth() int {
	w := m.width - m.sidebarWidth() - 2
	if w < 20 {
		w = 20
	}
	return w
}

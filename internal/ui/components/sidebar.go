// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/minichat-tui/internal/model"
	"github.com/jeranaias/minichat-tui/internal/ui/styles"
	"github.com/jeranaias/minichat-tui/internal/util"
)

// =============================================================================
// SIDEBAR
// =============================================================================

// Sidebar renders the conversation list with the active entry highlighted
// and a cursor for keyboard navigation.
type Sidebar struct {
	Theme  *styles.Theme
	Width  int
	Height int
}

// Render draws the list. cursor is the keyboard position; activeID marks
// the conversation whose messages are displayed.
func (s Sidebar) Render(conversations []model.Conversation, cursor int, activeID string) string {
	var b strings.Builder
	b.WriteString(s.Theme.Title.Render("Conversations"))
	b.WriteString("\n\n")

	if len(conversations) == 0 {
		b.WriteString(s.Theme.Help.Render("no conversations yet"))
	}

	innerWidth := s.Width - 4
	if innerWidth < 8 {
		innerWidth = 8
	}

	visible := s.Height - 3
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}

	for i := start; i < len(conversations) && i < start+visible; i++ {
		c := conversations[i]

		marker := "  "
		if i == cursor {
			marker = "> "
		}

		title := util.TruncateWidth(c.DisplayTitle(), innerWidth)
		line := marker + title

		style := s.Theme.SidebarItem
		if c.ID == activeID {
			style = s.Theme.SidebarSelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return s.Theme.Sidebar.Width(s.Width).Height(s.Height).Render(b.String())
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/minichat-tui/internal/model"
	"github.com/jeranaias/minichat-tui/internal/segment"
	"github.com/jeranaias/minichat-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageView renders one message: role label, optional attachment note,
// then the segmented body. Segmentation happens here, at render time; raw
// content is what the store holds and what clipboard copy uses.
type MessageView struct {
	Theme     *styles.Theme
	MaxWidth  int
	CodeStyle string
}

// Render returns the message as styled terminal text.
func (v MessageView) Render(m *model.Message) string {
	var b strings.Builder

	label := v.Theme.AssistantLabel
	if m.Role == model.RoleUser {
		label = v.Theme.UserLabel
	}
	b.WriteString(label.Render(m.Role.DisplayName()))
	b.WriteString("\n")

	if m.HasImage() {
		b.WriteString(v.Theme.ImageNote.Render("[image: " + m.ImagePath + "]"))
		b.WriteString("\n")
	}

	for _, s := range segment.Parse(m.Content) {
		switch s.Kind {
		case segment.KindCode:
			cb := NewCodeBlock(s.Language, s.Text)
			cb.MaxWidth = v.MaxWidth
			cb.Style = v.CodeStyle
			b.WriteString(cb.Render())
			b.WriteString("\n")
		default:
			// Embedded newlines are line breaks, not paragraph breaks;
			// render the text exactly as it arrived.
			if s.Text != "" {
				b.WriteString(v.Theme.MessageText.Render(s.Text))
				if !strings.HasSuffix(s.Text, "\n") {
					b.WriteString("\n")
				}
			}
		}
	}

	return b.String()
}

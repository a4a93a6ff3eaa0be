// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// DefaultTitle is shown for conversations that have no title yet.
const DefaultTitle = "New conversation"

// TitlePreviewRunes is how much of the first user message the server keeps
// as the auto-generated conversation title.
const TitlePreviewRunes = 50

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation identifies one named thread of messages. Identity is the ID;
// the title is the only user-mutable field and changes only through a rename.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayTitle returns the conversation title or a default.
func (c *Conversation) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return DefaultTitle
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/jeranaias/minichat-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation. Messages are
// immutable once created: the server never edits one in place, and neither
// does the client.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           Role   `json:"role"`
	Content        string `json:"content"`

	// ImagePath is a server-relative path to an attached image, or empty.
	// The client forwards it as an opaque handle and never reads the bytes.
	ImagePath string `json:"image_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HasImage reports whether the message carries an image attachment.
func (m *Message) HasImage() bool {
	return m.ImagePath != ""
}

// Preview returns a single-line, rune-safe truncated preview of the content.
func (m *Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.FirstLine(m.Content), maxRunes)
}

// IsEmpty returns true if the message has no content and no attachment.
func (m *Message) IsEmpty() bool {
	return m.Content == "" && m.ImagePath == ""
}

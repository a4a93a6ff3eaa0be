// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "testing"

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{Role("system"), "system"},
	}

	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestMessagePreview(t *testing.T) {
	m := Message{Content: "first line is long enough to truncate somewhere\nsecond line"}
	got := m.Preview(20)
	if got != "first line is lon..." {
		t.Errorf("Preview = %q", got)
	}
	if len([]rune(got)) > 20 {
		t.Errorf("Preview exceeds limit: %d runes", len([]rune(got)))
	}
}

func TestMessageIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		m    Message
		want bool
	}{
		{"both empty", Message{}, true},
		{"content only", Message{Content: "hi"}, false},
		{"image only", Message{ImagePath: "uploads/a.png"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageHasImage(t *testing.T) {
	m := Message{ImagePath: "uploads/x.png"}
	if !m.HasImage() {
		t.Error("expected HasImage true")
	}
	if (&Message{}).HasImage() {
		t.Error("expected HasImage false for empty path")
	}
}

func TestConversationDisplayTitle(t *testing.T) {
	c := Conversation{Title: "Renamed"}
	if got := c.DisplayTitle(); got != "Renamed" {
		t.Errorf("DisplayTitle = %q", got)
	}
	empty := Conversation{}
	if got := empty.DisplayTitle(); got != DefaultTitle {
		t.Errorf("DisplayTitle = %q, want %q", got, DefaultTitle)
	}
}

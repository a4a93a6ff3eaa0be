// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/minichat-tui/internal/model"
	"github.com/jeranaias/minichat-tui/internal/ui/styles"
)

func testView() MessageView {
	return MessageView{
		Theme:    styles.NewTheme("dark"),
		MaxWidth: 80,
	}
}

func TestMessageViewRendersRoleLabel(t *testing.T) {
	v := testView()

	out := v.Render(&model.Message{Role: model.RoleUser, Content: "hello"})
	if !strings.Contains(out, "You") {
		t.Errorf("user label missing from output:\n%s", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("content missing from output:\n%s", out)
	}

	out = v.Render(&model.Message{Role: model.RoleAssistant, Content: "hi"})
	if !strings.Contains(out, "Assistant") {
		t.Errorf("assistant label missing from output:\n%s", out)
	}
}

func TestMessageViewRendersImageNote(t *testing.T) {
	v := testView()
	m := &model.Message{Role: model.RoleUser, Content: "look", ImagePath: "uploads/cat.png"}

	out := v.Render(m)
	if !strings.Contains(out, "[image: uploads/cat.png]") {
		t.Errorf("image note missing:\n%s", out)
	}
}

func TestMessageViewSegmentsCode(t *testing.T) {
	v := testView()
	m := &model.Message{
		Role:    model.RoleAssistant,
		Content: "before\n```python\nx = 1\n```\nafter",
	}

	out := v.Render(m)
	if !strings.Contains(out, "before") {
		t.Errorf("leading text missing:\n%s", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("trailing text missing:\n%s", out)
	}
	// The highlighted block interleaves escape codes inside tokens, so only
	// check the rendered output grew past the plain text.
	if len(out) <= len(m.Content) {
		t.Errorf("code block does not appear to be rendered: %d bytes", len(out))
	}
}

func TestMessageViewPreservesLineBreaks(t *testing.T) {
	v := testView()
	m := &model.Message{Role: model.RoleUser, Content: "line one\nline two"}

	out := v.Render(m)
	idxOne := strings.Index(out, "line one")
	idxTwo := strings.Index(out, "line two")
	if idxOne < 0 || idxTwo < 0 || idxTwo < idxOne {
		t.Errorf("line order lost:\n%s", out)
	}
}

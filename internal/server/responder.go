// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"strings"
)

// =============================================================================
// CANNED RESPONDER
// =============================================================================

// Responder produces the assistant reply for a turn. The bundled server does
// no model inference; replies are deterministic so client behavior can be
// exercised end to end without external services.
type Responder interface {
	Reply(content string, hasImage bool) string
}

// EchoResponder is the default Responder: it reflects the prompt back, and
// answers a few recognizable prompts with fenced code so the rendering path
// sees realistic mixed replies.
type EchoResponder struct{}

func (EchoResponder) Reply(content string, hasImage bool) string {
	trimmed := strings.TrimSpace(content)
	lower := strings.ToLower(trimmed)

	var b strings.Builder

	if hasImage {
		b.WriteString("I received your image.")
		if trimmed == "" {
			return b.String()
		}
		b.WriteString(" ")
	}

	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		b.WriteString("Hello! How can I help you today?")
	case strings.Contains(lower, "example") && strings.Contains(lower, "go"):
		b.WriteString("Here is a small Go example:\n```go\npackage main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello\")\n}\n```\nLet me know if you want more detail.")
	case strings.Contains(lower, "code"):
		b.WriteString("Something like this should work:\n```python\nprint(\"hello\")\n```")
	default:
		b.WriteString("You said: ")
		b.WriteString(trimmed)
	}

	return b.String()
}

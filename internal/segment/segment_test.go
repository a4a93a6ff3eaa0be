// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import (
	"strings"
	"testing"
)

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse_PlainText(t *testing.T) {
	segments := Parse("plain text")
	if len(segments) != 1 {
		t.Fatalf("Parse() returned %d segments, want 1", len(segments))
	}
	if segments[0].Kind != KindText || segments[0].Text != "plain text" {
		t.Errorf("Parse() = %+v, want single text segment equal to input", segments[0])
	}
}

func TestParse_EmptyInput(t *testing.T) {
	// The degenerate case still yields one (empty) text segment. Callers
	// rely on the output never being nil.
	segments := Parse("")
	if len(segments) != 1 {
		t.Fatalf("Parse(\"\") returned %d segments, want 1", len(segments))
	}
	if segments[0].Kind != KindText || segments[0].Text != "" {
		t.Errorf("Parse(\"\") = %+v, want one empty text segment", segments[0])
	}
}

func TestParse_OrderAndLanguages(t *testing.T) {
	input := "a```py\nx\n```b```\ny\n```c"
	want := []Segment{
		{Kind: KindText, Text: "a"},
		{Kind: KindCode, Language: "py", Text: "x\n"},
		{Kind: KindText, Text: "b"},
		{Kind: KindCode, Language: "text", Text: "y\n"},
		{Kind: KindText, Text: "c"},
	}

	segments := Parse(input)
	if len(segments) != len(want) {
		t.Fatalf("Parse() returned %d segments, want %d: %+v", len(segments), len(want), segments)
	}
	for i, w := range want {
		if segments[i] != w {
			t.Errorf("segment[%d] = %+v, want %+v", i, segments[i], w)
		}
	}
}

func TestParse_UnterminatedFence(t *testing.T) {
	input := "a```py\nx"
	segments := Parse(input)
	if len(segments) != 1 {
		t.Fatalf("Parse() returned %d segments, want 1", len(segments))
	}
	if segments[0].Kind != KindText || segments[0].Text != input {
		t.Errorf("unterminated fence should stay plain text, got %+v", segments[0])
	}
}

func TestParse_Table(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "code only",
			input: "```go\nfunc main() {}\n```",
			want: []Segment{
				{Kind: KindCode, Language: "go", Text: "func main() {}\n"},
			},
		},
		{
			name:  "leading text with newlines preserved",
			input: "line one\nline two\n```sh\nls\n```",
			want: []Segment{
				{Kind: KindText, Text: "line one\nline two\n"},
				{Kind: KindCode, Language: "sh", Text: "ls\n"},
			},
		},
		{
			name:  "trailing text after fence",
			input: "```js\n1\n```done",
			want: []Segment{
				{Kind: KindCode, Language: "js", Text: "1\n"},
				{Kind: KindText, Text: "done"},
			},
		},
		{
			name:  "empty body",
			input: "```\n```",
			want: []Segment{
				{Kind: KindCode, Language: "text", Text: ""},
			},
		},
		{
			name:  "tag without newline is not a fence",
			input: "```python```",
			want: []Segment{
				{Kind: KindText, Text: "```python```"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			segments := Parse(tc.input)
			if len(segments) != len(tc.want) {
				t.Fatalf("Parse(%q) returned %d segments, want %d: %+v",
					tc.input, len(segments), len(tc.want), segments)
			}
			for i, w := range tc.want {
				if segments[i] != w {
					t.Errorf("segment[%d] = %+v, want %+v", i, segments[i], w)
				}
			}
		})
	}
}

// TestParse_TotalCoverage verifies that reassembling the segments, with fence
// markers and tags restored, reconstructs the input byte for byte.
func TestParse_TotalCoverage(t *testing.T) {
	inputs := []string{
		"",
		"no fences at all",
		"a```py\nx\n```b```\ny\n```c",
		"```go\npackage main\n```",
		"before\n```\nbody\n```\nafter",
		"broken ```py\nnever closed",
		"``` \nnot a fence: space is not a word\n```",
		"text with `inline` ticks only",
	}

	for _, input := range inputs {
		var b strings.Builder
		for _, s := range Parse(input) {
			if s.Kind == KindText {
				b.WriteString(s.Text)
				continue
			}
			b.WriteString("```")
			if s.Language != DefaultLanguage {
				// Untagged fences report DefaultLanguage; the source had no tag.
				b.WriteString(s.Language)
			}
			b.WriteString("\n")
			b.WriteString(s.Text)
			b.WriteString("```")
		}
		if got := b.String(); got != input {
			t.Errorf("reassembly mismatch:\n got %q\nwant %q", got, input)
		}
	}
}

func TestCodeOnly(t *testing.T) {
	segments := Parse("a```go\nx\n```b```py\ny\n```")
	code := CodeOnly(segments)
	if len(code) != 2 {
		t.Fatalf("CodeOnly() returned %d segments, want 2", len(code))
	}
	if code[0].Language != "go" || code[1].Language != "py" {
		t.Errorf("CodeOnly() order wrong: %+v", code)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package segment partitions raw reply text into renderable segments.
//
// A reply may mix prose with fenced code blocks. Rendering and
// copy-to-clipboard both depend on the partition being total and
// order-preserving: every character of the input lands in exactly one
// segment, in source order, except the fence markers and language tag
// themselves.
package segment

import (
	"regexp"
)

// =============================================================================
// SEGMENT TYPE
// =============================================================================

// Kind discriminates plain prose from fenced code.
type Kind int

const (
	KindText Kind = iota
	KindCode
)

// DefaultLanguage is the language tag used for fences with no tag word.
const DefaultLanguage = "text"

// Segment is one renderable slice of a message body. Segments are produced
// fresh at render time and never persisted.
type Segment struct {
	Kind Kind

	// Language is set for code segments only. Untagged fences get
	// DefaultLanguage rather than an empty string.
	Language string

	// Text is the raw substring: for code segments the fence body including
	// the newline before the closing marker, for text segments the exact
	// input characters with internal newlines preserved.
	Text string
}

// fenceRe matches one fenced block: opening triple-backtick, an optional
// bare language word, a newline, then the shortest body ending at a closing
// triple-backtick. An unterminated fence never matches and its characters
// fall into the surrounding text segment.
var fenceRe = regexp.MustCompile("```" + `(\w+)?\n(?s:(.*?))` + "```")

// =============================================================================
// PARSER
// =============================================================================

// Parse scans content left to right and returns its ordered segments.
//
// The split is total and deterministic: concatenating, in order, the text
// segments and the matched fence regions (markers, tag and body) reconstructs
// the input exactly. Zero matches yields a single text segment equal to the
// whole input, even when the input is empty.
func Parse(content string) []Segment {
	matches := fenceRe.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return []Segment{{Kind: KindText, Text: content}}
	}

	segments := make([]Segment, 0, len(matches)*2+1)
	last := 0

	for _, m := range matches {
		start, end := m[0], m[1]
		if start > last {
			segments = append(segments, Segment{Kind: KindText, Text: content[last:start]})
		}

		language := DefaultLanguage
		if m[2] >= 0 {
			language = content[m[2]:m[3]]
		}
		segments = append(segments, Segment{
			Kind:     KindCode,
			Language: language,
			Text:     content[m[4]:m[5]],
		})
		last = end
	}

	if last < len(content) {
		segments = append(segments, Segment{Kind: KindText, Text: content[last:]})
	}

	return segments
}

// CodeOnly returns just the code segments, in order. Used by the clipboard
// affordance that copies a reply's code without the surrounding prose.
func CodeOnly(segments []Segment) []Segment {
	var code []Segment
	for _, s := range segments {
		if s.Kind == KindCode {
			code = append(code, s)
		}
	}
	return code
}

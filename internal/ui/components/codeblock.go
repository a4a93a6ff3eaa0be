// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the minichat TUI.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/minichat-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock renders one fenced code segment with syntax highlighting, a
// language badge and a bordered frame.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int

	// Style is the chroma style name; empty falls back to monokai.
	Style string
}

// NewCodeBlock creates a code block renderer.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language: language,
		Code:     code,
		MaxWidth: 80,
	}
}

var titleCaser = cases.Title(language.English)

// Render returns the styled block.
func (c CodeBlock) Render() string {
	code := strings.TrimRight(c.Code, "\n")
	highlighted := highlightCode(code, c.Language, c.Style)

	badge := lipgloss.NewStyle().
		Foreground(styles.TextDim).
		Background(styles.Overlay).
		Padding(0, 1).
		Bold(true).
		Render(titleCaser.String(c.Language))

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		Background(styles.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(badge + "\n" + highlighted)
}

// =============================================================================
// SYNTAX HIGHLIGHTING (chroma)
// =============================================================================

// highlightCode applies ANSI-safe syntax highlighting. The raw code comes
// back unchanged when anything in the pipeline fails.
func highlightCode(code, languageTag, styleName string) string {
	lexer := lexers.Get(languageTag)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Get("monokai")
	}
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the color theme for the minichat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// PALETTE
// =============================================================================

var (
	Purple   = lipgloss.Color("#a277ff")
	Cyan     = lipgloss.Color("#61ffca")
	Red      = lipgloss.Color("#ff6767")
	Text     = lipgloss.Color("#edecee")
	TextDim  = lipgloss.Color("#6d6d6d")
	Surface  = lipgloss.Color("#29263c")
	Overlay  = lipgloss.Color("#3d375e")

	lightText    = lipgloss.Color("#2a2a2a")
	lightTextDim = lipgloss.Color("#8a8a8a")
	lightSurface = lipgloss.Color("#ececec")
)

// =============================================================================
// THEME
// =============================================================================

// Theme bundles the styles used across the TUI. Built once at startup and
// rebuilt when the config watcher reports a theme change.
type Theme struct {
	Dark bool

	// Chrome
	Title     lipgloss.Style
	StatusBar lipgloss.Style
	ErrorBar  lipgloss.Style
	Help      lipgloss.Style

	// Sidebar
	Sidebar         lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style

	// Messages
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageText    lipgloss.Style
	ImageNote      lipgloss.Style

	// Input
	InputFrame lipgloss.Style
	Spinner    lipgloss.Style
}

// NewTheme builds a theme. mode is "dark", "light" or "auto"; auto asks the
// terminal for its background color.
func NewTheme(mode string) *Theme {
	dark := true
	switch mode {
	case "light":
		dark = false
	case "dark":
		dark = true
	default:
		dark = termenv.HasDarkBackground()
	}

	t := &Theme{Dark: dark}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	text, dim := Text, TextDim
	if !t.Dark {
		text, dim = lightText, lightTextDim
	}

	t.Title = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.StatusBar = lipgloss.NewStyle().Foreground(dim)
	t.ErrorBar = lipgloss.NewStyle().Foreground(Red).Bold(true)
	t.Help = lipgloss.NewStyle().Foreground(dim)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)
	t.SidebarItem = lipgloss.NewStyle().Foreground(text)
	t.SidebarSelected = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.MessageText = lipgloss.NewStyle().Foreground(text)
	t.ImageNote = lipgloss.NewStyle().Foreground(dim).Italic(true)

	t.InputFrame = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
}

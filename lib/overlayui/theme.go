// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package overlayui

import "github.com/charmbracelet/lipgloss"

// Theme is the viewer's color palette, in lipgloss ANSI 256-color
// codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Key-binding badge for a selectable reply.
	KeyForeground lipgloss.Color

	// Queued replies.
	QueuedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Connection problems.
	ErrorForeground lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	KeyForeground:    lipgloss.Color("220"), // amber
	QueuedForeground: lipgloss.Color("114"), // green

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	ErrorForeground: lipgloss.Color("196"),
}

// styles are the theme's lipgloss styles bound to one renderer.
type styles struct {
	header    lipgloss.Style
	key       lipgloss.Style
	queuedKey lipgloss.Style
	head      lipgloss.Style
	queued    lipgloss.Style
	meta      lipgloss.Style
	text      lipgloss.Style
	help      lipgloss.Style
	err       lipgloss.Style
	frame     lipgloss.Style
}

func newStyles(renderer *lipgloss.Renderer, theme Theme) styles {
	return styles{
		header:    renderer.NewStyle().Bold(true).Foreground(theme.HeaderForeground),
		key:       renderer.NewStyle().Bold(true).Foreground(theme.KeyForeground),
		queuedKey: renderer.NewStyle().Bold(true).Reverse(true).Foreground(theme.QueuedForeground),
		head:      renderer.NewStyle().Bold(true).Foreground(theme.NormalText),
		queued:    renderer.NewStyle().Foreground(theme.QueuedForeground),
		meta:      renderer.NewStyle().Foreground(theme.FaintText),
		text:      renderer.NewStyle().Foreground(theme.FaintText),
		help:      renderer.NewStyle().Foreground(theme.HelpText),
		err:       renderer.NewStyle().Foreground(theme.ErrorForeground),
		frame: renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.BorderColor).
			Padding(0, 1),
	}
}

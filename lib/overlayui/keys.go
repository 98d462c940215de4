// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package overlayui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the viewer's key bindings.
type KeyMap struct {
	// ToggleBlank shows or hides empty reply slots.
	ToggleBlank key.Binding

	// ToggleText shows or hides the full reply text under each
	// paraphrase.
	ToggleText key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	ToggleBlank: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "blank slots"),
	),
	ToggleText: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "full text"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns the bindings shown in the footer.
func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.ToggleBlank, keys.ToggleText, keys.Quit}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package overlayui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
)

// defaultWidth is used until the first WindowSizeMsg arrives.
const defaultWidth = 80

// ModelOptions configures a Model.
type ModelOptions struct {
	// Theme defaults to DefaultTheme.
	Theme *Theme

	// Keys defaults to DefaultKeyMap.
	Keys *KeyMap

	// Renderer defaults to lipgloss.DefaultRenderer(). Pass one with
	// an Ascii color profile for --no-color.
	Renderer *lipgloss.Renderer

	// Source names the control plane in the header.
	Source string
}

// Model is the bubbletea model for the terminal viewer.
type Model struct {
	events <-chan Event
	keys   KeyMap
	styles styles
	source string

	state     State
	connected bool
	lastError error

	showBlank bool
	showText  bool

	width int
}

// eventMsg wraps a stream Event for delivery through bubbletea.
type eventMsg struct {
	event Event
}

// streamClosedMsg reports that the event channel closed.
type streamClosedMsg struct{}

// NewModel creates a viewer model fed by events (typically from Stream).
func NewModel(events <-chan Event, options ModelOptions) Model {
	theme := DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}
	keys := DefaultKeyMap
	if options.Keys != nil {
		keys = *options.Keys
	}
	renderer := options.Renderer
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}

	model := Model{
		events:   events,
		keys:     keys,
		styles:   newStyles(renderer, theme),
		source:   options.Source,
		showText: true,
		width:    defaultWidth,
	}
	model.state.Reset()
	return model
}

// State returns the viewer's current copy of the control plane state.
func (model Model) State() State {
	return model.state
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	if model.events == nil {
		return nil
	}
	return listenForEvent(model.events)
}

// listenForEvent returns a tea.Cmd that blocks until an event arrives
// on the stream channel.
func listenForEvent(channel <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg{event: event}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit
		case key.Matches(message, model.keys.ToggleBlank):
			model.showBlank = !model.showBlank
		case key.Matches(message, model.keys.ToggleText):
			model.showText = !model.showText
		}

	case tea.WindowSizeMsg:
		model.width = message.Width

	case eventMsg:
		model.handleEvent(message.event)
		return model, listenForEvent(model.events)

	case streamClosedMsg:
		return model, tea.Quit
	}
	return model, nil
}

func (model *Model) handleEvent(event Event) {
	switch {
	case event.Connected:
		// The reconciliation replay follows and rebuilds everything.
		model.state.Reset()
		model.connected = true
		model.lastError = nil
	case event.Err != nil:
		model.connected = false
		model.lastError = event.Err
		model.state.Active = false
	case event.Notification != nil:
		model.state.Apply(event.Notification)
	}
}

// View implements tea.Model.
func (model Model) View() string {
	var lines []string
	lines = append(lines, model.headerLine())

	if model.state.Active {
		rows := 0
		for index, reply := range model.state.Replies {
			if blank(reply) && !model.showBlank {
				continue
			}
			lines = append(lines, model.replyLines(index, reply)...)
			rows++
		}
		if rows == 0 {
			lines = append(lines, model.styles.meta.Render("waiting for replies"))
		}
	} else if model.connected {
		lines = append(lines, model.styles.meta.Render("no conversation"))
	}

	if model.lastError != nil {
		lines = append(lines, model.styles.err.Render(model.truncate(model.lastError.Error())))
	}

	body := model.styles.frame.Render(strings.Join(lines, "\n"))
	return body + "\n" + model.helpLine()
}

func (model Model) headerLine() string {
	status := "disconnected"
	switch {
	case model.connected && model.state.Active:
		status = fmt.Sprintf("conversation (%d queued)", model.state.QueuedCount())
	case model.connected:
		status = "idle"
	}
	header := "ConvoSniffer"
	if model.source != "" {
		header += " " + model.source
	}
	return model.styles.header.Render(model.truncate(header + " | " + status))
}

// replyLines renders one slot: the key badge and paraphrase, then the
// full text when enabled.
func (model Model) replyLines(index int, reply conversation.Reply) []string {
	label := model.state.Keybinds[index]
	if label == "" {
		label = fmt.Sprint(index)
	}
	badge := model.styles.key.Render(fmt.Sprintf("[%s]", label))
	headStyle := model.styles.head
	if reply.Queued {
		badge = model.styles.queuedKey.Render(fmt.Sprintf("[%s]", label))
		headStyle = model.styles.queued
	}

	meta := strings.Join(nonEmpty(reply.Style, reply.Category), " / ")
	head := reply.Paraphrase
	if meta != "" {
		head += " " + model.styles.meta.Render("("+meta+")")
	}
	first := model.truncate(badge + " " + headStyle.Render(head))

	if !model.showText || reply.Text == "" {
		return []string{first}
	}
	indent := strings.Repeat(" ", ansi.StringWidth(fmt.Sprintf("[%s] ", label)))
	return []string{first, model.truncate(indent + model.styles.text.Render(reply.Text))}
}

func (model Model) helpLine() string {
	var parts []string
	for _, binding := range model.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return model.styles.help.Render(model.truncate(strings.Join(parts, "  ")))
}

// truncate fits a styled line inside the frame.
func (model Model) truncate(line string) string {
	// Border and padding take four columns.
	width := model.width - 4
	if width < 10 {
		width = 10
	}
	return ansi.Truncate(line, width, "…")
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, value := range values {
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

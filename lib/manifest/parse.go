// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"strconv"
	"strings"

	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
)

// KeybindDelimiter separates labels in a key-binding list.
const KeybindDelimiter = ";"

// recordFields names the six lines of a record, in order.
var recordFields = [...]string{"separator", "index", "style", "category", "paraphrase", "text"}

// Parse decodes a reply manifest into a complete slot array.
func Parse(source string) (conversation.Replies, error) {
	replies := conversation.BlankReplies()
	lines := splitLines(source)

	if len(lines) == 0 {
		return conversation.Replies{}, structural(-1, "count", "manifest is empty")
	}
	count, err := parseBounded(lines[0])
	if err != nil {
		return conversation.Replies{}, validation(-1, "count", "%q is not a valid reply count", lines[0])
	}
	if count >= conversation.Capacity {
		return conversation.Replies{}, validation(-1, "count", "reply count %d out of range [0, %d)", count, conversation.Capacity)
	}

	cursor := 1
	for record := 0; record < count; record++ {
		var fields [len(recordFields)]string
		for position, name := range recordFields {
			if cursor >= len(lines) {
				return conversation.Replies{}, structural(record, name, "manifest ended early")
			}
			fields[position] = lines[cursor]
			cursor++
		}

		if fields[0] != "" {
			return conversation.Replies{}, structural(record, "separator", "expected an empty line, got %q", fields[0])
		}
		index, err := parseBounded(fields[1])
		if err != nil {
			return conversation.Replies{}, validation(record, "index", "%q is not a valid reply index", fields[1])
		}
		if index >= conversation.Capacity {
			return conversation.Replies{}, validation(record, "index", "reply index %d out of range [0, %d)", index, conversation.Capacity)
		}

		replies[index] = conversation.Reply{
			ID:         index,
			Style:      fields[2],
			Category:   fields[3],
			Paraphrase: fields[4],
			Text:       fields[5],
		}
	}

	return replies, nil
}

// ParseKeybinds splits a key-binding list into exactly Capacity
// labels. Empty labels are allowed.
func ParseKeybinds(source string) (conversation.Keybinds, error) {
	tokens := strings.Split(source, KeybindDelimiter)
	if len(tokens) != conversation.Capacity {
		return conversation.Keybinds{}, structural(-1, "keybinds",
			"expected %d labels separated by %q, got %d", conversation.Capacity, KeybindDelimiter, len(tokens))
	}
	var keybinds conversation.Keybinds
	copy(keybinds[:], tokens)
	return keybinds, nil
}

// ParseIndex parses a single reply slot index.
func ParseIndex(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	index, err := parseBounded(trimmed)
	if err != nil {
		return 0, validation(-1, "index", "%q is not a valid reply index", trimmed)
	}
	if index >= conversation.Capacity {
		return 0, validation(-1, "index", "reply index %d out of range [0, %d)", index, conversation.Capacity)
	}
	return index, nil
}

// parseBounded parses a non-negative decimal integer. Signs are
// rejected so that "-0" and "+3" are not accepted as indices.
func parseBounded(text string) (int, error) {
	if text == "" || text[0] == '+' || text[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	value, err := strconv.ParseUint(text, 10, 31)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}

// splitLines splits on "\n" (tolerating "\r\n") and trims each line. A
// single trailing newline does not produce an extra empty line.
func splitLines(source string) []string {
	if source == "" {
		return nil
	}
	source = strings.TrimSuffix(source, "\n")
	raw := strings.Split(source, "\n")
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

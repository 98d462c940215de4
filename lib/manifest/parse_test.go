// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
)

func TestParseSingleRecord(t *testing.T) {
	t.Parallel()

	replies, err := Parse("1\n\n3\ncasual\ngreeting\nhi\nHello there")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := conversation.Reply{ID: 3, Style: "casual", Category: "greeting", Paraphrase: "hi", Text: "Hello there"}
	if replies[3] != want {
		t.Errorf("slot 3 = %+v, want %+v", replies[3], want)
	}
	for index, reply := range replies {
		if index == 3 {
			continue
		}
		if reply != (conversation.Reply{ID: index}) {
			t.Errorf("slot %d = %+v, want blank", index, reply)
		}
	}
}

func TestParseTrimsLinesAndKeepsEmptyText(t *testing.T) {
	t.Parallel()

	source := "2\r\n  \r\n 0 \n\tagree\n\n  yes  \n\n\n15\nx\ny\nz\nlast\n"
	replies, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if replies[0].Style != "agree" || replies[0].Category != "" || replies[0].Paraphrase != "yes" || replies[0].Text != "" {
		t.Errorf("slot 0 = %+v", replies[0])
	}
	if replies[15].Text != "last" || replies[15].ID != 15 {
		t.Errorf("slot 15 = %+v", replies[15])
	}
}

func TestParseDuplicateIndexLastWins(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"2",
		"", "5", "s1", "c1", "p1", "first",
		"", "5", "s2", "c2", "p2", "second",
	}, "\n")
	replies, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if replies[5].Text != "second" || replies[5].Style != "s2" {
		t.Errorf("slot 5 = %+v, want the second record", replies[5])
	}
}

func TestParseZeroCount(t *testing.T) {
	t.Parallel()

	replies, err := Parse("0")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if replies != conversation.BlankReplies() {
		t.Error("zero-count manifest did not produce blank replies")
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		kind   ErrorKind
		record int
		field  string
	}{
		{"empty", "", Structural, -1, "count"},
		{"non-numeric count", "many", Validation, -1, "count"},
		{"negative count", "-1", Validation, -1, "count"},
		{"count at capacity", "16", Validation, -1, "count"},
		{"missing separator", "1", Structural, 0, "separator"},
		{"non-empty separator", "1\nx\n0\na\nb\nc\nd", Structural, 0, "separator"},
		{"truncated record", "1\n\n0\nstyle\ncategory", Structural, 0, "paraphrase"},
		{"missing text of second record", "2\n\n0\na\nb\nc\nd\n\n1\na\nb\nc", Structural, 1, "text"},
		{"non-numeric index", "1\n\nseven\na\nb\nc\nd", Validation, 0, "index"},
		{"index at capacity", "1\n\n16\na\nb\nc\nd", Validation, 0, "index"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(test.source)
			var parseError *Error
			if !errors.As(err, &parseError) {
				t.Fatalf("Parse error = %v, want *Error", err)
			}
			if parseError.Kind != test.kind || parseError.Record != test.record || parseError.Field != test.field {
				t.Errorf("got kind=%v record=%d field=%s, want kind=%v record=%d field=%s (%v)",
					parseError.Kind, parseError.Record, parseError.Field,
					test.kind, test.record, test.field, err)
			}
		})
	}
}

func TestParseKeybinds(t *testing.T) {
	t.Parallel()

	keybinds, err := ParseKeybinds("a;b;c;d;e;f;g;h;i;j;k;l;m;n;o;p")
	if err != nil {
		t.Fatalf("ParseKeybinds: %v", err)
	}
	if keybinds[0] != "a" || keybinds[15] != "p" {
		t.Errorf("keybinds = %v", keybinds)
	}

	empty, err := ParseKeybinds(strings.Repeat(";", conversation.Capacity-1))
	if err != nil {
		t.Fatalf("ParseKeybinds(all empty): %v", err)
	}
	if empty != (conversation.Keybinds{}) {
		t.Errorf("all-empty keybinds = %v", empty)
	}

	for _, count := range []int{1, 3, conversation.Capacity - 1, conversation.Capacity + 1} {
		tokens := make([]string, count)
		for i := range tokens {
			tokens[i] = "k"
		}
		_, err := ParseKeybinds(strings.Join(tokens, ";"))
		var parseError *Error
		if !errors.As(err, &parseError) || parseError.Kind != Structural {
			t.Errorf("ParseKeybinds with %d tokens: error = %v, want structural error", count, err)
		}
	}
}

func TestParseIndex(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]int{"0": 0, "15": 15, " 7\n": 7} {
		index, err := ParseIndex(raw)
		if err != nil || index != want {
			t.Errorf("ParseIndex(%q) = %d, %v; want %d", raw, index, err, want)
		}
	}
	for _, raw := range []string{"", "16", "-1", "+1", "x", "99999999999999999999"} {
		if _, err := ParseIndex(raw); err == nil {
			t.Errorf("ParseIndex(%q) succeeded, want error", raw)
		}
	}
}

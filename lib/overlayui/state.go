// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package overlayui

import "github.com/bureau-foundation/convosniffer/lib/schema/conversation"

// State is a viewer's local copy of the control plane state.
type State struct {
	Active   bool
	Replies  conversation.Replies
	Keybinds conversation.Keybinds
}

// Reset returns the state to what a fresh control plane reports: no
// conversation and empty key bindings.
func (s *State) Reset() {
	*s = State{Replies: conversation.BlankReplies()}
}

// Apply folds one notification into the state.
func (s *State) Apply(notification conversation.Notification) {
	switch n := notification.(type) {
	case conversation.ConversationState:
		s.Active = n.Start
		s.Replies = conversation.BlankReplies()
	case conversation.RepliesReplaced:
		s.Replies = conversation.BlankReplies()
		for _, reply := range n.Replies {
			if reply.ID >= 0 && reply.ID < conversation.Capacity {
				s.Replies[reply.ID] = reply
			}
		}
	case conversation.ReplyQueued:
		if n.Index >= 0 && n.Index < conversation.Capacity {
			s.Replies[n.Index].Queued = true
		}
	case conversation.KeybindsSet:
		s.Keybinds = conversation.Keybinds{}
		copy(s.Keybinds[:], n.Keybinds)
	}
}

// QueuedCount returns the number of queued replies.
func (s *State) QueuedCount() int {
	count := 0
	for _, reply := range s.Replies {
		if reply.Queued {
			count++
		}
	}
	return count
}

// blank reports whether a slot carries no reply.
func blank(reply conversation.Reply) bool {
	return reply.Paraphrase == "" && reply.Text == "" && reply.Style == "" && reply.Category == ""
}

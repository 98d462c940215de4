// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package conversation

// Capacity is the number of reply slots in a conversation and the
// number of labels in a key-binding layout.
const Capacity = 16

// Reply is one selectable conversational reply. ID always equals the
// slot index the reply occupies.
type Reply struct {
	ID         int    `json:"id"`
	Style      string `json:"style"`
	Category   string `json:"category"`
	Paraphrase string `json:"paraphrase"`
	Text       string `json:"text"`

	// Queued is set when the controller marks the reply for use. It
	// is never cleared individually; a bulk replace resets it.
	Queued bool `json:"queued"`
}

// Replies is the full slot array of a conversation. All slots are
// always present; an empty slot is a blank Reply carrying its ID.
type Replies [Capacity]Reply

// BlankReplies returns a slot array with every slot blank and every ID
// set to its index.
func BlankReplies() Replies {
	var replies Replies
	for index := range replies {
		replies[index].ID = index
	}
	return replies
}

// Slice copies the array into a fresh slice. Notifications carry
// slices so that a published snapshot never aliases store memory.
func (replies *Replies) Slice() []Reply {
	out := make([]Reply, Capacity)
	copy(out, replies[:])
	return out
}

// Keybinds is the key-binding layout: one label per reply slot, by
// position.
type Keybinds [Capacity]string

// Slice copies the layout into a fresh slice.
func (keybinds *Keybinds) Slice() []string {
	out := make([]string, Capacity)
	copy(out, keybinds[:])
	return out
}

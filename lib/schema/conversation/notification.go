// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind names a notification variant. The string values are the wire
// discriminants.
type Kind string

const (
	KindConversationState Kind = "Conversation"
	KindRepliesReplaced   Kind = "UpdateReplies"
	KindReplyQueued       Kind = "QueueReply"
	KindKeybindsSet       Kind = "SetKeybinds"
)

// Notification is an event published after a successful store
// mutation. The set of implementations is closed: the unexported
// method keeps other packages from adding variants.
type Notification interface {
	Kind() Kind
	notification()
}

// ConversationState reports that a conversation started or ended.
type ConversationState struct {
	Start bool `json:"start"`
}

// RepliesReplaced carries the full reply array after a bulk update.
type RepliesReplaced struct {
	Replies []Reply `json:"replies"`
}

// ReplyQueued reports that one slot's Queued flag became true. Unlike
// the other variants it is a delta, not a snapshot.
type ReplyQueued struct {
	Index int `json:"index"`
}

// KeybindsSet carries the full key-binding layout.
type KeybindsSet struct {
	Keybinds []string `json:"keybinds"`
}

func (ConversationState) Kind() Kind { return KindConversationState }
func (RepliesReplaced) Kind() Kind   { return KindRepliesReplaced }
func (ReplyQueued) Kind() Kind       { return KindReplyQueued }
func (KeybindsSet) Kind() Kind       { return KindKeybindsSet }

func (ConversationState) notification() {}
func (RepliesReplaced) notification()   {}
func (ReplyQueued) notification()       {}
func (KeybindsSet) notification()       {}

// Envelope is the wire form of a Notification. Exactly one field is
// set on a well-formed envelope.
type Envelope struct {
	Conversation  *ConversationState `json:"Conversation,omitempty"`
	UpdateReplies *RepliesReplaced   `json:"UpdateReplies,omitempty"`
	QueueReply    *ReplyQueued       `json:"QueueReply,omitempty"`
	SetKeybinds   *KeybindsSet       `json:"SetKeybinds,omitempty"`
}

// ErrMalformedEnvelope is returned when an envelope does not name
// exactly one variant.
var ErrMalformedEnvelope = errors.New("notification envelope must carry exactly one variant")

// Wrap places a notification into its envelope.
func Wrap(notification Notification) Envelope {
	switch value := notification.(type) {
	case ConversationState:
		return Envelope{Conversation: &value}
	case RepliesReplaced:
		return Envelope{UpdateReplies: &value}
	case ReplyQueued:
		return Envelope{QueueReply: &value}
	case KeybindsSet:
		return Envelope{SetKeybinds: &value}
	}
	// Unreachable: the interface is sealed.
	panic(fmt.Sprintf("conversation: unknown notification type %T", notification))
}

// Notification unwraps the envelope, failing unless exactly one
// variant is present.
func (envelope Envelope) Notification() (Notification, error) {
	var found []Notification
	if envelope.Conversation != nil {
		found = append(found, *envelope.Conversation)
	}
	if envelope.UpdateReplies != nil {
		found = append(found, *envelope.UpdateReplies)
	}
	if envelope.QueueReply != nil {
		found = append(found, *envelope.QueueReply)
	}
	if envelope.SetKeybinds != nil {
		found = append(found, *envelope.SetKeybinds)
	}
	if len(found) != 1 {
		return nil, ErrMalformedEnvelope
	}
	return found[0], nil
}

// EncodeJSON encodes a notification as a JSON envelope.
func EncodeJSON(notification Notification) ([]byte, error) {
	return json.Marshal(Wrap(notification))
}

// DecodeJSON decodes a JSON envelope into its notification.
func DecodeJSON(data []byte) (Notification, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decoding notification: %w", err)
	}
	return envelope.Notification()
}

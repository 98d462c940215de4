// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package convostore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bureau-foundation/convosniffer/lib/manifest"
	"github.com/bureau-foundation/convosniffer/lib/notify"
	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
)

// ErrNoConversation is returned by QueueReply when no conversation is
// active.
var ErrNoConversation = errors.New("conversation not started")

// Bus is the notification bus a Store publishes to.
type Bus = notify.Bus[conversation.Notification]

// Subscription is a viewer's subscription to a Store's bus.
type Subscription = notify.Subscription[conversation.Notification]

// Snapshot is a consistent copy of the store state.
type Snapshot struct {
	// Active reports whether a conversation is in progress. Replies
	// is meaningful only when Active is true.
	Active   bool
	Replies  conversation.Replies
	Keybinds conversation.Keybinds
}

// Store is the process-wide conversation state. Create one per process
// with New.
type Store struct {
	bus *Bus

	mu       sync.RWMutex
	active   bool
	replies  conversation.Replies
	keybinds conversation.Keybinds
}

// New creates a store with no active conversation and an empty
// key-binding layout, publishing to bus.
func New(bus *Bus) *Store {
	if bus == nil {
		panic("convostore.New: bus is required")
	}
	return &Store{bus: bus}
}

// Start begins a new, blank conversation, replacing any active one.
func (s *Store) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = true
	s.replies = conversation.BlankReplies()
	s.bus.Publish(conversation.ConversationState{Start: true})
}

// End clears the active conversation. It notifies viewers even when
// nothing was active.
func (s *Store) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = false
	s.replies = conversation.Replies{}
	s.bus.Publish(conversation.ConversationState{Start: false})
}

// ReplaceReplies parses a reply manifest and installs it as the active
// conversation's replies. If no conversation is active one is started
// first, and its start notification precedes the replacement. On a
// parse error nothing changes.
func (s *Store) ReplaceReplies(source string) error {
	// Parsing is pure; keep it outside the lock.
	replies, err := manifest.Parse(source)
	if err != nil {
		return fmt.Errorf("invalid reply manifest: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		s.active = true
		s.bus.Publish(conversation.ConversationState{Start: true})
	}
	s.replies = replies
	s.bus.Publish(conversation.RepliesReplaced{Replies: s.replies.Slice()})
	return nil
}

// QueueReply marks one reply slot as queued. Queueing an already
// queued slot succeeds and notifies again.
func (s *Store) QueueReply(rawIndex string) error {
	index, err := manifest.ParseIndex(rawIndex)
	if err != nil {
		return fmt.Errorf("invalid reply index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return ErrNoConversation
	}
	s.replies[index].Queued = true
	s.bus.Publish(conversation.ReplyQueued{Index: index})
	return nil
}

// SetKeybinds replaces the key-binding layout from a semicolon
// separated list of exactly conversation.Capacity labels.
func (s *Store) SetKeybinds(source string) error {
	keybinds, err := manifest.ParseKeybinds(source)
	if err != nil {
		return fmt.Errorf("invalid keybind list: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.keybinds = keybinds
	s.bus.Publish(conversation.KeybindsSet{Keybinds: s.keybinds.Slice()})
	return nil
}

// Conversation returns a copy of the active conversation's replies,
// or false if none is active.
func (s *Store) Conversation() (conversation.Replies, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return conversation.Replies{}, false
	}
	return s.replies, true
}

// Keybinds returns a copy of the key-binding layout.
func (s *Store) Keybinds() conversation.Keybinds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keybinds
}

// Snapshot returns a consistent copy of both pieces of state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Attach subscribes to the bus and snapshots the state atomically with
// respect to mutations: every notification delivered on the returned
// subscription describes a change made after the snapshot.
func (s *Store) Attach(id string) (*Subscription, Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscription, err := s.bus.Subscribe(id)
	if err != nil {
		return nil, Snapshot{}, fmt.Errorf("subscribing viewer %s: %w", id, err)
	}
	return subscription, s.snapshotLocked(), nil
}

// Resync discards the subscription's undelivered backlog and returns
// a fresh snapshot, atomically with respect to mutations. A consumer
// that lost notifications to ring overflow replays the snapshot and
// then continues with the notifications that follow it.
func (s *Store) Resync(subscription *Subscription) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscription.Discard()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Active:   s.active,
		Replies:  s.replies,
		Keybinds: s.keybinds,
	}
}

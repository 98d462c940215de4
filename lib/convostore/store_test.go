// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package convostore

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/convosniffer/lib/manifest"
	"github.com/bureau-foundation/convosniffer/lib/notify"
	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
)

// newTestStore returns a store and a subscription that observes every
// notification it publishes.
func newTestStore(t *testing.T) (*Store, *Subscription) {
	t.Helper()
	bus := notify.New[conversation.Notification](256)
	store := New(bus)
	subscription, err := bus.Subscribe("test")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	t.Cleanup(subscription.Close)
	return store, subscription
}

// drain returns every notification currently pending.
func drain(t *testing.T, subscription *Subscription) []conversation.Notification {
	t.Helper()
	var out []conversation.Notification
	for subscription.Stats().Pending > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		delivery, err := subscription.Next(ctx)
		cancel()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, delivery.Value)
	}
	return out
}

const greetingManifest = "1\n\n3\ncasual\ngreeting\nhi\nHello there"

func TestStartThenReplaceReplies(t *testing.T) {
	t.Parallel()
	store, subscription := newTestStore(t)

	store.Start()
	if err := store.ReplaceReplies(greetingManifest); err != nil {
		t.Fatalf("ReplaceReplies: %v", err)
	}

	replies, active := store.Conversation()
	if !active {
		t.Fatal("no active conversation after Start")
	}
	want := conversation.BlankReplies()
	want[3] = conversation.Reply{ID: 3, Style: "casual", Category: "greeting", Paraphrase: "hi", Text: "Hello there"}
	if replies != want {
		t.Errorf("replies = %+v, want %+v", replies, want)
	}

	got := drain(t, subscription)
	wantNotifications := []conversation.Notification{
		conversation.ConversationState{Start: true},
		conversation.RepliesReplaced{Replies: want.Slice()},
	}
	if !reflect.DeepEqual(got, wantNotifications) {
		t.Errorf("notifications = %+v, want %+v", got, wantNotifications)
	}
}

func TestReplaceRepliesStartsConversationImplicitly(t *testing.T) {
	t.Parallel()
	store, subscription := newTestStore(t)

	if err := store.ReplaceReplies(greetingManifest); err != nil {
		t.Fatalf("ReplaceReplies: %v", err)
	}
	if _, active := store.Conversation(); !active {
		t.Fatal("ReplaceReplies did not start a conversation")
	}

	got := drain(t, subscription)
	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2: %+v", len(got), got)
	}
	if got[0] != (conversation.ConversationState{Start: true}) {
		t.Errorf("first notification = %+v, want conversation start", got[0])
	}
	if got[1].Kind() != conversation.KindRepliesReplaced {
		t.Errorf("second notification = %+v, want replies replaced", got[1])
	}
}

func TestReplaceRepliesResetsQueuedFlags(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	store.Start()
	if err := store.ReplaceReplies(greetingManifest); err != nil {
		t.Fatalf("ReplaceReplies: %v", err)
	}
	if err := store.QueueReply("3"); err != nil {
		t.Fatalf("QueueReply: %v", err)
	}
	if err := store.ReplaceReplies(greetingManifest); err != nil {
		t.Fatalf("ReplaceReplies: %v", err)
	}
	replies, _ := store.Conversation()
	if replies[3].Queued {
		t.Error("bulk replace preserved a queued flag")
	}
}

func TestInvalidManifestLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	for name, source := range map[string]string{
		"bad count":           "16",
		"bad index":           "1\n\n99\na\nb\nc\nd",
		"non-empty separator": "1\n-\n1\na\nb\nc\nd",
		"truncated":           "2\n\n1\na\nb\nc\nd\n\n2\na",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store, subscription := newTestStore(t)
			store.Start()
			if err := store.ReplaceReplies(greetingManifest); err != nil {
				t.Fatalf("ReplaceReplies: %v", err)
			}
			drain(t, subscription)
			before := store.Snapshot()

			err := store.ReplaceReplies(source)
			var parseError *manifest.Error
			if !errors.As(err, &parseError) {
				t.Fatalf("ReplaceReplies error = %v, want *manifest.Error", err)
			}
			if after := store.Snapshot(); after != before {
				t.Errorf("state changed after rejected manifest:\nbefore %+v\nafter  %+v", before, after)
			}
			if got := drain(t, subscription); len(got) != 0 {
				t.Errorf("rejected manifest published %+v", got)
			}
		})
	}
}

func TestInvalidManifestDoesNotStartConversation(t *testing.T) {
	t.Parallel()
	store, subscription := newTestStore(t)

	if err := store.ReplaceReplies("not a count"); err == nil {
		t.Fatal("ReplaceReplies succeeded on garbage")
	}
	if _, active := store.Conversation(); active {
		t.Error("rejected manifest started a conversation")
	}
	if got := drain(t, subscription); len(got) != 0 {
		t.Errorf("rejected manifest published %+v", got)
	}
}

func TestQueueReply(t *testing.T) {
	t.Parallel()
	store, subscription := newTestStore(t)

	store.Start()
	if err := store.ReplaceReplies(greetingManifest); err != nil {
		t.Fatalf("ReplaceReplies: %v", err)
	}
	before, _ := store.Conversation()
	drain(t, subscription)

	for attempt := 0; attempt < 2; attempt++ {
		if err := store.QueueReply("3"); err != nil {
			t.Fatalf("QueueReply attempt %d: %v", attempt, err)
		}
	}

	after, _ := store.Conversation()
	for index := range after {
		if index == 3 {
			if !after[index].Queued {
				t.Error("slot 3 not queued")
			}
			expected := before[index]
			expected.Queued = true
			if after[index] != expected {
				t.Errorf("slot 3 = %+v, want %+v", after[index], expected)
			}
			continue
		}
		if after[index] != before[index] {
			t.Errorf("slot %d changed: %+v -> %+v", index, before[index], after[index])
		}
	}

	got := drain(t, subscription)
	want := []conversation.Notification{conversation.ReplyQueued{Index: 3}, conversation.ReplyQueued{Index: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("notifications = %+v, want %+v", got, want)
	}
}

func TestQueueReplyErrors(t *testing.T) {
	t.Parallel()
	store, subscription := newTestStore(t)

	for _, raw := range []string{"0", "15"} {
		if err := store.QueueReply(raw); !errors.Is(err, ErrNoConversation) {
			t.Errorf("QueueReply(%s) without conversation: error = %v, want ErrNoConversation", raw, err)
		}
	}

	store.Start()
	drain(t, subscription)
	for _, raw := range []string{"16", "-1", "three", ""} {
		err := store.QueueReply(raw)
		var parseError *manifest.Error
		if !errors.As(err, &parseError) || parseError.Kind != manifest.Validation {
			t.Errorf("QueueReply(%q) error = %v, want validation error", raw, err)
		}
	}
	if got := drain(t, subscription); len(got) != 0 {
		t.Errorf("failed QueueReply calls published %+v", got)
	}
}

func TestStartIsSoftReset(t *testing.T) {
	t.Parallel()
	store, subscription := newTestStore(t)

	store.Start()
	if err := store.ReplaceReplies(greetingManifest); err != nil {
		t.Fatalf("ReplaceReplies: %v", err)
	}
	drain(t, subscription)

	store.Start()
	replies, active := store.Conversation()
	if !active || replies != conversation.BlankReplies() {
		t.Errorf("second Start did not reset: active=%v replies=%+v", active, replies)
	}
	got := drain(t, subscription)
	if len(got) != 1 || got[0] != (conversation.ConversationState{Start: true}) {
		t.Errorf("notifications = %+v, want one conversation start", got)
	}
}

func TestEndIsSoft(t *testing.T) {
	t.Parallel()
	store, subscription := newTestStore(t)

	store.End()
	store.Start()
	store.End()
	if _, active := store.Conversation(); active {
		t.Error("conversation still active after End")
	}

	got := drain(t, subscription)
	want := []conversation.Notification{
		conversation.ConversationState{Start: false},
		conversation.ConversationState{Start: true},
		conversation.ConversationState{Start: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("notifications = %+v, want %+v", got, want)
	}
}

func TestSetKeybinds(t *testing.T) {
	t.Parallel()
	store, subscription := newTestStore(t)

	labels := strings.Split("a;b;c;d;e;f;g;h;i;j;k;l;m;n;o;p", ";")
	if err := store.SetKeybinds(strings.Join(labels, ";")); err != nil {
		t.Fatalf("SetKeybinds: %v", err)
	}
	keybinds := store.Keybinds()
	if !reflect.DeepEqual(keybinds[:], labels) {
		t.Errorf("keybinds = %v, want %v", keybinds, labels)
	}

	if err := store.SetKeybinds("a;b;c"); err == nil {
		t.Fatal("SetKeybinds accepted 3 labels")
	}
	if store.Keybinds() != keybinds {
		t.Error("rejected keybind list changed the layout")
	}

	got := drain(t, subscription)
	want := []conversation.Notification{conversation.KeybindsSet{Keybinds: labels}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("notifications = %+v, want %+v", got, want)
	}
}

func TestKeybindsOutliveConversations(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	if err := store.SetKeybinds("0;1;2;3;4;5;6;7;8;9;A;B;C;D;E;F"); err != nil {
		t.Fatalf("SetKeybinds: %v", err)
	}
	store.Start()
	store.End()
	if keybinds := store.Keybinds(); keybinds[10] != "A" {
		t.Errorf("keybinds lost across conversation lifecycle: %v", keybinds)
	}
}

func TestPublishedSnapshotsAreIsolated(t *testing.T) {
	t.Parallel()
	store, subscription := newTestStore(t)

	if err := store.ReplaceReplies(greetingManifest); err != nil {
		t.Fatalf("ReplaceReplies: %v", err)
	}
	got := drain(t, subscription)
	replaced := got[1].(conversation.RepliesReplaced)

	if err := store.QueueReply("3"); err != nil {
		t.Fatalf("QueueReply: %v", err)
	}
	if replaced.Replies[3].Queued {
		t.Error("a delivered snapshot observed a later in-place mutation")
	}
}

func TestAttachSnapshotPrecedesSubscription(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	store.Start()
	subscription, snapshot, err := store.Attach("viewer")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer subscription.Close()

	if !snapshot.Active {
		t.Error("snapshot missed the active conversation")
	}
	if subscription.Stats().Pending != 0 {
		t.Error("subscription received a notification already covered by the snapshot")
	}

	store.End()
	if subscription.Stats().Pending != 1 {
		t.Error("subscription missed a notification published after Attach")
	}
}

func TestResyncDiscardsBacklog(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	subscription, _, err := store.Attach("viewer")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer subscription.Close()

	store.Start()
	if err := store.QueueReply("2"); err != nil {
		t.Fatalf("QueueReply: %v", err)
	}
	snapshot := store.Resync(subscription)
	if !snapshot.Active || !snapshot.Replies[2].Queued {
		t.Errorf("resync snapshot = %+v", snapshot)
	}
	if pending := subscription.Stats().Pending; pending != 0 {
		t.Errorf("pending after resync = %d, want 0", pending)
	}
}

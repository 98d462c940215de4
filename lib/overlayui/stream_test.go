// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package overlayui

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/convosniffer/lib/clock"
	"github.com/bureau-foundation/convosniffer/lib/controlplane"
	"github.com/bureau-foundation/convosniffer/lib/convostore"
	notifybus "github.com/bureau-foundation/convosniffer/lib/notify"
	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
	"github.com/bureau-foundation/convosniffer/lib/testutil"
	"github.com/bureau-foundation/convosniffer/lib/viewer"
)

const waitTimeout = 5 * time.Second

func startControlPlane(t *testing.T, encoding viewer.Encoding) (*convostore.Store, *controlplane.Server, string) {
	t.Helper()
	bus := notifybus.New[conversation.Notification](64)
	store := convostore.New(bus)
	server := controlplane.New(controlplane.Config{
		Store:    store,
		Bus:      bus,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Encoding: encoding,
	})
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		server.Close()
		httpServer.Close()
	})
	return store, server, "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/socket"
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	return testutil.RequireReceive(t, events, waitTimeout, "waiting for stream event")
}

func TestStreamDeliversReplayAndLiveNotifications(t *testing.T) {
	t.Parallel()
	for _, encoding := range []viewer.Encoding{viewer.EncodingJSON, viewer.EncodingCBOR} {
		t.Run(string(encoding), func(t *testing.T) {
			t.Parallel()
			store, server, url := startControlPlane(t, encoding)
			store.Start()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			events := Stream(ctx, StreamConfig{URL: url})

			if event := nextEvent(t, events); !event.Connected {
				t.Fatalf("first event = %+v, want Connected", event)
			}
			blankReplies := conversation.BlankReplies()
			want := []conversation.Notification{
				conversation.KeybindsSet{Keybinds: make([]string, conversation.Capacity)},
				conversation.ConversationState{Start: true},
				conversation.RepliesReplaced{Replies: blankReplies.Slice()},
			}
			for index, expected := range want {
				event := nextEvent(t, events)
				if !reflect.DeepEqual(event.Notification, expected) {
					t.Fatalf("event %d = %+v, want %+v", index, event.Notification, expected)
				}
			}

			if err := store.QueueReply("4"); err != nil {
				t.Fatalf("QueueReply: %v", err)
			}
			if event := nextEvent(t, events); !reflect.DeepEqual(event.Notification, conversation.ReplyQueued{Index: 4}) {
				t.Fatalf("live event = %+v", event)
			}

			// Closing the server ends the connection; without
			// Reconnect the stream reports why and closes.
			server.Close()
			if event := nextEvent(t, events); event.Err == nil {
				t.Fatalf("event after server close = %+v, want Err", event)
			}
			if _, ok := <-events; ok {
				t.Error("stream still open after connection ended")
			}
		})
	}
}

func TestStreamReconnectBackoff(t *testing.T) {
	t.Parallel()

	// A port with nothing listening.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	address := listener.Addr().String()
	listener.Close()

	fake := clock.Fake(time.Unix(1_700_000_000, 0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := Stream(ctx, StreamConfig{
		URL:        "ws://" + address + "/socket",
		Clock:      fake,
		MinBackoff: time.Second,
		MaxBackoff: 4 * time.Second,
		Reconnect:  true,
	})

	delays := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second}
	for attempt, delay := range delays {
		if event := nextEvent(t, events); event.Err == nil {
			t.Fatalf("attempt %d: event = %+v, want dial error", attempt, event)
		}
		fake.WaitForTimers(1)

		// Just short of the backoff, nothing happens.
		fake.Advance(delay - time.Millisecond)
		testutil.RequireNoReceive(t, events, 50*time.Millisecond, "attempt %d: redial before backoff elapsed", attempt)
		fake.Advance(time.Millisecond)
	}

	cancel()
	for range events {
	}
}

func TestPrintEvents(t *testing.T) {
	t.Parallel()
	events := make(chan Event, 8)
	events <- Event{Connected: true}
	events <- Event{Notification: conversation.ConversationState{Start: true}}
	events <- Event{Notification: conversation.ReplyQueued{Index: 7}}
	events <- Event{Err: io.ErrUnexpectedEOF}
	close(events)

	var output strings.Builder
	err := PrintEvents(context.Background(), &output, events)
	if err != io.ErrUnexpectedEOF {
		t.Errorf("PrintEvents error = %v, want the stream error", err)
	}
	want := `{"Conversation":{"start":true}}` + "\n" + `{"QueueReply":{"index":7}}` + "\n"
	if output.String() != want {
		t.Errorf("output = %q, want %q", output.String(), want)
	}
}

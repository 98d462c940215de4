// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package overlayui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/convosniffer/lib/clock"
	"github.com/bureau-foundation/convosniffer/lib/codec"
	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
)

// Event is one item from a Stream. Exactly one of the fields is
// meaningful: Connected marks a new connection (a reconciliation replay
// follows), Notification carries a decoded notification, and Err
// reports why the connection ended.
type Event struct {
	Connected    bool
	Notification conversation.Notification
	Err          error
}

// StreamConfig configures Stream.
type StreamConfig struct {
	// URL is the websocket endpoint, e.g. ws://127.0.0.1:21830/socket.
	// Required.
	URL string

	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer

	// Clock drives reconnect backoff. Defaults to the real clock.
	Clock clock.Clock

	// MinBackoff and MaxBackoff bound the delay between reconnect
	// attempts. Defaults: 500ms and 8s.
	MinBackoff time.Duration
	MaxBackoff time.Duration

	// Reconnect keeps dialing after a connection ends. When false the
	// stream closes after the first connection (or dial failure).
	Reconnect bool

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Decode turns one websocket frame into a notification: text frames are
// JSON envelopes, binary frames CBOR envelopes.
func Decode(messageType int, data []byte) (conversation.Notification, error) {
	switch messageType {
	case websocket.TextMessage:
		return conversation.DecodeJSON(data)
	case websocket.BinaryMessage:
		var envelope conversation.Envelope
		if err := codec.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("decoding notification: %w", err)
		}
		return envelope.Notification()
	default:
		return nil, fmt.Errorf("unexpected websocket message type %d", messageType)
	}
}

// Stream connects to the control plane and returns a channel of events.
// The channel closes when ctx is done, or after the first connection
// ends if config.Reconnect is false.
func Stream(ctx context.Context, config StreamConfig) <-chan Event {
	if config.URL == "" {
		panic("overlayui.Stream: URL is required")
	}
	if config.Dialer == nil {
		config.Dialer = websocket.DefaultDialer
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.MinBackoff <= 0 {
		config.MinBackoff = 500 * time.Millisecond
	}
	if config.MaxBackoff < config.MinBackoff {
		config.MaxBackoff = 8 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		backoff := config.MinBackoff
		for {
			connected, err := streamOnce(ctx, config, events)
			if ctx.Err() != nil {
				return
			}
			if !send(ctx, events, Event{Err: err}) || !config.Reconnect {
				return
			}
			if connected {
				backoff = config.MinBackoff
			}
			config.Logger.Debug("reconnecting to control plane", "url", config.URL, "delay", backoff, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-config.Clock.After(backoff):
			}
			backoff = min(backoff*2, config.MaxBackoff)
		}
	}()
	return events
}

// streamOnce runs one connection, reporting whether the dial succeeded
// and the error that ended it.
func streamOnce(ctx context.Context, config StreamConfig, events chan<- Event) (bool, error) {
	conn, _, err := config.Dialer.DialContext(ctx, config.URL, nil)
	if err != nil {
		return false, fmt.Errorf("dialing %s: %w", config.URL, err)
	}
	defer conn.Close()

	// Unblock ReadMessage when ctx ends.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if !send(ctx, events, Event{Connected: true}) {
		return true, ctx.Err()
	}
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("reading from %s: %w", config.URL, err)
		}
		notification, err := Decode(messageType, data)
		if err != nil {
			return true, err
		}
		if !send(ctx, events, Event{Notification: notification}) {
			return true, ctx.Err()
		}
	}
}

func send(ctx context.Context, events chan<- Event, event Event) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

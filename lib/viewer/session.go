// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/convosniffer/lib/clock"
	"github.com/bureau-foundation/convosniffer/lib/convostore"
	"github.com/bureau-foundation/convosniffer/lib/notify"
	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
)

// Conn is the viewer side of a connection.
type Conn interface {
	// Send delivers one notification. An error means the viewer is
	// gone; the session ends.
	Send(notification conversation.Notification) error

	// Done is closed when the peer disconnects.
	Done() <-chan struct{}
}

// Source is the part of convostore.Store a session uses.
type Source interface {
	Attach(id string) (*convostore.Subscription, convostore.Snapshot, error)
	Resync(subscription *convostore.Subscription) convostore.Snapshot
}

// Reconcile sends the replay for snapshot: keybinds, then, if a
// conversation is active, its start followed by its replies. It stops
// at the first send failure.
func Reconcile(conn Conn, snapshot convostore.Snapshot) error {
	if err := conn.Send(conversation.KeybindsSet{Keybinds: snapshot.Keybinds.Slice()}); err != nil {
		return fmt.Errorf("sending keybinds: %w", err)
	}
	if !snapshot.Active {
		return nil
	}
	if err := conn.Send(conversation.ConversationState{Start: true}); err != nil {
		return fmt.Errorf("sending conversation start: %w", err)
	}
	if err := conn.Send(conversation.RepliesReplaced{Replies: snapshot.Replies.Slice()}); err != nil {
		return fmt.Errorf("sending replies: %w", err)
	}
	return nil
}

// Resynchronize brings a viewer that missed notifications back to
// snapshot. Unlike Reconcile it cannot assume the viewer shows no
// conversation, so an inactive snapshot is sent as an explicit end.
func Resynchronize(conn Conn, snapshot convostore.Snapshot) error {
	if snapshot.Active {
		return Reconcile(conn, snapshot)
	}
	if err := conn.Send(conversation.KeybindsSet{Keybinds: snapshot.Keybinds.Slice()}); err != nil {
		return fmt.Errorf("sending keybinds: %w", err)
	}
	if err := conn.Send(conversation.ConversationState{Start: false}); err != nil {
		return fmt.Errorf("sending conversation end: %w", err)
	}
	return nil
}

// Forward relays notifications from subscription to conn until a send
// fails, the subscription closes, or ctx is done. When a delivery
// reports missed notifications, resync is called for a fresh snapshot
// and the viewer is resynchronized to it instead.
//
// Forward returns nil when the subscription closes or ctx ends, and
// the send error otherwise.
func Forward(ctx context.Context, conn Conn, subscription *convostore.Subscription, resync func() convostore.Snapshot, logger *slog.Logger) error {
	for {
		delivery, err := subscription.Next(ctx)
		if err != nil {
			if errors.Is(err, notify.ErrSubscriptionClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		if delivery.Missed > 0 {
			// The delivered value predates the snapshot, which
			// already reflects it.
			logger.Warn("viewer lagged, resynchronizing",
				"viewer", subscription.ID(),
				"missed", delivery.Missed,
			)
			if err := Resynchronize(conn, resync()); err != nil {
				return fmt.Errorf("resynchronizing: %w", err)
			}
			continue
		}

		if err := conn.Send(delivery.Value); err != nil {
			return fmt.Errorf("forwarding %s: %w", delivery.Value.Kind(), err)
		}
	}
}

// Session is one viewer connection.
type Session struct {
	// ID identifies the viewer in logs and bus statistics.
	ID string

	Conn   Conn
	Source Source
	Clock  clock.Clock
	Logger *slog.Logger
}

// Run reconciles the viewer and then forwards live notifications
// until the viewer disconnects, a send fails, or ctx is done. The
// returned error is the delivery failure, if any; it concerns this
// viewer only.
func (s *Session) Run(ctx context.Context) error {
	started := s.Clock.Now()

	subscription, snapshot, err := s.Source.Attach(s.ID)
	if err != nil {
		return err
	}
	defer subscription.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.Conn.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := Reconcile(s.Conn, snapshot); err != nil {
		return fmt.Errorf("reconciling viewer %s: %w", s.ID, err)
	}
	s.Logger.Debug("viewer reconciled",
		"viewer", s.ID,
		"conversation_active", snapshot.Active,
	)

	err = Forward(ctx, s.Conn, subscription, func() convostore.Snapshot {
		return s.Source.Resync(subscription)
	}, s.Logger)

	stats := subscription.Stats()
	s.Logger.Info("viewer detached",
		"viewer", s.ID,
		"delivered", stats.Delivered,
		"dropped", stats.Dropped,
		"connected_for", s.Clock.Now().Sub(started).String(),
	)
	return err
}

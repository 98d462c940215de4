// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package viewer attaches read-only viewers to the conversation store
// and keeps them synchronized.
//
// A viewer session has two phases. [Reconcile] replays enough of the
// current state that a late joiner converges to the same view as a
// viewer connected from the start: the key-binding layout always, then
// a conversation start and the full reply array if a conversation is
// active. [Forward] then relays every notification published after the
// snapshot, in order, until a send fails or the subscription ends.
// [Session] runs both phases against a [Conn].
//
// The subscription is taken together with the snapshot
// (convostore.Store.Attach), so notifications published while the
// replay is being written queue up and are forwarded afterwards;
// nothing falls between the two phases.
//
// When a viewer lags far enough that its subscription drops
// notifications, the forwarder does not pass the gap on: it discards
// the stale backlog, replays a fresh snapshot with [Resynchronize], and
// resumes. Unlike the first replay, Resynchronize sends an explicit
// conversation end when none is active, since the viewer may have
// missed one. This matters for QueueReply notifications, which are deltas
// and would otherwise be lost until the next full reply update.
//
// [WebSocketConn] adapts a gorilla/websocket connection to [Conn],
// encoding notifications as JSON text frames or CBOR binary frames.
package viewer

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package convostore holds the live conversation state pushed by the
// controller and publishes a notification for every change.
//
// A [Store] owns two pieces of state: the optional active conversation
// (a fixed array of reply slots) and the key-binding layout, which is
// independent of any conversation and outlives them. Both sit behind
// one sync.RWMutex. Every mutation takes the write side and publishes
// its notification before releasing it, so the order in which
// subscribers observe notifications is the order in which the state
// actually changed. Bus publication is an in-memory ring append and
// never blocks on subscribers.
//
// Mutations are all-or-nothing: they either apply fully and publish,
// or return an error having changed nothing and published nothing.
// Start, End and ReplaceReplies are forgiving (starting
// twice resets, ending with nothing active still notifies, replacing
// replies with nothing active starts a conversation) because the
// controller keeps no memory of server state across its own restarts
// and must be able to resynchronize by simply replaying its view.
// QueueReply is the exception: queueing without a conversation is a
// caller error ([ErrNoConversation]).
//
// Viewers attach through [Store.Attach], which subscribes to the bus
// and snapshots the state under the same read hold so that no
// notification can fall between the snapshot and the subscription.
package convostore

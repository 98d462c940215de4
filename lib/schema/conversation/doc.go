// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package conversation defines the live-conversation data model shared
// by the control plane and its viewers: reply records, the key-binding
// layout, and the closed set of notifications pushed to viewers.
//
// Key exports:
//
//   - [Reply], [Replies], [Keybinds] -- fixed-capacity state shapes
//   - [Notification] and its four variants: [ConversationState],
//     [RepliesReplaced], [ReplyQueued], [KeybindsSet]
//   - [Envelope], [Wrap], [EncodeJSON], [DecodeJSON] -- the wire form
//
// The wire form is an externally tagged record: a single key naming
// the variant ("Conversation", "UpdateReplies", "QueueReply",
// "SetKeybinds") whose value carries only that variant's fields. The
// same [Envelope] struct serializes to JSON for browser viewers and to
// CBOR (via lib/codec) for binary viewers; fxamacker/cbor reads the
// json tags, so the field names are identical in both encodings.
//
// This package depends on no other convosniffer packages.
package conversation

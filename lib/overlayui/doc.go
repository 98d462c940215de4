// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package overlayui is the terminal viewer for a ConvoSniffer control
// plane.
//
// [Stream] holds a websocket connection to the control plane's /socket
// endpoint, reconnecting with backoff, and delivers decoded
// notifications as [Event] values. Every (re)connection starts with the
// control plane's reconciliation replay, so a [State] reset on connect
// converges to the server's state without any local history.
//
// [Model] is a bubbletea model that applies events to a State and
// renders the sixteen reply slots with their key-binding labels. It
// follows the same display rules as the browser page: a conversation
// start clears the replies, a queue notification marks one slot, and
// blank slots are hidden unless toggled on.
//
// [PrintEvents] is the non-interactive fallback: one JSON envelope per
// line, for piping into other tools.
package overlayui

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package controlplane is the HTTP surface of ConvoSniffer.
//
// The game controller drives the conversation store through five
// plain-text endpoints:
//
//	POST   /conversation               start a blank conversation
//	DELETE /conversation               end the conversation
//	PUT    /conversation/replies       replace replies from a manifest body
//	POST   /conversation/replies/queue queue the reply whose index is the body
//	PUT    /keybinds                   replace the key-binding list
//
// Success is 204 with no body. A rejected manifest, index, or key-binding
// list is 400; queueing with no conversation is 409; an oversized body
// is 413. The error text is the response body.
//
// Viewers connect to GET /socket (websocket; ?encoding=cbor for binary
// frames) and receive the reconciliation replay followed by live
// notifications. GET / serves the bundled browser viewer, GET /hello is
// a liveness probe, and GET /status reports bus statistics as JSON.
//
// A [Server] is the single process-wide context object: it owns
// references to the store and bus and is built once in main.
package controlplane

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the listener lifecycle shared by
// ConvoSniffer binaries.
//
// [HTTPServer] binds a TCP address, signals readiness, serves a
// caller-provided handler until its context is cancelled, and then
// drains in-flight requests. Long-lived connections that leave the
// net/http lifecycle (websocket upgrades) are not tracked by
// http.Server.Shutdown, so the server runs [HTTPServerConfig.OnShutdown]
// at the start of shutdown for the caller to end them.
//
// Binaries compose this in their own main() rather than subclassing a
// framework.
package service

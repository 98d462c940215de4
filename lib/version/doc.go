// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for ConvoSniffer
// binaries.
//
// Three package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//
// [Version] is set manually for releases. The injected values default
// to "unknown" during development builds and test runs.
//
// [Info] is the one-line version used in logs and /status. [Full] adds
// the Go toolchain and platform, and is what [Print] writes for
// --version.
package version

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for ConvoSniffer
// binaries. Fatal reports an error to stderr before (or after) the
// structured logger exists and exits. All other output from the
// binaries goes through slog or the CLI's own writer.
package process

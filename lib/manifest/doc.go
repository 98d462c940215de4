// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest decodes the controller's plain-text payloads: the
// reply manifest sent on a bulk reply update, and the semicolon
// separated key-binding list.
//
// A reply manifest is line oriented. Every line is trimmed of
// surrounding whitespace. The first line is the decimal record count,
// which must be below [conversation.Capacity]. Each record then spans
// six lines:
//
//	(empty separator)
//	index
//	style
//	category
//	paraphrase
//	text
//
// Records are placed by index, not by position in the manifest: a
// later record naming the same index replaces an earlier one, and
// slots no record names stay blank. Queued flags are always false in
// the result.
//
// Parsing is pure: [Parse] fills a scratch array and returns it only
// when the whole manifest is valid, so callers can install the result
// atomically. There is no escaping mechanism; text containing a
// newline (or, for key bindings, a semicolon) cannot be represented.
package manifest

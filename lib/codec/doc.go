// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used for binary viewer
// frames.
//
// Viewers choose their frame encoding when they connect: JSON text
// frames (the default, what the browser page consumes) or CBOR binary
// frames. Both carry the same notification envelope. fxamacker/cbor
// reads `json` struct tags when `cbor` tags are absent, so the wire
// types in lib/schema/conversation carry only `json` tags and keep
// identical field names in both encodings.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. The same notification always produces the same bytes.
package codec

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import "fmt"

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	// Structural errors: a missing line, a non-empty separator, or a
	// key-binding list with the wrong number of tokens.
	Structural ErrorKind = iota + 1

	// Validation errors: a count or index that is not a decimal
	// integer or lies outside its allowed range.
	Validation
)

func (kind ErrorKind) String() string {
	switch kind {
	case Structural:
		return "structural"
	case Validation:
		return "validation"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(kind))
	}
}

// Error describes why a manifest or key-binding list was rejected.
// Record is the zero-based record ordinal, or -1 when the failure is
// not tied to a record (the count line, the key-binding list).
type Error struct {
	Kind   ErrorKind
	Record int
	Field  string
	Detail string
}

func (e *Error) Error() string {
	if e.Record < 0 {
		return fmt.Sprintf("%s line: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("%s line of reply %d: %s", e.Field, e.Record, e.Detail)
}

func structural(record int, field, format string, args ...any) *Error {
	return &Error{Kind: Structural, Record: record, Field: field, Detail: fmt.Sprintf(format, args...)}
}

func validation(record int, field, format string, args ...any) *Error {
	return &Error{Kind: Validation, Record: record, Field: field, Detail: fmt.Sprintf(format, args...)}
}

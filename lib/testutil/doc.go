// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireClosed], and [RequireNoReceive]
// encapsulate the timeout safety valve pattern (select with a
// time.After fallback) so individual tests never call time.After
// directly. They are the only place in the test suite where real
// wall-clock timeouts are used.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so that
// periodic work (viewer keepalive pings, session durations) can be
// tested without sleeping.
//
// Production code holds a [Clock] and is given [Real]; tests give it a
// [FakeClock] from [Fake], which advances only when told to:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	conn := viewer.NewWebSocketConn(ws, viewer.WebSocketConfig{Clock: fake, ...})
//	fake.WaitForTimers(1)          // the keepalive ticker is registered
//	fake.Advance(30 * time.Second) // fire it deterministically
//
// WaitForTimers closes the race between a goroutine registering a
// ticker and the test advancing past its deadline.
package clock

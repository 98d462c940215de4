// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify is a single-stream, multi-subscriber broadcast bus.
//
// Every subscriber receives every value published after it subscribed,
// in publication order. Publishing never blocks on subscribers: each
// [Subscription] owns a bounded ring of retained values, and when a
// slow subscriber's ring is full the oldest undelivered value is
// dropped for that subscriber alone. Other subscribers and the
// publisher are unaffected. The number of dropped values is reported
// with the next delivery ([Delivery].Missed) so the consumer can
// detect the gap and recover.
//
// The bus performs no I/O. Publish takes the bus mutex and then each
// subscription's mutex for a constant-time ring append, which makes it
// safe to call while holding another lock.
package notify

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package overlayui

import (
	"context"
	"fmt"
	"io"

	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
)

// PrintEvents writes each notification from events to w as one JSON
// envelope per line until the channel closes or ctx is done. Connection
// events are not printed. The last stream error, if any, is returned
// when the channel closes.
func PrintEvents(ctx context.Context, w io.Writer, events <-chan Event) error {
	var last error
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return last
			}
			if event.Err != nil {
				last = event.Err
				continue
			}
			if event.Notification == nil {
				continue
			}
			data, err := conversation.EncodeJSON(event.Notification)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
				return fmt.Errorf("writing notification: %w", err)
			}
		}
	}
}

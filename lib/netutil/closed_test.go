// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/gorilla/websocket"
)

func TestIsExpectedCloseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("reading frame: %w", io.EOF), true},
		{"closed", net.ErrClosed, true},
		{"broken pipe", &net.OpError{Op: "write", Err: syscall.EPIPE}, true},
		{"reset", fmt.Errorf("write: %w", syscall.ECONNRESET), true},
		{"websocket going away", &websocket.CloseError{Code: websocket.CloseGoingAway}, true},
		{"websocket normal", &websocket.CloseError{Code: websocket.CloseNormalClosure}, true},
		{"websocket close sent", websocket.ErrCloseSent, true},
		{"websocket protocol error", &websocket.CloseError{Code: websocket.CloseProtocolError}, false},
		{"refused", syscall.ECONNREFUSED, false},
		{"other", errors.New("boom"), false},
	}

	for _, test := range tests {
		if got := IsExpectedCloseError(test.err); got != test.want {
			t.Errorf("%s: IsExpectedCloseError(%v) = %v, want %v", test.name, test.err, got, test.want)
		}
	}
}

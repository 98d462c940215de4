// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package viewer

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/convosniffer/lib/clock"
	"github.com/bureau-foundation/convosniffer/lib/codec"
	"github.com/bureau-foundation/convosniffer/lib/schema/conversation"
)

// Encoding selects the frame format sent to a viewer.
type Encoding string

const (
	// EncodingJSON sends each notification as a JSON text frame.
	EncodingJSON Encoding = "json"

	// EncodingCBOR sends each notification as a CBOR binary frame.
	EncodingCBOR Encoding = "cbor"
)

// ParseEncoding validates an encoding name. The empty string selects
// JSON.
func ParseEncoding(name string) (Encoding, error) {
	switch Encoding(name) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingCBOR:
		return EncodingCBOR, nil
	default:
		return "", fmt.Errorf("unknown viewer encoding %q (want %q or %q)", name, EncodingJSON, EncodingCBOR)
	}
}

// Encode renders a notification in the given encoding, returning the
// websocket message type to send it as.
func Encode(encoding Encoding, notification conversation.Notification) (int, []byte, error) {
	switch encoding {
	case EncodingCBOR:
		data, err := codec.Marshal(conversation.Wrap(notification))
		return websocket.BinaryMessage, data, err
	default:
		data, err := conversation.EncodeJSON(notification)
		return websocket.TextMessage, data, err
	}
}

// WebSocketConfig configures a WebSocketConn.
type WebSocketConfig struct {
	// Encoding is the frame format. Defaults to JSON.
	Encoding Encoding

	// KeepaliveInterval is the period between ping frames. Zero
	// disables pings.
	KeepaliveInterval time.Duration

	// WriteTimeout bounds each frame write. Zero means no deadline.
	WriteTimeout time.Duration

	// Clock drives keepalive pings and write deadlines. Required.
	Clock clock.Clock
}

// WebSocketConn adapts a gorilla/websocket connection to Conn. It
// reads (and discards) inbound frames so that control frames are
// processed and a disconnect is noticed promptly, and optionally
// pings the peer to keep intermediaries from idling the link out.
type WebSocketConn struct {
	conn   *websocket.Conn
	config WebSocketConfig

	// writeMu serializes data frames; gorilla allows one concurrent
	// writer. Control frames (ping, close) may be written concurrently.
	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketConn takes ownership of conn and starts its read and
// keepalive loops.
func NewWebSocketConn(conn *websocket.Conn, config WebSocketConfig) *WebSocketConn {
	if config.Clock == nil {
		panic("viewer.NewWebSocketConn: Clock is required")
	}
	if config.Encoding == "" {
		config.Encoding = EncodingJSON
	}
	c := &WebSocketConn{
		conn:   conn,
		config: config,
		done:   make(chan struct{}),
	}
	go c.readLoop()
	if config.KeepaliveInterval > 0 {
		go c.keepaliveLoop()
	}
	return c
}

// Send writes one notification frame.
func (c *WebSocketConn) Send(notification conversation.Notification) error {
	messageType, data, err := Encode(c.config.Encoding, notification)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", notification.Kind(), err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.config.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(c.config.Clock.Now().Add(c.config.WriteTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(messageType, data)
}

// Done is closed once the peer has gone away or Close was called.
func (c *WebSocketConn) Done() <-chan struct{} { return c.done }

// Close sends a normal-closure frame (best effort) and closes the
// underlying connection.
func (c *WebSocketConn) Close() error {
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, message, c.controlDeadline())
	c.markDone()
	return c.conn.Close()
}

func (c *WebSocketConn) markDone() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *WebSocketConn) readLoop() {
	defer c.markDone()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *WebSocketConn) keepaliveLoop() {
	ticker := c.config.Clock.NewTicker(c.config.KeepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, c.controlDeadline()); err != nil {
				return
			}
		}
	}
}

// controlDeadline returns the deadline for a control frame. The zero
// time means no deadline to gorilla.
func (c *WebSocketConn) controlDeadline() time.Time {
	if c.config.WriteTimeout <= 0 {
		return time.Time{}
	}
	return c.config.Clock.Now().Add(c.config.WriteTimeout)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package controlplane

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/convosniffer/lib/clock"
	"github.com/bureau-foundation/convosniffer/lib/convostore"
	"github.com/bureau-foundation/convosniffer/lib/viewer"
)

// DefaultMaxBodyBytes caps controller request bodies when the config
// leaves MaxBodyBytes zero.
const DefaultMaxBodyBytes = 1 << 20

// Config configures a Server.
type Config struct {
	// Store is the conversation store. Required.
	Store *convostore.Store

	// Bus is the bus Store publishes to. Required; Close closes it.
	Bus *convostore.Bus

	// Clock drives viewer keepalives and uptime. Defaults to the
	// real clock.
	Clock clock.Clock

	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// MaxBodyBytes caps controller request bodies. Defaults to
	// DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Encoding is the viewer frame format when the socket URL does
	// not choose one. Defaults to JSON.
	Encoding viewer.Encoding

	// KeepaliveInterval is the viewer ping period. Zero disables
	// pings.
	KeepaliveInterval time.Duration

	// WriteTimeout bounds each viewer frame write. Zero means none.
	WriteTimeout time.Duration
}

// Server routes controller requests to the store and runs viewer
// sessions.
type Server struct {
	store  *convostore.Store
	bus    *convostore.Bus
	clock  clock.Clock
	logger *slog.Logger

	maxBodyBytes      int64
	encoding          viewer.Encoding
	keepaliveInterval time.Duration
	writeTimeout      time.Duration

	upgrader websocket.Upgrader
	page     *page
	started  time.Time

	// sessions tracks running viewer sessions so Close can wait for
	// them to release their connections.
	sessions sync.WaitGroup
	viewers  atomic.Int64
}

// New creates a Server. It panics if a required field is missing.
func New(config Config) *Server {
	if config.Store == nil {
		panic("controlplane.New: Store is required")
	}
	if config.Bus == nil {
		panic("controlplane.New: Bus is required")
	}
	if config.Logger == nil {
		panic("controlplane.New: Logger is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if config.Encoding == "" {
		config.Encoding = viewer.EncodingJSON
	}

	return &Server{
		store:             config.Store,
		bus:               config.Bus,
		clock:             config.Clock,
		logger:            config.Logger,
		maxBodyBytes:      config.MaxBodyBytes,
		encoding:          config.Encoding,
		keepaliveInterval: config.KeepaliveInterval,
		writeTimeout:      config.WriteTimeout,
		upgrader: websocket.Upgrader{
			// Viewers are browser sources in streaming software and
			// local pages; there is no origin to enforce.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		page:    newPage(indexHTML),
		started: config.Clock.Now(),
	}
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /conversation", s.handleStart)
	mux.HandleFunc("DELETE /conversation", s.handleEnd)
	mux.HandleFunc("PUT /conversation/replies", s.handleReplaceReplies)
	mux.HandleFunc("POST /conversation/replies/queue", s.handleQueueReply)
	mux.HandleFunc("PUT /keybinds", s.handleSetKeybinds)

	mux.HandleFunc("GET /socket", s.handleSocket)

	mux.Handle("GET /{$}", s.page.handler())
	mux.HandleFunc("GET /hello", s.handleHello)
	mux.HandleFunc("GET /status", s.handleStatus)

	return mux
}

// Close closes the bus, which ends every viewer session, and waits for
// the sessions to close their connections. Safe to call more than
// once.
func (s *Server) Close() {
	s.bus.Close()
	s.sessions.Wait()
}

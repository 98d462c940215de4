// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package controlplane

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bureau-foundation/convosniffer/lib/netutil"
	"github.com/bureau-foundation/convosniffer/lib/viewer"
)

// handleSocket upgrades a viewer connection and runs its session until
// the viewer leaves or the bus closes.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	encoding := s.encoding
	if requested := r.URL.Query().Get("encoding"); requested != "" {
		parsed, err := viewer.ParseEncoding(requested)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		encoding = parsed
	}

	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("viewer upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()
	s.viewers.Add(1)
	defer s.viewers.Add(-1)

	conn := viewer.NewWebSocketConn(raw, viewer.WebSocketConfig{
		Encoding:          encoding,
		KeepaliveInterval: s.keepaliveInterval,
		WriteTimeout:      s.writeTimeout,
		Clock:             s.clock,
	})
	defer conn.Close()

	id := uuid.NewString()
	logger := s.logger.With("remote", r.RemoteAddr)
	logger.Info("viewer connected", "viewer", id, "encoding", string(encoding))

	session := &viewer.Session{
		ID:     id,
		Conn:   conn,
		Source: s.store,
		Clock:  s.clock,
		Logger: logger,
	}
	if err := session.Run(r.Context()); err != nil {
		if netutil.IsExpectedCloseError(err) {
			logger.Debug("viewer connection closed", "viewer", id, "error", err)
			return
		}
		logger.Warn("viewer delivery failed", "viewer", id, "error", err)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package controlplane

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bureau-foundation/convosniffer/lib/convostore"
	"github.com/bureau-foundation/convosniffer/lib/manifest"
	"github.com/bureau-foundation/convosniffer/lib/notify"
	"github.com/bureau-foundation/convosniffer/lib/version"
)

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.store.Start()
	s.logger.Info("conversation started")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	s.store.End()
	s.logger.Info("conversation ended")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceReplies(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "replace replies", s.store.ReplaceReplies)
}

func (s *Server) handleQueueReply(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "queue reply", s.store.QueueReply)
}

func (s *Server) handleSetKeybinds(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "set keybinds", s.store.SetKeybinds)
}

// mutate reads the bounded request body and applies it with apply.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, operation string, apply func(string) error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn("controller request too large",
				"operation", operation,
				"limit", tooLarge.Limit,
			)
			http.Error(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.logger.Warn("reading controller request", "operation", operation, "error", err)
		http.Error(w, "reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := apply(string(body)); err != nil {
		status := statusFor(err)
		s.logger.Warn("controller request rejected",
			"operation", operation,
			"status", status,
			"error", err,
		)
		http.Error(w, err.Error(), status)
		return
	}

	s.logger.Debug("controller request applied", "operation", operation, "bytes", len(body))
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps a store error to its HTTP status.
func statusFor(err error) int {
	var parseErr *manifest.Error
	switch {
	case errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.Is(err, convostore.ErrNoConversation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Hello, world!!!")
}

// Status is the body of GET /status.
type Status struct {
	Version            string       `json:"version"`
	UptimeSeconds      float64      `json:"uptime_seconds"`
	ConversationActive bool         `json:"conversation_active"`
	QueuedReplies      int          `json:"queued_replies"`
	Viewers            int64        `json:"viewers"`
	Bus                notify.Stats `json:"bus"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.Snapshot()
	status := Status{
		Version:            version.Info(),
		UptimeSeconds:      s.clock.Now().Sub(s.started).Seconds(),
		ConversationActive: snapshot.Active,
		Viewers:            s.viewers.Load(),
		Bus:                s.bus.Stats(),
	}
	for _, reply := range snapshot.Replies {
		if reply.Queued {
			status.QueuedReplies++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Debug("writing status response", "error", err)
	}
}

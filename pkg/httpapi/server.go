// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpapi exposes the assessment engine over a JSON HTTP API. The
// host contract mirrors the two engine turns: a message endpoint producing
// dispatch instructions and a results endpoint producing the final decision.
package httpapi

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jllopis/gremio/pkg/core"
	"github.com/jllopis/gremio/pkg/engine"
	"github.com/jllopis/gremio/pkg/session"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Server hosts the engine behind chi routes. Calls into the engine are
// serialized per session; independent sessions proceed concurrently.
type Server struct {
	engine   *engine.Engine
	sessions session.Store
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewServer creates an HTTP server over the engine and session store.
func NewServer(e *engine.Engine, sessions session.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:   e,
		sessions: sessions,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Router returns the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/message", s.handleMessage)
		r.Post("/results", s.handleResults)
	})
	return r
}

// lockSession returns an unlock func after acquiring the per-session lock.
func (s *Server) lockSession(id string) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	req, ok := readJSON[messageRequest](w, r)
	if !ok {
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "message is required")
		return
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	ctx := r.Context()
	sess, found := s.sessions.Get(ctx, sessionID)
	if !found {
		sess = core.NewSession(sessionID)
		s.engine.SessionCreated(ctx, sess)
	}

	reply, err := s.engine.HandleMessage(ctx, sess, req.Message)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		s.logger.ErrorContext(ctx, "httpapi.session.put_failed",
			"session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "could not persist session")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turn, ok := readJSON[engine.ResultsTurn](w, r)
	if !ok {
		return
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	ctx := r.Context()
	sess, found := s.sessions.Get(ctx, sessionID)
	if !found {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown session")
		return
	}

	reply, err := s.engine.HandleResults(ctx, sess, turn)
	if err != nil {
		// Partial batches are expected; keep the session alive for the rest.
		if putErr := s.sessions.Put(ctx, sess); putErr != nil {
			s.logger.ErrorContext(ctx, "httpapi.session.put_failed",
				"session_id", sessionID, "error", putErr)
		}
		s.writeEngineError(w, r, err)
		return
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		s.logger.ErrorContext(ctx, "httpapi.session.put_failed",
			"session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "could not persist session")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

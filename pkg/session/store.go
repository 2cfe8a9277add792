// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package session provides storage for in-flight assessment sessions.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jllopis/gremio/pkg/core"
)

// Store keeps sessions between host calls. Implementations must be safe for
// concurrent use: independent sessions may be processed concurrently while
// the host serializes calls within one session.
type Store interface {
	// Get returns the session for id, if present.
	Get(ctx context.Context, id string) (*core.Session, bool)
	// Put stores or replaces a session.
	Put(ctx context.Context, s *core.Session) error
	// Delete removes a session.
	Delete(ctx context.Context, id string) error
}

// InMemoryStore holds sessions in memory with an optional TTL. Suitable for
// development and single-instance deployments; data is lost on restart.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	ttl      time.Duration
}

// NewInMemoryStore creates a store. A ttl of 0 disables expiry; abandoned
// sessions then live until the process ends.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*core.Session),
		ttl:      ttl,
	}
}

// Get implements Store.
func (s *InMemoryStore) Get(_ context.Context, id string) (*core.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess, time.Now().UTC()) {
		return nil, false
	}
	return sess, true
}

// Put implements Store.
func (s *InMemoryStore) Put(_ context.Context, sess *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included until
// the next sweep.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSweeper launches a background goroutine that drops expired sessions
// on the given interval. It returns a stop function. With no TTL configured
// the sweeper is disabled.
func (s *InMemoryStore) StartSweeper(interval time.Duration) func() {
	if s.ttl <= 0 || interval <= 0 {
		slog.Info("session.sweeper.disabled",
			slog.Duration("ttl", s.ttl),
			slog.Duration("interval", interval),
		)
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log := slog.Default()
		log.Info("session.sweeper.start",
			slog.Duration("ttl", s.ttl),
			slog.Duration("interval", interval),
		)
		for {
			select {
			case <-ctx.Done():
				log.Info("session.sweeper.stop")
				return
			case <-ticker.C:
				removed := s.sweep(time.Now().UTC())
				if removed > 0 {
					log.Info("session.sweeper.sweep", slog.Int("removed", removed))
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// sweep removes expired sessions and reports how many were dropped.
func (s *InMemoryStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *InMemoryStore) expired(sess *core.Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.UpdatedAt) > s.ttl
}

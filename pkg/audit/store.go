// Package audit persists the decision trail: every final verdict with its
// internal justification and the raw evaluator payloads it was based on.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jllopis/gremio/pkg/core"
)

// Record is one delivered decision.
type Record struct {
	ID            string
	SessionID     string
	Role          string
	Outcome       core.Outcome
	Justification string
	Results       map[string]core.AssessmentResult
	DecidedAt     time.Time
}

// Filter limits audit queries.
type Filter struct {
	SessionID string
	Role      string
	Outcome   core.Outcome
	Limit     int
}

// Store persists decision records.
type Store interface {
	Record(ctx context.Context, rec Record) error
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// NewRecord builds a record for a completed session.
func NewRecord(sess *core.Session) Record {
	rec := Record{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Role:      sess.ResolvedRole,
		Results:   sess.Results,
		DecidedAt: time.Now().UTC(),
	}
	if sess.Decision != nil {
		rec.Outcome = sess.Decision.Outcome
		rec.Justification = sess.Decision.Justification
	}
	return rec
}

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryStore returns an in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record appends a decision record.
func (s *MemoryStore) Record(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// List returns filtered records.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if filter.SessionID != "" && rec.SessionID != filter.SessionID {
			continue
		}
		if filter.Role != "" && rec.Role != filter.Role {
			continue
		}
		if filter.Outcome != "" && rec.Outcome != filter.Outcome {
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// encodeResults marshals evaluator payloads into JSON for storage.
func encodeResults(results map[string]core.AssessmentResult) ([]byte, error) {
	if results == nil {
		return []byte("null"), nil
	}
	return json.Marshal(results)
}

// decodeResults parses a stored results payload.
func decodeResults(raw []byte) (map[string]core.AssessmentResult, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]core.AssessmentResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeTime ensures timestamps are stored in UTC.
func normalizeTime(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return value.UTC()
}

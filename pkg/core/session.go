package core

import (
	"time"

	"github.com/google/uuid"

	gerrors "github.com/jllopis/gremio/pkg/errors"
)

// State describes where a session is in the assessment cycle.
type State string

const (
	StateAwaitingRole State = "AWAITING_ROLE"
	StateDispatched   State = "DISPATCHED"
	StateCompleted    State = "COMPLETED"
)

// Session tracks one assessment attempt across the dispatch and decision
// turns. It is created on the first user message and dropped once a decision
// has been delivered or the session expires. The engine holds no state of its
// own; everything lives here so a host can serialize calls per session and
// process independent sessions concurrently.
type Session struct {
	ID           string
	State        State
	ResolvedRole string

	// Outstanding holds the evaluator names whose results have not arrived
	// yet. It empties as results are recorded; a decision must not be
	// produced while it is non-empty.
	Outstanding map[string]bool

	// Results accumulates evaluator payloads keyed by evaluator name.
	// Results may arrive in any order and across several host calls.
	Results map[string]AssessmentResult

	Decision *Decision

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session in AWAITING_ROLE. An empty id gets a
// generated one.
func NewSession(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	return &Session{
		ID:          id,
		State:       StateAwaitingRole,
		Outstanding: make(map[string]bool),
		Results:     make(map[string]AssessmentResult),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkDispatched transitions AWAITING_ROLE -> DISPATCHED, recording the
// resolved role and populating the outstanding evaluator set from the
// emitted instructions.
func (s *Session) MarkDispatched(role string, instructions []DispatchInstruction) error {
	if s.State != StateAwaitingRole {
		return gerrors.New(gerrors.CodeSessionState, "dispatch requires AWAITING_ROLE", nil).
			WithContext("session_id", s.ID).
			WithContext("state", string(s.State))
	}
	if role == "" || len(instructions) == 0 {
		return gerrors.New(gerrors.CodeSessionState, "dispatch requires a resolved role and instructions", nil).
			WithContext("session_id", s.ID)
	}
	s.ResolvedRole = role
	for _, inst := range instructions {
		s.Outstanding[inst.AgentName] = true
	}
	s.State = StateDispatched
	s.touch()
	return nil
}

// RecordResult stores an evaluator result and clears it from the outstanding
// set. It returns false when the evaluator was not expected for this session;
// such results are kept out of Results so they cannot influence aggregation.
func (s *Session) RecordResult(result AssessmentResult) bool {
	if s.State != StateDispatched {
		return false
	}
	if !s.Outstanding[result.AgentName] {
		// A re-delivery of an already recorded result is harmless.
		_, seen := s.Results[result.AgentName]
		return seen
	}
	delete(s.Outstanding, result.AgentName)
	s.Results[result.AgentName] = result
	s.touch()
	return true
}

// OutstandingAgents lists evaluators that have not responded yet.
func (s *Session) OutstandingAgents() []string {
	agents := make([]string, 0, len(s.Outstanding))
	for name := range s.Outstanding {
		agents = append(agents, name)
	}
	return agents
}

// Complete transitions DISPATCHED -> COMPLETED with the final decision.
// It refuses to complete while results are outstanding.
func (s *Session) Complete(decision Decision) error {
	if s.State != StateDispatched {
		return gerrors.New(gerrors.CodeSessionState, "completion requires DISPATCHED", nil).
			WithContext("session_id", s.ID).
			WithContext("state", string(s.State))
	}
	if len(s.Outstanding) > 0 {
		return gerrors.New(gerrors.CodeIncompleteResults, "evaluators still outstanding", nil).
			WithContext("session_id", s.ID).
			WithContext("missing", s.OutstandingAgents())
	}
	s.Decision = &decision
	s.State = StateCompleted
	s.touch()
	return nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package assesstest provides utilities for testing assessment flows.
//
// This package includes:
//   - Scenario definitions for declarative end-to-end turn testing
//   - An event collector for verifying emitted lifecycle events
//
// Example usage:
//
//	assesstest.NewScenario("tailor pass").
//	    User("I want to be a tailor").
//	    ExpectInstructions(1).
//	    Results(engine.ResultsTurn{...}).
//	    ExpectDecision(core.OutcomePass).
//	    Run(t, e)
package assesstest

import (
	"context"
	"strings"
	"testing"

	"github.com/jllopis/gremio/pkg/core"
	"github.com/jllopis/gremio/pkg/engine"
)

// Scenario drives an engine through a sequence of turns against one session
// and checks expectations after each turn.
type Scenario struct {
	name    string
	session *core.Session
	steps   []step
}

type step struct {
	utterance string
	results   *engine.ResultsTurn

	wantInstructions int
	checkCount       bool
	wantContains     []string
	wantDecision     core.Outcome
	checkDecision    bool
	wantErr          bool
}

// NewScenario creates a named scenario with a fresh session.
func NewScenario(name string) *Scenario {
	return &Scenario{
		name:    name,
		session: core.NewSession(""),
	}
}

// Session returns the session the scenario runs against.
func (s *Scenario) Session() *core.Session {
	return s.session
}

// User appends a dispatch turn for the given utterance.
func (s *Scenario) User(utterance string) *Scenario {
	s.steps = append(s.steps, step{utterance: utterance})
	return s
}

// Results appends a decision turn with the given evaluator results.
func (s *Scenario) Results(turn engine.ResultsTurn) *Scenario {
	s.steps = append(s.steps, step{results: &turn})
	return s
}

// ExpectInstructions asserts the instruction count of the last appended turn.
func (s *Scenario) ExpectInstructions(n int) *Scenario {
	s.last().wantInstructions = n
	s.last().checkCount = true
	return s
}

// ExpectResponseContains asserts that the user-facing text of the last
// appended turn contains the substring.
func (s *Scenario) ExpectResponseContains(substr string) *Scenario {
	s.last().wantContains = append(s.last().wantContains, substr)
	return s
}

// ExpectDecision asserts the verdict of the last appended decision turn.
func (s *Scenario) ExpectDecision(outcome core.Outcome) *Scenario {
	s.last().wantDecision = outcome
	s.last().checkDecision = true
	return s
}

// ExpectError asserts that the last appended turn returns an error.
func (s *Scenario) ExpectError() *Scenario {
	s.last().wantErr = true
	return s
}

func (s *Scenario) last() *step {
	if len(s.steps) == 0 {
		s.steps = append(s.steps, step{})
	}
	return &s.steps[len(s.steps)-1]
}

// Run executes the scenario against the engine, failing the test on the
// first unmet expectation.
func (s *Scenario) Run(t *testing.T, e *engine.Engine) {
	t.Helper()
	ctx := context.Background()

	for i, st := range s.steps {
		var (
			response     string
			instructions int
			decision     *core.Decision
			err          error
		)
		if st.results != nil {
			var reply *engine.DecisionReply
			reply, err = e.HandleResults(ctx, s.session, *st.results)
			if reply != nil {
				response = reply.ResponseToUser
				decision = &reply.FinalDecisionData
			}
		} else {
			var reply *engine.TurnReply
			reply, err = e.HandleMessage(ctx, s.session, st.utterance)
			if reply != nil {
				response = reply.ResponseToUser
				instructions = len(reply.Instructions)
			}
		}

		if st.wantErr {
			if err == nil {
				t.Fatalf("%s: step %d expected an error", s.name, i)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: step %d failed: %v", s.name, i, err)
		}
		if st.checkCount && instructions != st.wantInstructions {
			t.Fatalf("%s: step %d expected %d instructions, got %d",
				s.name, i, st.wantInstructions, instructions)
		}
		for _, substr := range st.wantContains {
			if !strings.Contains(response, substr) {
				t.Fatalf("%s: step %d response %q does not contain %q",
					s.name, i, response, substr)
			}
		}
		if st.checkDecision {
			if decision == nil {
				t.Fatalf("%s: step %d expected a decision", s.name, i)
			}
			if decision.Outcome != st.wantDecision {
				t.Fatalf("%s: step %d expected %s, got %s",
					s.name, i, st.wantDecision, decision.Outcome)
			}
		}
	}
}

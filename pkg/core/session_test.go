package core

import (
	"testing"

	gerrors "github.com/jllopis/gremio/pkg/errors"
)

func tailorInstructions() []DispatchInstruction {
	return []DispatchInstruction{
		{
			AgentName: "StitchingAssessorAgent",
			Role:      "Tailor",
			TaskContext: TaskContext{
				SkillToAssess:  "Stitching",
				AssessmentType: "practical-image",
			},
		},
	}
}

func TestNewSessionStartsAwaitingRole(t *testing.T) {
	s := NewSession("")
	if s.ID == "" {
		t.Fatalf("expected generated session id")
	}
	if s.State != StateAwaitingRole {
		t.Fatalf("unexpected initial state: %q", s.State)
	}
}

func TestMarkDispatched(t *testing.T) {
	s := NewSession("s1")
	if err := s.MarkDispatched("Tailor", tailorInstructions()); err != nil {
		t.Fatalf("mark dispatched: %v", err)
	}
	if s.State != StateDispatched {
		t.Fatalf("unexpected state: %q", s.State)
	}
	if !s.Outstanding["StitchingAssessorAgent"] {
		t.Fatalf("expected evaluator to be outstanding")
	}

	err := s.MarkDispatched("Tailor", tailorInstructions())
	if !gerrors.HasCode(err, gerrors.CodeSessionState) {
		t.Fatalf("expected SESSION_STATE error on re-dispatch, got %v", err)
	}
}

func TestMarkDispatchedRequiresRole(t *testing.T) {
	s := NewSession("s1")
	if err := s.MarkDispatched("", tailorInstructions()); err == nil {
		t.Fatalf("expected error for empty role")
	}
	if err := s.MarkDispatched("Tailor", nil); err == nil {
		t.Fatalf("expected error for empty instructions")
	}
}

func TestRecordResult(t *testing.T) {
	s := NewSession("s1")
	if s.RecordResult(AssessmentResult{AgentName: "StitchingAssessorAgent"}) {
		t.Fatalf("results must not be accepted before dispatch")
	}

	if err := s.MarkDispatched("Tailor", tailorInstructions()); err != nil {
		t.Fatalf("mark dispatched: %v", err)
	}

	ok := s.RecordResult(AssessmentResult{
		AgentName: "StitchingAssessorAgent",
		Payload:   map[string]any{"quality_rating": 8.0},
	})
	if !ok {
		t.Fatalf("expected result to be recorded")
	}
	if len(s.Outstanding) != 0 {
		t.Fatalf("expected outstanding set to empty")
	}

	// Re-delivery of the same result is tolerated.
	if !s.RecordResult(AssessmentResult{AgentName: "StitchingAssessorAgent"}) {
		t.Fatalf("expected re-delivery to be tolerated")
	}
	// An evaluator that was never dispatched is rejected.
	if s.RecordResult(AssessmentResult{AgentName: "WeldingAssessorAgent"}) {
		t.Fatalf("expected unexpected evaluator to be rejected")
	}
	if _, found := s.Results["WeldingAssessorAgent"]; found {
		t.Fatalf("unexpected evaluator must not reach Results")
	}
}

func TestCompleteRefusesWhileOutstanding(t *testing.T) {
	s := NewSession("s1")
	instructions := append(tailorInstructions(), DispatchInstruction{
		AgentName:   "ButtonholeAssessorAgent",
		Role:        "Tailor",
		TaskContext: TaskContext{SkillToAssess: "Buttonholes", AssessmentType: "practical-image"},
	})
	if err := s.MarkDispatched("Tailor", instructions); err != nil {
		t.Fatalf("mark dispatched: %v", err)
	}
	s.RecordResult(AssessmentResult{AgentName: "StitchingAssessorAgent"})

	err := s.Complete(Decision{Outcome: OutcomePass})
	if !gerrors.HasCode(err, gerrors.CodeIncompleteResults) {
		t.Fatalf("expected INCOMPLETE_RESULTS, got %v", err)
	}
	if s.State != StateDispatched {
		t.Fatalf("state must stay DISPATCHED, got %q", s.State)
	}

	s.RecordResult(AssessmentResult{AgentName: "ButtonholeAssessorAgent"})
	if err := s.Complete(Decision{Outcome: OutcomePass, Justification: "ok"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if s.State != StateCompleted {
		t.Fatalf("unexpected state: %q", s.State)
	}
	if s.Decision == nil || s.Decision.Outcome != OutcomePass {
		t.Fatalf("decision not stored")
	}
}

func TestCompleteRequiresDispatched(t *testing.T) {
	s := NewSession("s1")
	err := s.Complete(Decision{Outcome: OutcomeFail})
	if !gerrors.HasCode(err, gerrors.CodeSessionState) {
		t.Fatalf("expected SESSION_STATE error, got %v", err)
	}
}

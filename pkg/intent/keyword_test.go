package intent

import (
	"context"
	"testing"

	"github.com/jllopis/gremio/pkg/catalog"
)

func testCatalog() *catalog.Catalog {
	rule := catalog.DecisionRule{Field: "quality_rating", Op: catalog.OpGTE, Value: 7}
	return &catalog.Catalog{Roles: []catalog.RoleProfile{
		{
			Name:    "Tailor",
			Aliases: []string{"seamstress", "sastre"},
			Skills: []catalog.SkillRequirement{
				{Skill: "Stitching", AssessmentType: catalog.AssessmentImage, Evaluator: "StitchingAssessorAgent", Rule: rule},
			},
		},
		{
			Name:    "Carpenter",
			Aliases: []string{"woodworker"},
			Skills: []catalog.SkillRequirement{
				{Skill: "Joinery", AssessmentType: catalog.AssessmentImage, Evaluator: "JointAssessorAgent", Rule: rule},
			},
		},
	}}
}

func TestKeywordResolved(t *testing.T) {
	r := NewKeywordResolver(testCatalog())

	tests := []struct {
		utterance string
		role      string
	}{
		{"I want to apply for the Tailor position", "Tailor"},
		{"can I become a seamstress?", "Tailor"},
		{"SASTRE, por favor", "Tailor"},
		{"carpenter job please", "Carpenter"},
	}
	for _, tt := range tests {
		out, err := r.Resolve(context.Background(), tt.utterance)
		if err != nil {
			t.Fatalf("resolve %q: %v", tt.utterance, err)
		}
		if out.Kind != KindResolved || out.Role != tt.role {
			t.Fatalf("resolve %q: got %+v, want role %q", tt.utterance, out, tt.role)
		}
	}
}

func TestKeywordAmbiguousWithoutRole(t *testing.T) {
	r := NewKeywordResolver(testCatalog())
	out, err := r.Resolve(context.Background(), "I need a job")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.Kind != KindAmbiguous {
		t.Fatalf("expected ambiguous, got %+v", out)
	}
}

func TestKeywordAmbiguousOnMultipleRoles(t *testing.T) {
	r := NewKeywordResolver(testCatalog())
	out, err := r.Resolve(context.Background(), "tailor or carpenter, whichever pays more")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.Kind != KindAmbiguous {
		t.Fatalf("tie must be ambiguous, got %+v", out)
	}
}

func TestKeywordOutOfScope(t *testing.T) {
	r := NewKeywordResolver(testCatalog())
	for _, utterance := range []string{
		"What's the weather today?",
		"tell me a joke",
	} {
		out, err := r.Resolve(context.Background(), utterance)
		if err != nil {
			t.Fatalf("resolve %q: %v", utterance, err)
		}
		if out.Kind != KindOutOfScope {
			t.Fatalf("resolve %q: expected out of scope, got %+v", utterance, out)
		}
	}
}

func TestKeywordEmptyUtterance(t *testing.T) {
	r := NewKeywordResolver(testCatalog())
	out, err := r.Resolve(context.Background(), "  ...  ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.Kind != KindAmbiguous {
		t.Fatalf("expected ambiguous for empty utterance, got %+v", out)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  What's the weather, today?! ")
	if got != "what s the weather today" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

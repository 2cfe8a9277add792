package verdict

import (
	"strings"
	"testing"

	"github.com/jllopis/gremio/pkg/catalog"
	"github.com/jllopis/gremio/pkg/core"
	gerrors "github.com/jllopis/gremio/pkg/errors"
)

func tailorProfile() *catalog.RoleProfile {
	return &catalog.RoleProfile{
		Name: "Tailor",
		Skills: []catalog.SkillRequirement{
			{
				Skill:          "Stitching",
				AssessmentType: catalog.AssessmentImage,
				Evaluator:      "StitchingAssessorAgent",
				Rule:           catalog.DecisionRule{Field: "quality_rating", Op: catalog.OpGTE, Value: 7},
			},
		},
	}
}

func stitchingResult(rating any) map[string]core.AssessmentResult {
	return map[string]core.AssessmentResult{
		"StitchingAssessorAgent": {
			AgentName: "StitchingAssessorAgent",
			Payload:   map[string]any{"quality_rating": rating},
		},
	}
}

func TestAggregatePass(t *testing.T) {
	decision, err := Aggregate(tailorProfile(), stitchingResult(8.0))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if decision.Outcome != core.OutcomePass {
		t.Fatalf("expected PASS, got %s (%s)", decision.Outcome, decision.Justification)
	}
	if !strings.Contains(decision.Justification, "quality_rating=8") {
		t.Fatalf("justification must carry the literal value: %q", decision.Justification)
	}
}

func TestAggregateFail(t *testing.T) {
	decision, err := Aggregate(tailorProfile(), stitchingResult(5.0))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if decision.Outcome != core.OutcomeFail {
		t.Fatalf("expected FAIL, got %s", decision.Outcome)
	}
	if !strings.Contains(decision.Justification, "fail") {
		t.Fatalf("justification must record the failed requirement: %q", decision.Justification)
	}
}

func TestAggregateBoundary(t *testing.T) {
	decision, err := Aggregate(tailorProfile(), stitchingResult(7))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if decision.Outcome != core.OutcomePass {
		t.Fatalf("threshold is inclusive for >=, got %s", decision.Outcome)
	}
}

func TestAggregateMissingFieldFailsClosed(t *testing.T) {
	results := map[string]core.AssessmentResult{
		"StitchingAssessorAgent": {
			AgentName: "StitchingAssessorAgent",
			Payload:   map[string]any{"stitch_type": "running stitch"},
		},
	}
	decision, err := Aggregate(tailorProfile(), results)
	if err != nil {
		t.Fatalf("aggregate must not error on malformed payload: %v", err)
	}
	if decision.Outcome != core.OutcomeFail {
		t.Fatalf("missing field must fail closed, got %s", decision.Outcome)
	}
	if !strings.Contains(decision.Justification, "missing") {
		t.Fatalf("discrepancy must be recorded: %q", decision.Justification)
	}
}

func TestAggregateMistypedFieldFailsClosed(t *testing.T) {
	decision, err := Aggregate(tailorProfile(), stitchingResult("eight"))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if decision.Outcome != core.OutcomeFail {
		t.Fatalf("mistyped field must fail closed, got %s", decision.Outcome)
	}
	if !strings.Contains(decision.Justification, "non-numeric") {
		t.Fatalf("discrepancy must be recorded: %q", decision.Justification)
	}
}

func TestAggregateIncompleteResults(t *testing.T) {
	profile := tailorProfile()
	profile.Skills = append(profile.Skills, catalog.SkillRequirement{
		Skill:          "Fabric Knowledge",
		AssessmentType: catalog.AssessmentKnowledge,
		Evaluator:      "FabricQuizAgent",
		Rule:           catalog.DecisionRule{Field: "score", Op: catalog.OpGTE, Value: 70},
	})

	_, err := Aggregate(profile, stitchingResult(9.0))
	if !gerrors.HasCode(err, gerrors.CodeIncompleteResults) {
		t.Fatalf("expected INCOMPLETE_RESULTS, got %v", err)
	}
	ge := gerrors.AsGremioError(err)
	missing, _ := ge.Context["missing"].([]string)
	if len(missing) != 1 || missing[0] != "FabricQuizAgent" {
		t.Fatalf("expected missing evaluator recorded, got %v", ge.Context["missing"])
	}
}

func TestAggregateCombinesWithAnd(t *testing.T) {
	profile := tailorProfile()
	profile.Skills = append(profile.Skills, catalog.SkillRequirement{
		Skill:          "Fabric Knowledge",
		AssessmentType: catalog.AssessmentKnowledge,
		Evaluator:      "FabricQuizAgent",
		Rule:           catalog.DecisionRule{Field: "score", Op: catalog.OpGTE, Value: 70},
	})
	results := stitchingResult(9.0)
	results["FabricQuizAgent"] = core.AssessmentResult{
		AgentName: "FabricQuizAgent",
		Payload:   map[string]any{"score": 60.0},
	}

	decision, err := Aggregate(profile, results)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if decision.Outcome != core.OutcomeFail {
		t.Fatalf("one failed requirement must fail the role, got %s", decision.Outcome)
	}
	if !strings.Contains(decision.Justification, "Stitching") || !strings.Contains(decision.Justification, "Fabric Knowledge") {
		t.Fatalf("justification must enumerate every requirement: %q", decision.Justification)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	profile := tailorProfile()
	results := stitchingResult(8.0)

	first, err := Aggregate(profile, results)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	second, err := Aggregate(profile, results)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if first != second {
		t.Fatalf("aggregation must be idempotent: %+v vs %+v", first, second)
	}
}

func TestAggregateStringEquality(t *testing.T) {
	profile := tailorProfile()
	profile.Skills[0].Rule = catalog.DecisionRule{Field: "professional_grade", Op: catalog.OpEQ, Value: "expert"}

	results := map[string]core.AssessmentResult{
		"StitchingAssessorAgent": {
			AgentName: "StitchingAssessorAgent",
			Payload:   map[string]any{"professional_grade": "expert"},
		},
	}
	decision, err := Aggregate(profile, results)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if decision.Outcome != core.OutcomePass {
		t.Fatalf("expected PASS for matching grade, got %s", decision.Outcome)
	}

	results["StitchingAssessorAgent"] = core.AssessmentResult{
		AgentName: "StitchingAssessorAgent",
		Payload:   map[string]any{"professional_grade": 3},
	}
	decision, err = Aggregate(profile, results)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if decision.Outcome != core.OutcomeFail {
		t.Fatalf("non-comparable kinds must fail closed, got %s", decision.Outcome)
	}
}

package catalog

import "testing"

func tailorProfile() RoleProfile {
	return RoleProfile{
		Name:    "Tailor",
		Aliases: []string{"seamstress", "sastre"},
		Skills: []SkillRequirement{
			{
				Skill:          "Stitching",
				AssessmentType: AssessmentImage,
				Evaluator:      "StitchingAssessorAgent",
				Rule:           DecisionRule{Field: "quality_rating", Op: OpGTE, Value: 7},
			},
		},
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	cat := &Catalog{Roles: []RoleProfile{tailorProfile()}}

	profile, ok := cat.Lookup("tailor")
	if !ok {
		t.Fatalf("expected lookup to succeed")
	}
	if profile.Name != "Tailor" {
		t.Fatalf("unexpected role name: %q", profile.Name)
	}
	if _, ok := cat.Lookup("Carpenter"); ok {
		t.Fatalf("expected lookup miss for unknown role")
	}
}

func TestValidate(t *testing.T) {
	cat := &Catalog{Roles: []RoleProfile{tailorProfile()}}
	if err := cat.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsDuplicateRole(t *testing.T) {
	cat := &Catalog{Roles: []RoleProfile{tailorProfile(), tailorProfile()}}
	if err := cat.Validate(); err == nil {
		t.Fatalf("expected duplicate role error")
	}
}

func TestValidateRejectsDuplicateEvaluator(t *testing.T) {
	role := tailorProfile()
	role.Skills = append(role.Skills, SkillRequirement{
		Skill:          "Hemming",
		AssessmentType: AssessmentImage,
		Evaluator:      "StitchingAssessorAgent",
		Rule:           DecisionRule{Field: "quality_rating", Op: OpGTE, Value: 6},
	})
	cat := &Catalog{Roles: []RoleProfile{role}}
	if err := cat.Validate(); err == nil {
		t.Fatalf("expected duplicate evaluator error")
	}
}

func TestValidateRejectsUnknownCombineMode(t *testing.T) {
	role := tailorProfile()
	role.Combine = "weighted"
	cat := &Catalog{Roles: []RoleProfile{role}}
	if err := cat.Validate(); err == nil {
		t.Fatalf("expected combine mode error")
	}
}

func TestValidateRejectsMalformedRules(t *testing.T) {
	tests := []struct {
		name string
		rule DecisionRule
	}{
		{"missing field", DecisionRule{Op: OpGTE, Value: 7}},
		{"unknown op", DecisionRule{Field: "quality_rating", Op: "~=", Value: 7}},
		{"string threshold for ordering op", DecisionRule{Field: "quality_rating", Op: OpGTE, Value: "seven"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role := tailorProfile()
			role.Skills[0].Rule = tt.rule
			cat := &Catalog{Roles: []RoleProfile{role}}
			if err := cat.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidateAllowsStringEquality(t *testing.T) {
	role := tailorProfile()
	role.Skills[0].Rule = DecisionRule{Field: "professional_grade", Op: OpEQ, Value: "expert"}
	cat := &Catalog{Roles: []RoleProfile{role}}
	if err := cat.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRoleNamesPreserveOrder(t *testing.T) {
	carpenter := tailorProfile()
	carpenter.Name = "Carpenter"
	carpenter.Skills[0].Evaluator = "JointAssessorAgent"
	cat := &Catalog{Roles: []RoleProfile{tailorProfile(), carpenter}}

	names := cat.RoleNames()
	if len(names) != 2 || names[0] != "Tailor" || names[1] != "Carpenter" {
		t.Fatalf("unexpected role names: %v", names)
	}
}

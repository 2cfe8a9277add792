// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the static role catalog: which skills must be
// verified for each job role, which evaluator checks each skill, and the
// decision rule applied to that evaluator's result.
package catalog

import (
	"fmt"
	"strings"
)

// AssessmentType tags how a skill is verified.
type AssessmentType string

const (
	AssessmentPractical AssessmentType = "practical-task"
	AssessmentImage     AssessmentType = "practical-image"
	AssessmentKnowledge AssessmentType = "knowledge-check"
)

// Op is a decision rule comparator.
type Op string

const (
	OpGTE Op = ">="
	OpGT  Op = ">"
	OpLTE Op = "<="
	OpLT  Op = "<"
	OpEQ  Op = "=="
	OpNEQ Op = "!="
)

// CombineMode states how per-requirement outcomes combine into the overall
// decision. Only CombineAll (logical AND) is supported; the zero value means
// CombineAll.
type CombineMode string

const CombineAll CombineMode = "all"

// DecisionRule is a predicate over one named field of an evaluator's result
// payload. A missing or mistyped field evaluates as rule-failed, never as a
// crash (fail-closed).
type DecisionRule struct {
	Field string `json:"field" yaml:"field"`
	Op    Op     `json:"op" yaml:"op"`
	Value any    `json:"value" yaml:"value"`
}

// SkillRequirement binds one skill of a role to the evaluator that verifies
// it and the rule applied to the evaluator's output.
type SkillRequirement struct {
	Skill          string         `json:"skill" yaml:"skill"`
	AssessmentType AssessmentType `json:"assessment_type" yaml:"assessment_type"`
	Evaluator      string         `json:"evaluator" yaml:"evaluator"`
	Rule           DecisionRule   `json:"rule" yaml:"rule"`
}

// RoleProfile defines what must be checked for one job role. Profiles are
// immutable after load.
type RoleProfile struct {
	Name    string             `json:"name" yaml:"name"`
	Aliases []string           `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Combine CombineMode        `json:"combine,omitempty" yaml:"combine,omitempty"`
	Skills  []SkillRequirement `json:"skills" yaml:"skills"`
}

// Catalog is the process-wide, read-only role catalog.
type Catalog struct {
	Version string        `json:"version,omitempty" yaml:"version,omitempty"`
	Roles   []RoleProfile `json:"roles" yaml:"roles"`
}

// Lookup returns the profile for a role name, matched case-insensitively.
func (c *Catalog) Lookup(role string) (*RoleProfile, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Roles {
		if strings.EqualFold(c.Roles[i].Name, role) {
			return &c.Roles[i], true
		}
	}
	return nil, false
}

// RoleNames returns the catalog's role names in declaration order.
func (c *Catalog) RoleNames() []string {
	names := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Validate ensures the catalog is well-formed. Violations are configuration
// errors, distinct from user-facing ambiguity.
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("catalog is nil")
	}
	if len(c.Roles) == 0 {
		return fmt.Errorf("catalog has no roles")
	}
	seen := make(map[string]bool, len(c.Roles))
	for _, role := range c.Roles {
		if role.Name == "" {
			return fmt.Errorf("role name is required")
		}
		key := strings.ToLower(role.Name)
		if seen[key] {
			return fmt.Errorf("duplicate role %q", role.Name)
		}
		seen[key] = true
		if err := role.validate(); err != nil {
			return fmt.Errorf("role %q: %w", role.Name, err)
		}
	}
	return nil
}

func (r *RoleProfile) validate() error {
	switch r.Combine {
	case "", CombineAll:
	default:
		return fmt.Errorf("unsupported combine mode %q", r.Combine)
	}
	if len(r.Skills) == 0 {
		return fmt.Errorf("no skill requirements")
	}
	evaluators := make(map[string]bool, len(r.Skills))
	for _, req := range r.Skills {
		if req.Skill == "" {
			return fmt.Errorf("skill name is required")
		}
		if req.Evaluator == "" {
			return fmt.Errorf("skill %q missing evaluator", req.Skill)
		}
		// Results correlate back by evaluator name, so one evaluator
		// cannot serve two requirements of the same role.
		if evaluators[req.Evaluator] {
			return fmt.Errorf("evaluator %q assigned twice", req.Evaluator)
		}
		evaluators[req.Evaluator] = true
		switch req.AssessmentType {
		case AssessmentPractical, AssessmentImage, AssessmentKnowledge:
		default:
			return fmt.Errorf("skill %q has unknown assessment type %q", req.Skill, req.AssessmentType)
		}
		if err := req.Rule.validate(); err != nil {
			return fmt.Errorf("skill %q: %w", req.Skill, err)
		}
	}
	return nil
}

func (d *DecisionRule) validate() error {
	if d.Field == "" {
		return fmt.Errorf("rule field is required")
	}
	switch d.Op {
	case OpGTE, OpGT, OpLTE, OpLT:
		if !isNumeric(d.Value) {
			return fmt.Errorf("rule op %q requires a numeric threshold, got %T", d.Op, d.Value)
		}
	case OpEQ, OpNEQ:
		switch d.Value.(type) {
		case string, bool:
		default:
			if !isNumeric(d.Value) {
				return fmt.Errorf("rule op %q requires a number, string or bool, got %T", d.Op, d.Value)
			}
		}
	default:
		return fmt.Errorf("unknown rule op %q", d.Op)
	}
	return nil
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	}
	return false
}

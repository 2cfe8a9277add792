// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package core defines the shared domain types of the assessment engine:
// dispatch instructions, evaluator results, decisions, and the per-attempt
// session state machine.
package core

// TaskContext is the work description handed to an evaluator sub-agent.
type TaskContext struct {
	SkillToAssess  string `json:"skill_to_assess"`
	AssessmentType string `json:"assessment_type"`
}

// DispatchInstruction addresses one evaluator sub-agent for one skill of a
// resolved role. Instructions are created once at dispatch time and never
// mutated afterwards.
type DispatchInstruction struct {
	AgentName   string      `json:"agent_name"`
	Role        string      `json:"role"`
	TaskContext TaskContext `json:"task_context"`
}

// AssessmentResult is one evaluator's raw finding. The payload shape is
// defined by the evaluator, not by the engine; the role catalog alone decides
// which keys matter.
type AssessmentResult struct {
	AgentName string         `json:"agent_name"`
	Payload   map[string]any `json:"result"`
}

// Outcome is the binary assessment verdict.
type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeFail Outcome = "FAIL"
)

// Decision is the final verdict plus an internal justification. The
// justification enumerates requirement outcomes and observed values; it is
// for internal record only and is never surfaced verbatim to the user.
type Decision struct {
	Outcome       Outcome `json:"decision"`
	Justification string  `json:"justification"`
}

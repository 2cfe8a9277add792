// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/jllopis/gremio/pkg/core"
)

// TurnReply is the output of a dispatch turn. Instructions is empty when the
// utterance did not resolve to a role; ResponseToUser then carries either a
// clarifying question or the fixed redirect message.
type TurnReply struct {
	ResponseToUser string                     `json:"response_to_user"`
	Instructions   []core.DispatchInstruction `json:"sub_agent_instructions"`
}

// ResultsTurn is the input of a decision turn: the role that was assessed and
// the evaluator results gathered by the host, in any order and possibly
// across several calls.
type ResultsTurn struct {
	RoleAssessed string                  `json:"role_assessed"`
	Results      []core.AssessmentResult `json:"assessment_results"`
}

// DecisionReply is the output of a decision turn. FinalDecisionData carries
// the machine-readable verdict; ResponseToUser is the only text shown to the
// applicant.
type DecisionReply struct {
	ResponseToUser    string        `json:"response_to_user"`
	FinalDecisionData core.Decision `json:"final_decision_data"`
}

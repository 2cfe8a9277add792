// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch turns a resolved role profile into the ordered set of
// evaluator dispatch instructions.
package dispatch

import (
	"github.com/jllopis/gremio/pkg/catalog"
	"github.com/jllopis/gremio/pkg/core"
	gerrors "github.com/jllopis/gremio/pkg/errors"
)

// Plan emits one DispatchInstruction per skill requirement of the profile,
// preserving catalog order. Plan is pure; the session transition belongs to
// the engine step that consumes the plan.
func Plan(profile *catalog.RoleProfile) []core.DispatchInstruction {
	instructions := make([]core.DispatchInstruction, 0, len(profile.Skills))
	for _, req := range profile.Skills {
		instructions = append(instructions, core.DispatchInstruction{
			AgentName: req.Evaluator,
			Role:      profile.Name,
			TaskContext: core.TaskContext{
				SkillToAssess:  req.Skill,
				AssessmentType: string(req.AssessmentType),
			},
		})
	}
	return instructions
}

// PlanFor resolves the role in the catalog and plans its instructions. A
// role that intent resolution produced but the catalog does not contain is a
// configuration error, not user ambiguity, and is reported as such.
func PlanFor(cat *catalog.Catalog, role string) ([]core.DispatchInstruction, error) {
	profile, ok := cat.Lookup(role)
	if !ok {
		return nil, gerrors.New(gerrors.CodeConfig, "resolved role missing from catalog", nil).
			WithContext("role", role)
	}
	return Plan(profile), nil
}

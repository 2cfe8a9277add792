// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package verdict aggregates evaluator results into the final PASS/FAIL
// decision. Rule evaluation is fail-closed: a payload field that is missing,
// of the wrong type, or otherwise not comparable counts as a failed
// requirement and is noted in the justification, never raised as an error.
package verdict

import (
	"fmt"
	"strings"

	"github.com/jllopis/gremio/pkg/catalog"
	"github.com/jllopis/gremio/pkg/core"
	gerrors "github.com/jllopis/gremio/pkg/errors"
)

// Aggregate computes the decision for a role from the results collected so
// far, keyed by evaluator name. A requirement with no matching result makes
// aggregation signal INCOMPLETE_RESULTS instead of producing a decision.
// Given the same inputs the returned decision is identical, so re-invocation
// is idempotent.
func Aggregate(profile *catalog.RoleProfile, results map[string]core.AssessmentResult) (core.Decision, error) {
	var missing []string
	for _, req := range profile.Skills {
		if _, ok := results[req.Evaluator]; !ok {
			missing = append(missing, req.Evaluator)
		}
	}
	if len(missing) > 0 {
		return core.Decision{}, gerrors.New(gerrors.CodeIncompleteResults, "not all evaluators have responded", nil).
			WithContext("role", profile.Name).
			WithContext("missing", missing)
	}

	passed := true
	lines := make([]string, 0, len(profile.Skills))
	for _, req := range profile.Skills {
		result := results[req.Evaluator]
		ok, detail := evalRule(req.Rule, result.Payload)
		if !ok {
			passed = false
		}
		lines = append(lines, fmt.Sprintf("%s (%s): %s", req.Skill, req.Evaluator, detail))
	}

	outcome := core.OutcomeFail
	if passed {
		outcome = core.OutcomePass
	}
	return core.Decision{
		Outcome:       outcome,
		Justification: strings.Join(lines, "; "),
	}, nil
}

// evalRule applies one decision rule to a raw payload. The returned detail
// carries the literal values compared, for the internal justification.
func evalRule(rule catalog.DecisionRule, payload map[string]any) (bool, string) {
	raw, present := payload[rule.Field]
	if !present {
		return false, fmt.Sprintf("field %q missing from result, rule %s %s %v failed closed",
			rule.Field, rule.Field, rule.Op, rule.Value)
	}

	switch rule.Op {
	case catalog.OpGTE, catalog.OpGT, catalog.OpLTE, catalog.OpLT:
		observed, ok := toFloat(raw)
		threshold, tok := toFloat(rule.Value)
		if !ok || !tok {
			return false, fmt.Sprintf("field %q has non-numeric value %v (%T), rule %s %s %v failed closed",
				rule.Field, raw, raw, rule.Field, rule.Op, rule.Value)
		}
		pass := compareFloat(observed, threshold, rule.Op)
		return pass, fmt.Sprintf("%s=%v %s %v -> %s", rule.Field, raw, rule.Op, rule.Value, passFail(pass))
	case catalog.OpEQ, catalog.OpNEQ:
		pass, comparable := looseEqual(raw, rule.Value)
		if !comparable {
			return false, fmt.Sprintf("field %q value %v (%T) not comparable to %v, rule failed closed",
				rule.Field, raw, raw, rule.Value)
		}
		if rule.Op == catalog.OpNEQ {
			pass = !pass
		}
		return pass, fmt.Sprintf("%s=%v %s %v -> %s", rule.Field, raw, rule.Op, rule.Value, passFail(pass))
	default:
		// Unknown ops are rejected at catalog validation; fail closed if
		// one slips through.
		return false, fmt.Sprintf("unknown op %q, rule failed closed", rule.Op)
	}
}

func compareFloat(observed, threshold float64, op catalog.Op) bool {
	switch op {
	case catalog.OpGTE:
		return observed >= threshold
	case catalog.OpGT:
		return observed > threshold
	case catalog.OpLTE:
		return observed <= threshold
	case catalog.OpLT:
		return observed < threshold
	}
	return false
}

// looseEqual compares payload values against rule thresholds across the
// types JSON and YAML decoding produce. The second return is false when the
// kinds are not comparable at all.
func looseEqual(raw, want any) (bool, bool) {
	if rf, ok := toFloat(raw); ok {
		if wf, wok := toFloat(want); wok {
			return rf == wf, true
		}
		return false, false
	}
	switch w := want.(type) {
	case string:
		r, ok := raw.(string)
		return ok && r == w, ok
	case bool:
		r, ok := raw.(bool)
		return ok && r == w, ok
	}
	return false, false
}

// toFloat coerces the numeric types JSON and YAML decoding produce.
// Strings are deliberately not parsed: a string where a number is expected
// is a malformed payload and fails closed.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func passFail(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}

// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

// Package intent classifies free-text applicant utterances against the role
// catalog. Resolution is a pure function of the utterance, so the matching
// strategy (keyword lookup, embedding similarity) is swappable without
// touching the session state machine.
package intent

import (
	"context"
	"strings"
	"unicode"
)

// Kind is the classification outcome of one utterance.
type Kind string

const (
	// KindResolved means the utterance unambiguously names exactly one
	// catalog role.
	KindResolved Kind = "resolved"

	// KindAmbiguous means no role was named, or more than one role
	// plausibly matches. The engine asks a clarifying question rather
	// than guessing.
	KindAmbiguous Kind = "ambiguous"

	// KindOutOfScope means the utterance is unrelated to job assessment.
	KindOutOfScope Kind = "out_of_scope"
)

// Outcome is the result of intent resolution. Role is set only for
// KindResolved. Confidence is strategy-defined and informational.
type Outcome struct {
	Kind       Kind
	Role       string
	Confidence float64
}

// Resolver maps a raw utterance to an Outcome. Implementations must be free
// of side effects beyond classification.
type Resolver interface {
	Resolve(ctx context.Context, utterance string) (Outcome, error)
}

// Normalize lowercases an utterance and strips everything but letters,
// digits and spaces, collapsing runs of whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

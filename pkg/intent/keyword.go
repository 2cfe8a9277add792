package intent

import (
	"context"
	"strings"

	"github.com/jllopis/gremio/pkg/catalog"
)

// assessmentVocabulary marks utterances that are about job assessment even
// when no role is named. Such utterances are ambiguous (ask which role),
// not out of scope.
var assessmentVocabulary = []string{
	"job", "jobs", "work", "position", "role", "roles", "apply",
	"application", "applying", "hire", "hiring", "career", "vacancy",
	"assess", "assessment", "skill", "skills", "test", "qualify",
	"qualification", "interview",
}

// KeywordResolver matches role names and catalog aliases as whole phrases
// inside the normalized utterance. If more than one role matches, the
// utterance is ambiguous; an arbitrary pick is never made.
type KeywordResolver struct {
	phrases map[string]string // normalized phrase -> role name
}

// NewKeywordResolver builds a resolver from the role catalog.
func NewKeywordResolver(cat *catalog.Catalog) *KeywordResolver {
	phrases := make(map[string]string)
	for _, role := range cat.Roles {
		phrases[Normalize(role.Name)] = role.Name
		for _, alias := range role.Aliases {
			if p := Normalize(alias); p != "" {
				phrases[p] = role.Name
			}
		}
	}
	return &KeywordResolver{phrases: phrases}
}

// Resolve implements Resolver.
func (r *KeywordResolver) Resolve(_ context.Context, utterance string) (Outcome, error) {
	norm := Normalize(utterance)
	if norm == "" {
		return Outcome{Kind: KindAmbiguous}, nil
	}

	padded := " " + norm + " "
	matched := make(map[string]bool)
	for phrase, role := range r.phrases {
		if strings.Contains(padded, " "+phrase+" ") {
			matched[role] = true
		}
	}

	switch len(matched) {
	case 1:
		for role := range matched {
			return Outcome{Kind: KindResolved, Role: role, Confidence: 1}, nil
		}
	case 0:
		if containsAssessmentVocabulary(padded) {
			return Outcome{Kind: KindAmbiguous}, nil
		}
		return Outcome{Kind: KindOutOfScope}, nil
	}
	// Several roles plausibly match: never pick one arbitrarily.
	return Outcome{Kind: KindAmbiguous}, nil
}

func containsAssessmentVocabulary(padded string) bool {
	for _, word := range assessmentVocabulary {
		if strings.Contains(padded, " "+word+" ") {
			return true
		}
	}
	return false
}

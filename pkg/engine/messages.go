package engine

import (
	"fmt"
	"strings"

	"github.com/jllopis/gremio/pkg/core"
	"github.com/jllopis/gremio/pkg/intent"
)

// The applicant only ever sees the strings produced here. Rules, evaluator
// names, justifications, and internal errors must never leak into them.
const (
	msgWelcome = "Hello! I can run a skills assessment for one of our open positions. " +
		"Which role would you like to be assessed for?"

	msgRedirect = "I can only help with job skill assessments. " +
		"If you'd like to be assessed for a role, just tell me which one."

	msgInProgress = "Your assessment is still in progress. " +
		"I'll have a decision for you as soon as all evaluations are in."
)

func clarifyText(roles []string) string {
	if len(roles) == 0 {
		return "Which role would you like to be assessed for?"
	}
	return fmt.Sprintf("Which role would you like to be assessed for? I can currently assess: %s.",
		strings.Join(roles, ", "))
}

func dispatchText(role string) string {
	return fmt.Sprintf("Great, I've started your assessment for the %s role. "+
		"I'll get back to you with a decision once the evaluations are done.", role)
}

func decisionText(role string, decision *core.Decision) string {
	if decision == nil {
		return msgInProgress
	}
	if decision.Outcome == core.OutcomePass {
		return fmt.Sprintf("Congratulations! You passed the assessment for the %s role. "+
			"We'll be in touch with the next steps.", role)
	}
	return fmt.Sprintf("Thank you for completing the assessment for the %s role. "+
		"Unfortunately you did not meet the requirements this time.", role)
}

var greetings = map[string]bool{
	"hi":           true,
	"hello":        true,
	"hey":          true,
	"good morning": true,
	"good evening": true,
	"help":         true,
	"start":        true,
}

func isGreeting(utterance string) bool {
	return greetings[intent.Normalize(utterance)]
}

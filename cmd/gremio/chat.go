// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jllopis/gremio/pkg/core"
	"github.com/jllopis/gremio/pkg/engine"
	gerrors "github.com/jllopis/gremio/pkg/errors"
)

// runChat drives a single assessment session on the terminal. Dispatch
// instructions are printed instead of being sent to real evaluators; the
// operator plays the evaluators by typing result JSON per agent.
func runChat(ctx context.Context, global globalFlags) {
	a, err := buildApp(ctx, global)
	if err != nil {
		fatal(err)
	}
	defer a.close(context.Background())

	sess := core.NewSession("")
	a.engine.SessionCreated(ctx, sess)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("gremio chat (ctrl-d to quit)")
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply, err := a.engine.HandleMessage(ctx, sess, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println("gremio>", reply.ResponseToUser)
		if len(reply.Instructions) == 0 {
			continue
		}

		turn := engine.ResultsTurn{RoleAssessed: sess.ResolvedRole}
		for _, inst := range reply.Instructions {
			fmt.Printf("dispatch> %s assesses %q (%s)\n",
				inst.AgentName, inst.TaskContext.SkillToAssess, inst.TaskContext.AssessmentType)
		}
		for _, inst := range reply.Instructions {
			result, ok := readResult(scanner, inst.AgentName)
			if !ok {
				return
			}
			turn.Results = append(turn.Results, result)
		}

		decision, err := a.engine.HandleResults(ctx, sess, turn)
		if err != nil {
			if gerrors.HasCode(err, gerrors.CodeIncompleteResults) {
				fmt.Println("gremio> still waiting on evaluators")
				continue
			}
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println("gremio>", decision.ResponseToUser)
		fmt.Printf("decision> %s: %s\n",
			decision.FinalDecisionData.Outcome, decision.FinalDecisionData.Justification)
		return
	}
}

// readResult prompts for one evaluator's result payload as a JSON object.
func readResult(scanner *bufio.Scanner, agentName string) (core.AssessmentResult, bool) {
	for {
		fmt.Printf("%s result (JSON)> ", agentName)
		if !scanner.Scan() {
			fmt.Println()
			return core.AssessmentResult{}, false
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			fmt.Fprintln(os.Stderr, "invalid JSON:", err)
			continue
		}
		return core.AssessmentResult{AgentName: agentName, Payload: payload}, true
	}
}

package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/gremio/pkg/catalog"
	"github.com/jllopis/gremio/pkg/engine"
	"github.com/jllopis/gremio/pkg/intent"
	"github.com/jllopis/gremio/pkg/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cat := &catalog.Catalog{
		Roles: []catalog.RoleProfile{
			{
				Name: "Tailor",
				Skills: []catalog.SkillRequirement{
					{
						Skill:          "Stitching",
						AssessmentType: catalog.AssessmentImage,
						Evaluator:      "StitchingAssessorAgent",
						Rule: catalog.DecisionRule{
							Field: "quality_rating",
							Op:    catalog.OpGTE,
							Value: 7,
						},
					},
				},
			},
		},
	}
	if err := cat.Validate(); err != nil {
		t.Fatalf("catalog validate: %v", err)
	}
	e, err := engine.New(cat, intent.NewKeywordResolver(cat))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return NewServer("gremio-test", "v0.0.1", e, session.NewInMemoryStore(time.Minute))
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestDispatchAndDecide(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleDispatch(ctx, callRequest(map[string]interface{}{
		"session_id": "sess-1",
		"message":    "I want the tailor job",
	}))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	var turn engine.TurnReply
	if err := json.Unmarshal([]byte(textContent(t, result)), &turn); err != nil {
		t.Fatalf("unmarshal turn reply: %v", err)
	}
	if len(turn.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(turn.Instructions))
	}

	raw := `{"role_assessed":"Tailor","assessment_results":[{"agent_name":"StitchingAssessorAgent","result":{"quality_rating":8}}]}`
	result, err = s.handleDecide(ctx, callRequest(map[string]interface{}{
		"session_id":   "sess-1",
		"results_turn": raw,
	}))
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	var decision engine.DecisionReply
	if err := json.Unmarshal([]byte(textContent(t, result)), &decision); err != nil {
		t.Fatalf("unmarshal decision reply: %v", err)
	}
	if decision.FinalDecisionData.Outcome != "PASS" {
		t.Fatalf("expected PASS, got %s", decision.FinalDecisionData.Outcome)
	}
}

func TestDispatchRequiresArgs(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleDispatch(context.Background(), callRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result for missing arguments")
	}
}

func TestDecideUnknownSession(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleDecide(context.Background(), callRequest(map[string]interface{}{
		"session_id":   "nope",
		"results_turn": `{"role_assessed":"Tailor","assessment_results":[]}`,
	}))
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result for unknown session")
	}
}

// Package mcpserver exposes the assessment engine as MCP tools so any
// MCP-capable host can drive the dispatch and decision turns over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jllopis/gremio/pkg/core"
	"github.com/jllopis/gremio/pkg/engine"
	"github.com/jllopis/gremio/pkg/session"
)

// Server wraps the mcp-go server around the engine.
type Server struct {
	mcpServer *server.MCPServer
	engine    *engine.Engine
	sessions  session.Store

	mu sync.Mutex
}

// NewServer creates an MCP server exposing the assessment tools.
func NewServer(name, version string, e *engine.Engine, sessions session.Store) *Server {
	if sessions == nil {
		sessions = session.NewInMemoryStore(30 * time.Minute)
	}
	s := &Server{
		mcpServer: server.NewMCPServer(name, version),
		engine:    e,
		sessions:  sessions,
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	dispatchTool := mcp.NewTool("assessment_dispatch",
		mcp.WithDescription("Process an applicant message for a session; returns the dispatch-turn JSON with evaluator instructions or a clarification."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Applicant utterance")),
	)
	s.mcpServer.AddTool(dispatchTool, s.handleDispatch)

	decideTool := mcp.NewTool("assessment_decide",
		mcp.WithDescription("Submit evaluator results for a session; returns the decision-turn JSON once every evaluator has reported."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("results_turn", mcp.Required(), mcp.Description("Results-turn JSON: {role_assessed, assessment_results}")),
	)
	s.mcpServer.AddTool(decideTool, s.handleDecide)
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	message, _ := args["message"].(string)
	if sessionID == "" || message == "" {
		return mcp.NewToolResultError("session_id and message are required"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, found := s.sessions.Get(ctx, sessionID)
	if !found {
		sess = core.NewSession(sessionID)
		s.engine.SessionCreated(ctx, sess)
	}
	reply, err := s.engine.HandleMessage(ctx, sess, message)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return jsonResult(reply)
}

func (s *Server) handleDecide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	raw, _ := args["results_turn"].(string)
	if sessionID == "" || raw == "" {
		return mcp.NewToolResultError("session_id and results_turn are required"), nil
	}

	var turn engine.ResultsTurn
	if err := json.Unmarshal([]byte(raw), &turn); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid results_turn: %v", err)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, found := s.sessions.Get(ctx, sessionID)
	if !found {
		return mcp.NewToolResultError("unknown session"), nil
	}
	reply, err := s.engine.HandleResults(ctx, sess, turn)
	if err != nil {
		if putErr := s.sessions.Put(ctx, sess); putErr != nil {
			return nil, fmt.Errorf("persist session: %w", putErr)
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return jsonResult(reply)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

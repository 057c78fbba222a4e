// Package mcpserver exposes the dialect adapter's discovery surface over
// the Model Context Protocol, for editor/agent clients that introspect the
// bridge directly instead of speaking the Ollama dialect over HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jbctechsolutions/ollama-bridge/alias"
	"github.com/jbctechsolutions/ollama-bridge/config"
	"github.com/jbctechsolutions/ollama-bridge/dialect"
	"github.com/jbctechsolutions/ollama-bridge/stream"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes three tools over stdio: tags (list models), show (model
// detail), and status (active stream count and config summary).
type Server struct {
	cfg     *config.Config
	table   *alias.Table
	dialect *dialect.Client
}

// NewServer constructs an mcpserver.Server over the given alias table and
// dialect client. proxy.Server builds its own table, so the two surfaces do
// not share alias state.
func NewServer(cfg *config.Config, table *alias.Table, client *dialect.Client) *Server {
	return &Server{cfg: cfg, table: table, dialect: client}
}

// Start registers all tools with a new MCP server and serves over stdio. It
// blocks until stdin is closed or an error occurs.
func (s *Server) Start() error {
	srv := server.NewMCPServer(
		"ollama-bridge",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	srv.AddTool(mcpgo.NewTool("tags",
		mcpgo.WithDescription("List upstream models in Ollama-shaped form, with friendly aliases and capabilities"),
	), s.handleTags)

	srv.AddTool(mcpgo.NewTool("show",
		mcpgo.WithDescription("Show model detail for a model name or friendly alias"),
		mcpgo.WithString("model",
			mcpgo.Required(),
			mcpgo.Description("Model name or friendly alias, as returned by the tags tool"),
		),
	), s.handleShow)

	srv.AddTool(mcpgo.NewTool("status",
		mcpgo.WithDescription("Report active stream count and the current thinking mode"),
	), s.handleStatus)

	return server.ServeStdio(srv)
}

func (s *Server) handleTags(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	result := s.dialect.Tags(ctx, s.table, s.cfg.Overrides.AliasPins, s.cfg.Overrides.Capabilities)
	b, err := json.Marshal(result)
	if err != nil {
		return mcpgo.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

func (s *Server) handleShow(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	model, err := req.RequireString("model")
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	out := s.dialect.Show(ctx, model, s.table, s.cfg.Overrides.Capabilities)
	return mcpgo.NewToolResultText(string(out)), nil
}

// statusResult is the JSON shape returned by the status tool.
type statusResult struct {
	ActiveStreams int64  `json:"active_streams"`
	ThinkingMode  string `json:"thinking_mode"`
	Upstream      string `json:"upstream"`
}

func (s *Server) handleStatus(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	result := statusResult{
		ActiveStreams: stream.ActiveStreams(),
		ThinkingMode:  string(s.cfg.ThinkingMode),
		Upstream:      s.cfg.Upstream,
	}
	b, err := json.Marshal(result)
	if err != nil {
		return mcpgo.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

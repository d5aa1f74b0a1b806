// Package mcpsession connects to MCP servers over stdio and exposes them as
// provider sessions for the orchestrator.
//
// Lifecycle per server: launch the configured command, initialize the MCP
// connection, enumerate tools, serve call_tool requests, close on shutdown.
package mcpsession

import (
	"context"
	"fmt"
	"sync"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Mithul-Joseph/mcp-project/chat"
	"github.com/Mithul-Joseph/mcp-project/internal/config"
)

// initTimeout bounds the MCP initialize handshake.
const initTimeout = 30 * time.Second

const clientName = "mcp-chat"
const clientVersion = "0.1.0"

// Session is one connected MCP server process.
//
// A session is not assumed safe for concurrent tool calls; mu serializes them.
type Session struct {
	name   string
	client *mcpclient.Client

	mu sync.Mutex
}

// Connect launches the configured server command, performs the MCP initialize
// handshake, and returns the ready session. The caller owns Close.
func Connect(ctx context.Context, name string, cfg config.ServerConfig) (*Session, error) {
	env := make([]string, 0, len(cfg.Env))
	for k, v := range cfg.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	cli, err := mcpclient.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("start server %q: %w", name, err)
	}

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}
	if _, err := cli.Initialize(initCtx, initReq); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("initialize server %q: %w", name, err)
	}

	return &Session{name: name, client: cli}, nil
}

// Name returns the configured server name.
func (s *Session) Name() string {
	return s.name
}

// ListTools enumerates the tools the server advertises.
func (s *Session) ListTools(ctx context.Context) ([]chat.ToolDescriptor, error) {
	res, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools on %q: %w", s.name, err)
	}
	descs := make([]chat.ToolDescriptor, 0, len(res.Tools))
	for _, t := range res.Tools {
		descs = append(descs, chat.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schemaToMap(t.InputSchema),
		})
	}
	return descs, nil
}

// CallTool invokes the named tool and returns its result normalized to text.
// Calls against the same session are serialized.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := s.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call %q on %q: %w", name, s.name, err)
	}
	return NormalizeResult(res)
}

// Close shuts the server process down.
func (s *Session) Close() error {
	return s.client.Close()
}

// schemaToMap renders the typed MCP input schema back to the raw JSON Schema
// object the model client forwards verbatim.
func schemaToMap(schema mcp.ToolInputSchema) map[string]any {
	m := map[string]any{"type": schema.Type}
	if m["type"] == "" {
		m["type"] = "object"
	}
	if schema.Properties != nil {
		m["properties"] = schema.Properties
	}
	if len(schema.Required) > 0 {
		m["required"] = schema.Required
	}
	return m
}

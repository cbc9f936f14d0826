package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/bryanwahyu/bearer-mcp/internal/application/operations"
	domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"
)

const (
	SSEEndpoint     = "/sse"
	MessageEndpoint = "/messages/"
)

// Recorder receives one event per tool call. middleware.Metrics satisfies it.
type Recorder interface {
	ToolStarted(name string)
	ToolFinished(name string, isError bool, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ToolStarted(string)                       {}
func (nopRecorder) ToolFinished(string, bool, time.Duration) {}

// Handler is the subset of the registry the MCP layer depends on.
type Handler interface {
	Operations() []domain.Operation
	Handle(ctx context.Context, name string, args map[string]any) operations.Reply
}

type Server struct {
	mcp     *server.MCPServer
	handler Handler
	metrics Recorder
	logger  *zap.Logger
	tools   []mcp.Tool
}

// New builds the MCP server and registers one tool per catalog operation.
func New(name, version string, h Handler, metrics Recorder, logger *zap.Logger) *Server {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		handler: h,
		metrics: metrics,
		logger:  logger,
	}
	for _, op := range h.Operations() {
		tool := ToolFor(op)
		s.tools = append(s.tools, tool)
		s.mcp.AddTool(tool, s.handle(op.Name))
	}
	return s
}

// Tools returns the advertised tool definitions in registration order.
func (s *Server) Tools() []mcp.Tool {
	return s.tools
}

// MCP exposes the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks serving JSON-RPC over stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio")
	return server.ServeStdio(s.mcp, server.WithErrorLogger(zap.NewStdLog(s.logger)))
}

// SSE wires the event stream and message endpoints. baseURL is what clients
// are told to POST to, so it must be reachable from their side.
type SSE struct {
	srv *server.SSEServer
}

func (s *Server) NewSSE(baseURL string) *SSE {
	return &SSE{srv: server.NewSSEServer(s.mcp,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint(SSEEndpoint),
		server.WithMessageEndpoint(MessageEndpoint),
	)}
}

func (e *SSE) StreamHandler() http.Handler  { return e.srv.SSEHandler() }
func (e *SSE) MessageHandler() http.Handler { return e.srv.MessageHandler() }

// Shutdown closes open event streams.
func (e *SSE) Shutdown(ctx context.Context) error {
	return e.srv.Shutdown(ctx)
}

func (s *Server) handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.Call(ctx, name, req.GetArguments()), nil
	}
}

// Call runs one tool through the registry boundary and wraps the reply.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	start := time.Now()
	s.metrics.ToolStarted(name)
	reply := s.handler.Handle(ctx, name, args)
	s.metrics.ToolFinished(name, reply.IsError, time.Since(start))

	if reply.IsError {
		return mcp.NewToolResultError(reply.Text)
	}
	return mcp.NewToolResultText(reply.Text)
}

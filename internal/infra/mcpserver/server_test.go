package mcpserver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/bearer-mcp/internal/application/operations"
	domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"
)

type stubExecutor struct {
	outcome domain.ExecutionOutcome
}

func (s stubExecutor) Run(_ context.Context, inv domain.CommandInvocation) domain.ExecutionOutcome {
	o := s.outcome
	o.WorkDir = inv.WorkDir
	return o
}

type countingRecorder struct {
	mu       sync.Mutex
	started  []string
	failures int
}

func (c *countingRecorder) ToolStarted(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = append(c.started, name)
}

func (c *countingRecorder) ToolFinished(_ string, isError bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isError {
		c.failures++
	}
}

func newTestServer(t *testing.T, o domain.ExecutionOutcome) (*Server, *countingRecorder) {
	t.Helper()
	dir := t.TempDir()
	reg := operations.NewRegistry(operations.Options{
		Paths:    operations.NewResolver(dir, dir),
		Executor: stubExecutor{outcome: o},
	})
	rec := &countingRecorder{}
	return New("bearer-mcp-server", "1.0.1", reg, rec, nil), rec
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestTools_AdvertiseCatalog(t *testing.T) {
	s, _ := newTestServer(t, domain.ExecutionOutcome{})

	var names []string
	for _, tool := range s.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		operations.OpScanRepo,
		operations.OpScan,
		operations.OpVersion,
		operations.OpListRules,
		operations.OpInitConfig,
	}, names)
}

func TestToolFor_Schema(t *testing.T) {
	var scan domain.Operation
	for _, op := range operations.Catalog() {
		if op.Name == operations.OpScan {
			scan = op
		}
	}
	tool := ToolFor(scan)

	assert.Equal(t, scan.Description, tool.Description)
	assert.Equal(t, []string{"path"}, tool.InputSchema.Required)

	format, ok := tool.InputSchema.Properties["format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", format["type"])
	assert.Equal(t, operations.Formats, format["enum"])
	assert.Equal(t, "json", format["default"])

	quiet, ok := tool.InputSchema.Properties["quiet"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boolean", quiet["type"])
	assert.Equal(t, false, quiet["default"])
}

func TestCall_ScanWithFindings(t *testing.T) {
	s, rec := newTestServer(t, domain.ExecutionOutcome{ExitCode: 1, Stdout: `{"high":[{"id":"x"}]}`})

	res := s.Call(context.Background(), operations.OpScanRepo, nil)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"high"`)
	assert.Equal(t, []string{operations.OpScanRepo}, rec.started)
	assert.Zero(t, rec.failures)
}

func TestCall_ToolErrorIsFlagged(t *testing.T) {
	s, rec := newTestServer(t, domain.ExecutionOutcome{ExitCode: 2, Stderr: "boom", Command: "bearer scan"})

	res := s.Call(context.Background(), operations.OpScanRepo, map[string]any{"format": "sarif"})
	assert.True(t, res.IsError)
	assert.Equal(t, "Bearer scan failed:\n\nCommand: bearer scan\nExit code: 2\nError: boom", text(t, res))
	assert.Equal(t, 1, rec.failures)
}

func TestCall_MissingPath(t *testing.T) {
	s, _ := newTestServer(t, domain.ExecutionOutcome{})

	res := s.Call(context.Background(), operations.OpScan, map[string]any{})
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: 'path' parameter is required for bearer_scan. "+
		"Use bearer_scan_repo to scan the entire repository.", text(t, res))
}

func TestHandle_UsesRequestArguments(t *testing.T) {
	s, _ := newTestServer(t, domain.ExecutionOutcome{})

	var req mcp.CallToolRequest
	req.Params.Name = operations.OpListRules
	req.Params.Arguments = map[string]any{"language": "Go"}

	res, err := s.handle(operations.OpListRules)(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "go")
}

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"

	domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"
)

// ToolFor converts a catalog entry into its MCP tool schema.
func ToolFor(op domain.Operation) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(op.Description)}
	for _, p := range op.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case domain.TypeBoolean:
			if b, ok := p.Default.(bool); ok {
				props = append(props, mcp.DefaultBool(b))
			}
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		default:
			if len(p.Enum) > 0 {
				props = append(props, mcp.Enum(p.Enum...))
			}
			if s, ok := p.Default.(string); ok {
				props = append(props, mcp.DefaultString(s))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}
	return mcp.NewTool(op.Name, opts...)
}

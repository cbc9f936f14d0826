package main

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func replyText(res *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

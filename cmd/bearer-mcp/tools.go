package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/bearer-mcp/internal/application/operations"
	"github.com/bryanwahyu/bearer-mcp/internal/infra/mcpserver"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools this server advertises",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		ops := operations.Catalog()

		if toolsJSON {
			tools := make([]any, 0, len(ops))
			for _, op := range ops {
				tools = append(tools, mcpserver.ToolFor(op))
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(tools)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, op := range ops {
			fmt.Fprintf(tw, "%s\t%s\n", op.Name, op.Description)
		}
		return tw.Flush()
	},
}

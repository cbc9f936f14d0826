package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var callArgs []string

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Run one tool and print its result",
	Long: `Dispatches a single tool call through the same pipeline the MCP server uses
and prints the text result to stdout.

Example:
  bearer-mcp call bearer_scan --arg path=src --arg severity=high`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toolArgs, err := parseArgs(callArgs)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.mcp.Call(cmd.Context(), args[0], toolArgs)
		reply := replyText(res)
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		if res.IsError {
			return errors.New("tool call failed")
		}
		return nil
	},
}

// parseArgs turns repeated key=value flags into an argument map. Values stay
// strings; the registry coerces them against each tool's schema.
func parseArgs(kvs []string) (map[string]any, error) {
	out := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --arg %q, expected key=value", kv)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

package bearer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FormatJSON is the only structured output format.
const FormatJSON = "json"

const (
	noIssuesSummary  = "No security issues detected"
	noIssuesSentence = "Bearer scan completed successfully. No security issues detected."
	parseFailedNote  = "Bearer scan completed but JSON parsing failed. Raw output:\n"
)

type emptyReport struct {
	Findings []any  `json:"findings"`
	Summary  string `json:"summary"`
}

type errorEnvelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Stderr  string `json:"stderr"`
	Command string `json:"command"`
}

// Interpret classifies a scan outcome. Bearer exits 0 when nothing was found and
// 1 when findings were reported; both are successful scans. Anything else,
// including the -1 launch sentinel, is a tool error.
func Interpret(o ExecutionOutcome, format string) InterpretedResult {
	switch o.ExitCode {
	case 0:
		return interpretSuccess(o, format, ResultNoFindings)
	case 1:
		return interpretSuccess(o, format, ResultFindings)
	default:
		return interpretFailure(o, format)
	}
}

func interpretSuccess(o ExecutionOutcome, format string, kind ResultKind) InterpretedResult {
	res := InterpretedResult{Kind: kind, Format: format}
	out := strings.TrimSpace(o.Stdout)

	if format != FormatJSON {
		if out == "" {
			res.Text = noIssuesSentence
		} else {
			res.Text = out
		}
		return res
	}

	if out == "" {
		res.Text = mustIndent(emptyReport{Findings: []any{}, Summary: noIssuesSummary})
		return res
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(out), "", "  "); err != nil {
		res.ParseFailed = true
		res.Text = parseFailedNote + out
		return res
	}
	res.Text = buf.String()
	return res
}

func interpretFailure(o ExecutionOutcome, format string) InterpretedResult {
	msg := fmt.Sprintf("Bearer scan failed with exit code %d", o.ExitCode)
	res := InterpretedResult{
		Kind:    ResultToolError,
		Format:  format,
		Message: msg,
		Stderr:  o.Stderr,
		Command: o.Command,
	}
	if format == FormatJSON {
		res.Text = mustIndent(errorEnvelope{Error: true, Message: msg, Stderr: o.Stderr, Command: o.Command})
		return res
	}
	res.Text = fmt.Sprintf("Bearer scan failed:\n\nCommand: %s\nExit code: %d\nError: %s",
		o.Command, o.ExitCode, o.Stderr)
	return res
}

// InterpretVersion formats a `bearer version` outcome.
func InterpretVersion(o ExecutionOutcome) InterpretedResult {
	if !o.Success() {
		return plainFailure(o, "Failed to get Bearer version:\n"+o.Stderr)
	}
	return InterpretedResult{Kind: ResultOutput, Text: "Bearer CLI version:\n" + o.Stdout}
}

// InterpretInit formats a `bearer init` outcome run inside dir.
func InterpretInit(o ExecutionOutcome, dir string) InterpretedResult {
	if !o.Success() {
		return plainFailure(o, "Failed to initialize Bearer configuration:\n"+o.Stderr)
	}
	return InterpretedResult{
		Kind: ResultOutput,
		Text: fmt.Sprintf("Bearer configuration initialized in %s:\n%s", dir, o.Stdout),
	}
}

func plainFailure(o ExecutionOutcome, text string) InterpretedResult {
	return InterpretedResult{
		Kind:    ResultToolError,
		Text:    text,
		Message: fmt.Sprintf("Bearer exited with code %d", o.ExitCode),
		Stderr:  o.Stderr,
		Command: o.Command,
	}
}

// mustIndent only sees the fixed structs above, which always marshal.
// HTML escaping is off so stderr text like "<nil> & more" stays readable.
func mustIndent(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

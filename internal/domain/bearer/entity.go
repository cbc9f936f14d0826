package bearer

import "time"

// Kind memilih strategi pipeline untuk sebuah operation.
type Kind string

const (
	KindScan    Kind = "scan"
	KindVersion Kind = "version"
	KindRules   Kind = "rules"
	KindInit    Kind = "init"
)

// PathMode says how an operation obtains its target path.
type PathMode int

const (
	PathNone PathMode = iota
	PathOptional
	PathRequired
)

// ParamType enum
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeBoolean ParamType = "boolean"
)

// ParamSpec describes one named option of an Operation.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Required    bool
	Default     any
	Enum        []string
	Description string
}

// Operation is an immutable catalog entry.
type Operation struct {
	Name        string
	Description string
	Kind        Kind
	Path        PathMode
	Params      []ParamSpec
}

// Param returns the spec for name.
func (o Operation) Param(name string) (ParamSpec, bool) {
	for _, p := range o.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// ArgumentSet maps parameter names to caller-supplied values.
type ArgumentSet map[string]any

// String returns the string value for key, "" when absent.
func (a ArgumentSet) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Bool returns the boolean value for key, false when absent.
func (a ArgumentSet) Bool(key string) bool {
	v, _ := a[key].(bool)
	return v
}

// CommandInvocation is the Bearer command line (without the binary) plus the
// directory it runs in.
type CommandInvocation struct {
	Args    []string
	WorkDir string
}

// ExecutionOutcome hasil dari Executor. Dibuat sekali per invocation.
type ExecutionOutcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Command  string
	WorkDir  string
	Duration time.Duration
}

// Success is strictly exit code 0. Scan operations also accept 1, see Interpret.
func (o ExecutionOutcome) Success() bool { return o.ExitCode == 0 }

// ResultKind enum
type ResultKind string

const (
	ResultFindings   ResultKind = "findings"
	ResultNoFindings ResultKind = "no_findings"
	ResultOutput     ResultKind = "output"
	ResultToolError  ResultKind = "tool_error"
)

// InterpretedResult is the caller-facing payload.
type InterpretedResult struct {
	Kind        ResultKind `json:"kind"`
	Format      string     `json:"format,omitempty"`
	Text        string     `json:"text"`
	Message     string     `json:"message,omitempty"`
	Stderr      string     `json:"stderr,omitempty"`
	Command     string     `json:"command,omitempty"`
	ParseFailed bool       `json:"parse_failed,omitempty"`
}

// IsError reports whether the tool itself failed.
func (r InterpretedResult) IsError() bool { return r.Kind == ResultToolError }

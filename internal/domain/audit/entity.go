package audit

import "time"

// Invocation is one executed Bearer subprocess. Only metadata is kept here,
// never the tool output itself.
type Invocation struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`
	Command    string    `json:"command"`
	WorkDir    string    `json:"work_dir"`
	ExitCode   int       `json:"exit_code"`
	ResultKind string    `json:"result_kind"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

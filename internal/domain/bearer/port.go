package bearer

import "context"

// Executor port (interface untuk menjalankan Bearer CLI).
// Run never returns an error; every failure is encoded in the outcome.
type Executor interface {
	Run(ctx context.Context, inv CommandInvocation) ExecutionOutcome
}

// PathResolver port.
type PathResolver interface {
	Resolve(explicit string) (string, error)
	Validate(p string, mustExist bool) (string, error)
	WorkDir() string
}

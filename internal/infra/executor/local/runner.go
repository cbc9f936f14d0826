package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "bearer"

// waitDelay bounds how long Run waits for output pipes after the process
// has been killed.
const waitDelay = time.Second

// Runner menjalankan Bearer CLI sebagai subprocess lokal.
// It keeps no state between calls and may be used concurrently.
type Runner struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRunner builds a Runner. timeout <= 0 disables the per-call deadline.
func NewRunner(binary string, timeout time.Duration, logger *zap.Logger) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{binary: binary, timeout: timeout, logger: logger}
}

// Binary returns the configured binary name.
func (r *Runner) Binary() string { return r.binary }

// Run implements domain.Executor. Launch failures are reported as exit code -1
// with the reason in Stderr.
func (r *Runner) Run(ctx context.Context, inv domain.CommandInvocation) domain.ExecutionOutcome {
	start := time.Now()
	command := strings.Join(append([]string{r.binary}, inv.Args...), " ")

	path, err := exec.LookPath(r.binary)
	if err != nil {
		msg := fmt.Sprintf("Bearer CLI not found. Please ensure '%s' is installed and in PATH.", r.binary)
		r.logger.Error(msg, zap.Error(err))
		return r.failed(command, inv.WorkDir, msg, start)
	}

	parent := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Dir = inv.WorkDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// kill the whole process group, and stop waiting on pipes held open by
	// descendants that outlive it
	killProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	err = cmd.Run()

	exitCode := 0
	if err != nil {
		var ee *exec.ExitError
		switch {
		case ctx.Err() != nil:
			msg := r.interrupted(parent, ctx)
			r.logger.Error(msg, zap.String("command", command))
			return r.failed(command, inv.WorkDir, msg, start)
		case errors.As(err, &ee) && ee.Exited():
			// ambil exit code
			exitCode = ee.ExitCode()
		default:
			// launch failures and signal deaths
			msg := fmt.Sprintf("Error running Bearer command: %v", err)
			r.logger.Error(msg, zap.String("command", command))
			return r.failed(command, inv.WorkDir, msg, start)
		}
	}

	out := domain.ExecutionOutcome{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Command:  command,
		WorkDir:  inv.WorkDir,
		Duration: time.Since(start),
	}
	if !out.Success() {
		r.logger.Debug("bearer exited non-zero", zap.Int("exit_code", exitCode), zap.String("stderr", out.Stderr))
	}
	return out
}

// interrupted describes why ctx ended: the configured timeout, or the
// caller's own deadline or cancellation.
func (r *Runner) interrupted(parent, ctx context.Context) string {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return "Bearer command cancelled: request was cancelled"
	case parent.Err() != nil:
		return fmt.Sprintf("Bearer command interrupted: %v", parent.Err())
	case r.timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Sprintf("Bearer command timed out after %s", r.timeout)
	default:
		return fmt.Sprintf("Bearer command interrupted: %v", ctx.Err())
	}
}

func (r *Runner) failed(command, workDir, msg string, start time.Time) domain.ExecutionOutcome {
	return domain.ExecutionOutcome{
		ExitCode: -1,
		Stderr:   msg,
		Command:  command,
		WorkDir:  workDir,
		Duration: time.Since(start),
	}
}

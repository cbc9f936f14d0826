package operations

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/bearer-mcp/internal/application"
	"github.com/bryanwahyu/bearer-mcp/internal/domain/audit"
	domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"
)

// Reply is what the transport sends back: one text block plus an error flag.
type Reply struct {
	Text    string
	IsError bool
}

// Registry owns the operation catalog and runs the
// resolve → build → execute → interpret pipeline for each call.
// Registry is designed to be used concurrently; it holds no mutable state.
type Registry struct {
	ops    map[string]domain.Operation
	order  []string
	plans  map[domain.Kind]strategy
	paths  domain.PathResolver
	exec   domain.Executor
	audit  audit.Repository
	clock  application.Clock
	logger *zap.Logger
}

// Options collects Registry dependencies. Audit, Clock and Logger are optional.
type Options struct {
	Paths    domain.PathResolver
	Executor domain.Executor
	Audit    audit.Repository
	Clock    application.Clock
	Logger   *zap.Logger
}

// step is a fully planned call: either a static result or an invocation plus
// the interpreter for its outcome.
type step struct {
	static    *domain.InterpretedResult
	inv       domain.CommandInvocation
	interpret func(domain.ExecutionOutcome) domain.InterpretedResult
}

// strategy plans one operation kind.
type strategy func(r *Registry, op domain.Operation, args domain.ArgumentSet) (step, error)

func NewRegistry(opts Options) *Registry {
	r := &Registry{
		ops:    make(map[string]domain.Operation),
		paths:  opts.Paths,
		exec:   opts.Executor,
		audit:  opts.Audit,
		clock:  opts.Clock,
		logger: opts.Logger,
		plans: map[domain.Kind]strategy{
			domain.KindScan:    planScan,
			domain.KindVersion: planVersion,
			domain.KindRules:   planRules,
			domain.KindInit:    planInit,
		},
	}
	if r.audit == nil {
		r.audit = audit.Nop{}
	}
	if r.clock == nil {
		r.clock = application.SystemClock{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	for _, op := range Catalog() {
		r.ops[op.Name] = op
		r.order = append(r.order, op.Name)
		r.logger.Debug("registered operation", zap.String("operation", op.Name))
	}
	return r
}

// Operations returns the catalog in advertisement order.
func (r *Registry) Operations() []domain.Operation {
	out := make([]domain.Operation, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.ops[name])
	}
	return out
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (domain.Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Dispatch runs the pipeline for name. Expected failures come back as errors
// wrapping the domain sentinels; no subprocess is started for them.
func (r *Registry) Dispatch(ctx context.Context, name string, raw map[string]any) (domain.InterpretedResult, error) {
	op, ok := r.ops[name]
	if !ok {
		return domain.InterpretedResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownOperation, name)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if op.Path == domain.PathRequired {
		if s, _ := raw["path"].(string); s == "" {
			return domain.InterpretedResult{}, domain.ErrPathRequired
		}
	}

	args, err := ValidateArgs(op, raw)
	if err != nil {
		return domain.InterpretedResult{}, err
	}

	st, err := r.plans[op.Kind](r, op, args)
	if err != nil {
		return domain.InterpretedResult{}, err
	}
	if st.static != nil {
		return *st.static, nil
	}

	id := uuid.New().String()
	log := r.logger.With(zap.String("invocation_id", id), zap.String("operation", op.Name))
	log.Info("running bearer", zap.Strings("args", st.inv.Args), zap.String("work_dir", st.inv.WorkDir))

	outcome := r.exec.Run(ctx, st.inv)
	res := st.interpret(outcome)

	log.Info("bearer finished",
		zap.Int("exit_code", outcome.ExitCode),
		zap.String("result", string(res.Kind)),
		zap.Duration("duration", outcome.Duration),
	)
	if res.ParseFailed {
		log.Error("failed to parse bearer JSON output", zap.String("raw", truncate(outcome.Stdout, 500)))
	}
	r.record(ctx, log, id, op, outcome, res)
	return res, nil
}

// Handle is the outermost failure boundary. It never panics and never returns
// an error: everything becomes a Reply.
func (r *Registry) Handle(ctx context.Context, name string, raw map[string]any) (reply Reply) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic while handling tool", zap.String("operation", name), zap.Any("panic", p))
			reply = Reply{Text: fmt.Sprintf("Error executing %s: %v", name, p), IsError: true}
		}
	}()

	res, err := r.Dispatch(ctx, name, raw)
	if err != nil {
		r.logger.Error("tool call failed", zap.String("operation", name), zap.Error(err))
		if errors.Is(err, domain.ErrPathRequired) {
			return Reply{
				Text: fmt.Sprintf("Error: 'path' parameter is required for %s. "+
					"Use %s to scan the entire repository.", name, OpScanRepo),
				IsError: true,
			}
		}
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return Reply{Text: fmt.Sprintf("Error executing %s: %s", name, nf.Message()), IsError: true}
		}
		return Reply{Text: fmt.Sprintf("Error executing %s: %v", name, err), IsError: true}
	}
	return Reply{Text: res.Text, IsError: res.IsError()}
}

func (r *Registry) record(ctx context.Context, log *zap.Logger, id string, op domain.Operation, o domain.ExecutionOutcome, res domain.InterpretedResult) {
	inv := &audit.Invocation{
		ID:         id,
		Operation:  op.Name,
		Command:    o.Command,
		WorkDir:    o.WorkDir,
		ExitCode:   o.ExitCode,
		ResultKind: string(res.Kind),
		DurationMS: o.Duration.Milliseconds(),
		CreatedAt:  r.clock.Now(),
	}
	// audit write must not outlive a cancelled request forever
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.audit.Save(ctx, inv); err != nil {
		log.Warn("audit save failed", zap.Error(err))
	}
}

func planScan(r *Registry, op domain.Operation, args domain.ArgumentSet) (step, error) {
	target, err := r.paths.Resolve(args.String("path"))
	if err != nil {
		return step{}, err
	}
	inv, err := BuildScan(target, args, r.paths)
	if err != nil {
		return step{}, err
	}
	format := args.String("format")
	return step{
		inv: inv,
		interpret: func(o domain.ExecutionOutcome) domain.InterpretedResult {
			return domain.Interpret(o, format)
		},
	}, nil
}

func planVersion(r *Registry, _ domain.Operation, _ domain.ArgumentSet) (step, error) {
	return step{inv: BuildVersion(r.paths.WorkDir()), interpret: domain.InterpretVersion}, nil
}

func planRules(_ *Registry, _ domain.Operation, args domain.ArgumentSet) (step, error) {
	res := domain.RulesInfo(args.String("language"))
	return step{static: &res}, nil
}

func planInit(r *Registry, _ domain.Operation, args domain.ArgumentSet) (step, error) {
	dir, err := r.paths.Validate(args.String("path"), true)
	if err != nil {
		return step{}, err
	}
	if !isDir(dir) {
		return step{}, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidPath, dir)
	}
	return step{
		inv: BuildInit(dir),
		interpret: func(o domain.ExecutionOutcome) domain.InterpretedResult {
			return domain.InterpretInit(o, dir)
		},
	}, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

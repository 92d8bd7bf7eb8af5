// Package oracle ties the contract pipeline together for one invocation
// attempt: evaluate the catalog's guards against the concrete prestate, build
// the verdict handler before the operation runs, and consult it exactly once
// against the real outcome afterwards.
//
// The oracle never executes anything unless asked: PrepareAttempt and
// Attempt.Judge straddle the two externally-owned suspension points (the
// prestate snapshot and the invocation), while RunAttempt is the convenience
// path that drives an Executor in between.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/specfirst/veridict/pkg/check"
	"github.com/specfirst/veridict/pkg/condition"
	"github.com/specfirst/veridict/pkg/contracts"
	"github.com/specfirst/veridict/pkg/expr"
	"github.com/specfirst/veridict/pkg/invoke"
	"github.com/specfirst/veridict/pkg/observability"
)

// ErrSpecificationEvaluation wraps a guard or property evaluation failure.
// The attempt carrying it is discarded; the generator continues with the
// next one.
var ErrSpecificationEvaluation = errors.New("specification evaluation failed")

// ErrAlreadyJudged reports a second consultation of the same attempt's
// handler.
var ErrAlreadyJudged = errors.New("attempt already judged")

// Oracle prepares and judges invocation attempts against their specification
// catalogs. The zero value is not usable; construct with New.
type Oracle struct {
	exec     invoke.Executor
	baseline *check.Handler
	logger   *slog.Logger
	obs      *observability.Provider
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Oracle) { o.logger = logger }
}

// WithObservability wires the telemetry provider.
func WithObservability(p *observability.Provider) Option {
	return func(o *Oracle) { o.obs = p }
}

// WithExecutor replaces the default reflective executor.
func WithExecutor(exec invoke.Executor) Option {
	return func(o *Oracle) { o.exec = exec }
}

// New creates an oracle judging against the given baseline handler. The
// baseline rules whenever no stronger expectation governs a call.
func New(baseline *check.Handler, opts ...Option) *Oracle {
	o := &Oracle{
		exec:     invoke.NewReflectiveExecutor(),
		baseline: baseline,
		logger:   slog.Default().With("component", "oracle"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Attempt is the verdict-producing object for one invocation: built before
// the operation runs, consulted exactly once after.
type Attempt struct {
	// ID identifies the attempt in logs and telemetry.
	ID string

	// Operation is the catalog's qualified operation name.
	Operation string

	// InvalidPrestate marks a-priori invalidity: specifications exist but the
	// prestate satisfied none of them. Callers may skip execution; judging
	// any outcome yields INVALID.
	InvalidPrestate bool

	handler  *check.Handler
	oracle   *Oracle
	prepared time.Time
	judged   bool
}

// PrepareAttempt evaluates every guard in the catalog against the prestate
// and builds the attempt's verdict handler. A predicate evaluation failure
// aborts the attempt only: the returned error wraps both the *expr.EvalError
// and ErrSpecificationEvaluation.
func (o *Oracle) PrepareAttempt(ctx context.Context, conds *condition.OperationConditions, pre contracts.Prestate) (*Attempt, error) {
	table, err := conds.CheckPrestate(pre)
	if err != nil {
		if expr.IsEvalError(err) {
			err = fmt.Errorf("%w: %w", ErrSpecificationEvaluation, err)
		}
		o.logger.WarnContext(ctx, "attempt discarded",
			"operation", conds.Operation(),
			"error", err,
		)
		return nil, err
	}

	attempt := &Attempt{
		ID:              uuid.NewString(),
		Operation:       conds.Operation(),
		InvalidPrestate: table.IsInvalidPrestate(),
		handler:         table.PostCheckHandler(o.baseline),
		oracle:          o,
		prepared:        time.Now(),
	}

	if o.obs != nil {
		o.obs.RecordAttempt(ctx, attempt.Operation)
	}
	o.logger.DebugContext(ctx, "attempt prepared",
		"attempt", attempt.ID,
		"operation", attempt.Operation,
		"handler", attempt.handler.Kind().String(),
		"catalog", conds.Hash(),
		"invalid_prestate", attempt.InvalidPrestate,
	)
	return attempt, nil
}

// Handler exposes the attempt's verdict handler for callers that manage
// execution themselves.
func (a *Attempt) Handler() *check.Handler { return a.handler }

// Judge consults the verdict handler against the real outcome. It may be
// called once per attempt.
func (a *Attempt) Judge(ctx context.Context, out *contracts.Outcome) (contracts.Judgment, error) {
	if a.judged {
		return contracts.Judgment{}, ErrAlreadyJudged
	}
	a.judged = true

	judgment := a.handler.Classify(out)

	if a.oracle.obs != nil {
		a.oracle.obs.RecordVerdict(ctx, a.Operation, judgment.Verdict, time.Since(a.prepared))
	}
	a.oracle.logger.InfoContext(ctx, "attempt judged",
		"attempt", a.ID,
		"operation", a.Operation,
		"verdict", string(judgment.Verdict),
		"reason", judgment.Reason,
	)
	return judgment, nil
}

// Result is the full record of one executed attempt.
type Result struct {
	AttemptID string
	Operation string
	Judgment  contracts.Judgment
	Outcome   *contracts.Outcome
}

// RunAttempt drives one complete attempt: prestate check, execution through
// the configured executor, and judgment. An a-priori invalid prestate skips
// execution entirely.
func (o *Oracle) RunAttempt(ctx context.Context, op invoke.Operation, conds *condition.OperationConditions, receiver any, args []any) (*Result, error) {
	ctx, span := o.span(ctx, op.Name)
	defer span.End()

	attempt, err := o.PrepareAttempt(ctx, conds, contracts.Prestate{Receiver: receiver, Args: args})
	if err != nil {
		return nil, err
	}

	if attempt.InvalidPrestate {
		judgment, jerr := attempt.Judge(ctx, &contracts.Outcome{Receiver: receiver, Args: args})
		if jerr != nil {
			return nil, jerr
		}
		return &Result{AttemptID: attempt.ID, Operation: attempt.Operation, Judgment: judgment}, nil
	}

	out, err := o.exec.Invoke(ctx, op, receiver, args)
	if err != nil {
		return nil, fmt.Errorf("oracle: executing %s: %w", op.Name, err)
	}

	judgment, err := attempt.Judge(ctx, out)
	if err != nil {
		return nil, err
	}
	return &Result{AttemptID: attempt.ID, Operation: attempt.Operation, Judgment: judgment, Outcome: out}, nil
}

func (o *Oracle) span(ctx context.Context, operation string) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("operation", operation)),
	}
	if o.obs != nil {
		return o.obs.StartSpan(ctx, "oracle.attempt", opts...)
	}
	return otel.Tracer("veridict.oracle").Start(ctx, "oracle.attempt", opts...)
}

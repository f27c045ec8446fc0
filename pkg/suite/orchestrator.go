package suite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/judge"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/sim"
)

// DefaultConcurrency bounds parallel test cases when not configured.
const DefaultConcurrency = 4

// Orchestrator executes suites. The same model client serves the agent,
// the simulator and the judge unless per-role clients are configured.
type Orchestrator struct {
	agentClient ports.ModelClient
	simClient   ports.ModelClient
	judgeClient ports.ModelClient

	concurrency int
	timeout     time.Duration
	threshold   float64
	responder   ports.ToolResponder
	logger      *slog.Logger
	metrics     *Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency bounds how many test cases run in parallel.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithTimeout sets a run-level deadline. Cases still running when it
// expires are marked errored with reason "timeout"; completed results are
// untouched.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithThreshold sets the suite-level metric pass threshold (falls back to
// domain.DefaultThreshold). Per-metric overrides still win.
func WithThreshold(t float64) Option {
	return func(o *Orchestrator) {
		if t > 0 {
			o.threshold = t
		}
	}
}

// WithSimulatorClient routes simulator turns through a separate client.
func WithSimulatorClient(c ports.ModelClient) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.simClient = c
		}
	}
}

// WithJudgeClient routes metric judging through a separate client.
func WithJudgeClient(c ports.ModelClient) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.judgeClient = c
		}
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithToolResponder sets a dynamic mock source for tool calls not covered
// by a test case's static mocks. See pkg/registry.
func WithToolResponder(r ports.ToolResponder) Option {
	return func(o *Orchestrator) {
		o.responder = r
	}
}

// New creates an orchestrator backed by the given model client.
func New(client ports.ModelClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		agentClient: client,
		simClient:   client,
		judgeClient: client,
		concurrency: DefaultConcurrency,
		threshold:   domain.DefaultThreshold,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes every test case against the graph and returns the sealed
// TestRun. Import and graph compilation failures are fatal (no valid
// execution unit exists); everything after that is isolated per case.
func (o *Orchestrator) Run(ctx context.Context, g *domain.Graph, cases []domain.TestCase) (*domain.TestRun, error) {
	// Preflight compile with no bindings: structural problems (malformed
	// equations included) must abort before any test case starts.
	if _, err := runtime.Compile(g, nil); err != nil {
		return nil, fmt.Errorf("graph does not compile: %w", err)
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	run := &domain.TestRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Results:   make([]domain.TestResult, len(cases)),
	}
	o.logger.Info("run started", "run_id", run.ID, "cases", len(cases), "workers", o.concurrency)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				run.Results[idx] = o.runCase(ctx, g, cases[idx])
			}
		}()
	}
	for i := range cases {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	run.Duration = time.Since(run.StartedAt)
	run.Seal()

	if o.metrics != nil {
		o.metrics.ObserveRun(run)
	}
	o.logger.Info("run finished", "run_id", run.ID,
		"passed", run.Passed, "failed", run.Failed, "errored", run.Errored,
		"duration", run.Duration)

	return run, nil
}

// runCase executes and judges one test case with a fresh runner. Failures
// stay local: the returned result reports them, the run continues.
func (o *Orchestrator) runCase(ctx context.Context, g *domain.Graph, tc domain.TestCase) domain.TestResult {
	logger := o.logger.With("test", tc.Name)

	units, err := runtime.Compile(g, tc.DynamicVariables)
	if err != nil {
		logger.Error("per-case compile failed", "err", err)
		return domain.TestResult{
			Name:      tc.Name,
			Status:    domain.StatusError,
			EndReason: "execution error",
			Error:     err.Error(),
		}
	}

	engineOpts := []runtime.EngineOption{runtime.WithLogger(logger)}
	if o.responder != nil {
		engineOpts = append(engineOpts, runtime.WithToolResponder(o.responder))
	}
	engine := runtime.NewEngine(units, o.agentClient, tc.DynamicVariables, engineOpts...)
	simulator := sim.New(o.simClient, sim.WithLogger(logger))
	r := runner.New(engine, simulator, runner.WithLogger(logger))

	out := r.Run(ctx, tc)

	result := domain.TestResult{
		Name:       tc.Name,
		Transcript: out.Transcript,
		NodeTrace:  out.NodeTrace,
		ToolCalls:  out.ToolCalls,
		Turns:      out.Turns,
		Duration:   out.Duration,
		EndReason:  out.EndReason,
	}

	// Errored short-circuits judging and is reported distinctly from fail.
	if out.State == runner.Errored {
		result.Status = domain.StatusError
		if out.Err != nil {
			result.Error = out.Err.Error()
		}
		return result
	}

	j := judge.New(o.judgeClient, judge.WithDefaultThreshold(o.threshold), judge.WithLogger(logger))
	result.Metrics = j.Metrics(ctx, tc, out.Transcript)
	result.Violations = append(result.Violations, judge.RuleViolations(tc, out.Transcript)...)
	result.Violations = append(result.Violations, judge.FlowViolations(tc, out.NodeTrace)...)
	result.Violations = append(result.Violations, judge.ToolViolations(tc, out.ToolCalls)...)

	result.Status = domain.StatusPass
	for _, m := range result.Metrics {
		if !m.Passed {
			result.Status = domain.StatusFail
			break
		}
	}
	if len(result.Violations) > 0 {
		result.Status = domain.StatusFail
	}

	logger.Info("case finished", "status", result.Status, "turns", result.Turns, "end", result.EndReason)
	return result
}

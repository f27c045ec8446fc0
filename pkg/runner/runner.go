package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/sim"
)

// State is the runner's lifecycle phase.
type State string

const (
	Idle           State = "idle"
	Running        State = "running"
	Completed      State = "completed"
	BudgetExceeded State = "budget_exceeded"
	Errored        State = "errored"
)

// Simulator produces the human side of the conversation. pkg/sim satisfies
// this; tests substitute scripted implementations.
type Simulator interface {
	Generate(ctx context.Context, transcript domain.Transcript, persona string) (sim.Reply, error)
}

// Outcome is everything a conversation produced. The transcript is sealed
// once Run returns; judges consume it read-only.
type Outcome struct {
	State      State
	Transcript domain.Transcript
	NodeTrace  []string
	ToolCalls  []domain.ToolCall
	Turns      int
	Duration   time.Duration
	EndReason  string

	// Err is set iff State == Errored.
	Err error
}

// Runner executes one test case's turn loop.
type Runner struct {
	engine    *runtime.Engine
	simulator Simulator
	logger    *slog.Logger
	state     State
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a runner for one conversation.
func New(engine *runtime.Engine, simulator Simulator, opts ...Option) *Runner {
	r := &Runner{
		engine:    engine,
		simulator: simulator,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:     Idle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the runner's current lifecycle phase.
func (r *Runner) State() State { return r.state }

// Run executes the turn loop for the test case. It always returns an
// Outcome; an Errored outcome carries the partial transcript and trace
// accumulated so far. Each model-call boundary doubles as a cooperative
// cancellation point: a cancelled context surfaces as Errored "timeout".
func (r *Runner) Run(ctx context.Context, tc domain.TestCase) *Outcome {
	start := time.Now()
	r.state = Running

	out := &Outcome{
		State: Running,
		// The entry node is implicitly visited at turn zero.
		NodeTrace: []string{r.engine.Units().Entry()},
	}
	node := r.engine.Units().Entry()
	budget := tc.TurnBudget()

	finish := func(state State, reason string, err error) *Outcome {
		r.state = state
		out.State = state
		out.EndReason = reason
		out.Err = err
		out.Duration = time.Since(start)
		return out
	}

	for turn := 1; ; turn++ {
		reply, err := r.simulator.Generate(ctx, out.Transcript, tc.Persona)
		if err != nil {
			return finish(Errored, endReasonFor(ctx, err), r.execError(out, turn, node, err))
		}
		if reply.ShouldEnd {
			r.logger.Debug("simulator ended conversation", "turn", turn)
			return finish(Completed, domain.EndSimulatorEnded, nil)
		}
		out.Transcript = out.Transcript.Append(reply.Message)

		turnOut, err := r.engine.Turn(ctx, node, out.Transcript, tc.ToolMocks)
		if err != nil {
			return finish(Errored, endReasonFor(ctx, err), r.execError(out, turn, node, err))
		}
		for _, msg := range turnOut.Messages {
			out.Transcript = out.Transcript.Append(msg)
		}
		out.ToolCalls = append(out.ToolCalls, turnOut.ToolCalls...)
		out.NodeTrace = append(out.NodeTrace, turnOut.Path...)
		node = turnOut.NodeID
		out.Turns = turn

		if turn >= budget {
			r.logger.Debug("turn budget exhausted", "budget", budget)
			return finish(BudgetExceeded, domain.EndBudgetExceeded, nil)
		}
	}
}

func (r *Runner) execError(out *Outcome, turn int, node string, err error) error {
	r.logger.Error("conversation failed", "turn", turn, "node", node, "err", err)
	return &domain.ExecutionError{Turn: turn, NodeID: node, Cause: err}
}

// endReasonFor distinguishes a run-level timeout from an engine failure.
func endReasonFor(ctx context.Context, err error) string {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.EndTimeout
	}
	return "execution error"
}

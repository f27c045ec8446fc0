package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/internal/testutils"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/sim"
)

// scriptedSim replays user turns in order, then signals end.
type scriptedSim struct {
	turns   []string
	neverEnd bool
	err     error
	calls   int
}

func (s *scriptedSim) Generate(ctx context.Context, transcript domain.Transcript, persona string) (sim.Reply, error) {
	if err := ctx.Err(); err != nil {
		return sim.Reply{}, err
	}
	if s.err != nil {
		return sim.Reply{}, s.err
	}
	s.calls++
	if s.calls > len(s.turns) {
		if s.neverEnd {
			return sim.Reply{Message: domain.Message{Role: domain.RoleUser, Content: "Are you still there?"}}, nil
		}
		return sim.Reply{ShouldEnd: true}, nil
	}
	return sim.Reply{Message: domain.Message{Role: domain.RoleUser, Content: s.turns[s.calls-1]}}, nil
}

func supportEngine(t *testing.T, client *testutils.ScriptedClient) *runtime.Engine {
	t.Helper()
	g := testutils.SupportGraph(t)
	units, err := runtime.Compile(g, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return runtime.NewEngine(units, client, nil)
}

func TestRun_SimulatorEnds(t *testing.T) {
	client := testutils.NewScriptedClient(testutils.Text("Hello! How can I help?"))
	r := runner.New(supportEngine(t, client), &scriptedSim{turns: []string{"Hi there"}})

	out := r.Run(context.Background(), domain.TestCase{Name: "greeting", Persona: "Polite caller."})

	if out.State != runner.Completed {
		t.Fatalf("State = %q, want completed (err: %v)", out.State, out.Err)
	}
	if out.EndReason != domain.EndSimulatorEnded {
		t.Errorf("EndReason = %q", out.EndReason)
	}
	if out.Turns != 1 {
		t.Errorf("Turns = %d, want 1", out.Turns)
	}
	if len(out.NodeTrace) == 0 || out.NodeTrace[0] != "greeting" {
		t.Errorf("entry node not implicitly visited: %v", out.NodeTrace)
	}
	if r.State() != runner.Completed {
		t.Errorf("runner state = %q", r.State())
	}
}

func TestRun_BudgetExceededAtExactlyN(t *testing.T) {
	const budget = 3
	client := testutils.NewScriptedClient(testutils.Text("Still here."))
	r := runner.New(supportEngine(t, client), &scriptedSim{neverEnd: true})

	out := r.Run(context.Background(), domain.TestCase{
		Name:     "stalling caller",
		Persona:  "Never hangs up.",
		MaxTurns: budget,
	})

	if out.State != runner.BudgetExceeded {
		t.Fatalf("State = %q, want budget_exceeded", out.State)
	}
	if out.Turns != budget {
		t.Errorf("Turns = %d, want exactly %d", out.Turns, budget)
	}
	if out.EndReason != domain.EndBudgetExceeded {
		t.Errorf("EndReason = %q", out.EndReason)
	}
	// The partial transcript is preserved for judging.
	if len(out.Transcript) == 0 {
		t.Error("transcript empty after budget exhaustion")
	}
}

func TestRun_EngineFailureIsErrored(t *testing.T) {
	client := testutils.NewScriptedClient()
	client.Err = domain.ErrModelUnavailable
	r := runner.New(supportEngine(t, client), &scriptedSim{neverEnd: true})

	out := r.Run(context.Background(), domain.TestCase{Name: "broken", Persona: "Caller."})

	if out.State != runner.Errored {
		t.Fatalf("State = %q, want errored", out.State)
	}
	var execErr *domain.ExecutionError
	if !errors.As(out.Err, &execErr) {
		t.Fatalf("Err = %T, want *domain.ExecutionError", out.Err)
	}
	if execErr.Turn != 1 {
		t.Errorf("ExecutionError.Turn = %d, want 1", execErr.Turn)
	}
}

func TestRun_CancelledContextIsTimeout(t *testing.T) {
	client := testutils.NewScriptedClient(testutils.Text("Hello!"))
	r := runner.New(supportEngine(t, client), &scriptedSim{neverEnd: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := r.Run(ctx, domain.TestCase{Name: "timed out", Persona: "Caller."})

	if out.State != runner.Errored {
		t.Fatalf("State = %q, want errored", out.State)
	}
	if out.EndReason != domain.EndTimeout {
		t.Errorf("EndReason = %q, want %q", out.EndReason, domain.EndTimeout)
	}
}

func TestRun_TraceRecordsTransitions(t *testing.T) {
	g := testutils.SupportGraph(t)
	units, err := runtime.Compile(g, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// Turn 1: agent replies and transitions to billing via prompt trigger.
	u, _ := units.Unit("greeting")
	billingTrigger := u.PromptTools()[0].Name
	client := testutils.NewScriptedClient(
		testutils.Say("Let me check your account.", billingTrigger),
		testutils.Text("Your balance is $42."),
	)
	r := runner.New(runtime.NewEngine(units, client, nil), &scriptedSim{
		turns: []string{"I have a billing question", "What's my balance?"},
	})

	out := r.Run(context.Background(), domain.TestCase{Name: "billing", Persona: "Caller with billing question."})

	if out.State != runner.Completed {
		t.Fatalf("State = %q (err: %v)", out.State, out.Err)
	}
	want := []string{"greeting", "billing"}
	if len(out.NodeTrace) != 2 || out.NodeTrace[0] != want[0] || out.NodeTrace[1] != want[1] {
		t.Errorf("NodeTrace = %v, want %v", out.NodeTrace, want)
	}
}

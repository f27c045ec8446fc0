package runtime

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/parley/internal/equation"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// UnitSet is the compiled form of a graph: one ExecutionUnit per node,
// keyed by node id. It is immutable and shared read-only after Compile.
type UnitSet struct {
	entry string
	units map[string]*ExecutionUnit
}

// Entry returns the entry node id.
func (s *UnitSet) Entry() string { return s.entry }

// Unit looks up a unit by node id.
func (s *UnitSet) Unit(id string) (*ExecutionUnit, bool) {
	u, ok := s.units[id]
	return u, ok
}

// Len returns the number of units.
func (s *UnitSet) Len() int { return len(s.units) }

// Compile builds the unit set for a graph with the test case's dynamic
// variables substituted into instructions and condition text. Malformed
// equations fail compilation: no valid execution unit may exist for an
// invalid graph, so the whole run aborts before any test case starts.
func Compile(g *domain.Graph, vars map[string]string) (*UnitSet, error) {
	set := &UnitSet{
		entry: g.Entry(),
		units: make(map[string]*ExecutionUnit, g.Len()),
	}

	for _, node := range g.Nodes() {
		unit := &ExecutionUnit{
			NodeID:       node.ID,
			Instructions: Interpolate(node.Instructions, vars),
			Tools:        append([]domain.Tool(nil), node.Tools...),
		}

		for i, t := range node.Transitions {
			cond := t.Condition
			trigger := Trigger{
				ToolName:  TriggerToolName(i, t.Target),
				Target:    t.Target,
				Condition: cond,
			}
			switch cond.Kind {
			case domain.ConditionPrompt:
				trigger.Condition.Prompt = Interpolate(cond.Prompt, vars)
			case domain.ConditionEquation:
				src := Interpolate(cond.Equation, vars)
				expr, err := equation.Parse(src)
				if err != nil {
					return nil, fmt.Errorf("node %q transition %d: %w", node.ID, i, err)
				}
				trigger.Condition.Equation = src
				trigger.eq = expr
			}
			unit.Triggers = append(unit.Triggers, trigger)
		}

		set.units[node.ID] = unit
	}

	return set, nil
}

// Engine produces the agent side of a conversation turn from a compiled
// unit set. It holds no per-conversation state; the runner owns the
// transcript and the current node id.
type Engine struct {
	units     *UnitSet
	client    ports.ModelClient
	vars      map[string]string
	responder ports.ToolResponder
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger for turn diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithToolResponder sets a dynamic mock source consulted for tool calls the
// test case has no static mock for.
func WithToolResponder(r ports.ToolResponder) EngineOption {
	return func(e *Engine) {
		e.responder = r
	}
}

// NewEngine wires a compiled unit set to the model-call capability.
func NewEngine(units *UnitSet, client ports.ModelClient, vars map[string]string, opts ...EngineOption) *Engine {
	e := &Engine{
		units:  units,
		client: client,
		vars:   vars,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Units exposes the compiled unit set (read-only).
func (e *Engine) Units() *UnitSet { return e.units }

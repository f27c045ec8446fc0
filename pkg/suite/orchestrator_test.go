package suite_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/suite"
)

// roleClient answers by role, recognizable from the system prompt: the
// simulator gets a caller line, the judge gets a perfect verdict, and the
// agent echoes a fixed reply — unless its instructions contain "EXPLODE",
// which simulates a mid-conversation model failure.
type roleClient struct{}

func (c *roleClient) Complete(ctx context.Context, req ports.ModelRequest) (*ports.ModelResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case strings.Contains(req.System, "role-playing"):
		return &ports.ModelResponse{Content: "I need help with my order."}, nil
	case strings.Contains(req.System, "grading"):
		return &ports.ModelResponse{Content: `{"score": 1.0, "reasoning": "flawless", "confidence": 1.0}`}, nil
	default:
		if strings.Contains(req.System, "EXPLODE") {
			return nil, errors.New("model returned a 500")
		}
		return &ports.ModelResponse{Content: "Happy to help with your order."}, nil
	}
}

func orderGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph("start", []domain.Node{
		{ID: "start", Instructions: "Handle the caller in {{mode}} mode."},
	})
	require.NoError(t, err)
	return g
}

func quickCase(name, mode string) domain.TestCase {
	return domain.TestCase{
		Name:             name,
		Persona:          "Caller with an order problem.",
		MaxTurns:         1,
		DynamicVariables: map[string]string{"mode": mode},
	}
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	o := suite.New(&roleClient{}, suite.WithConcurrency(1))

	cases := []domain.TestCase{
		quickCase("first", "normal"),
		quickCase("second", "EXPLODE"),
		quickCase("third", "normal"),
	}

	run, err := o.Run(context.Background(), orderGraph(t), cases)
	require.NoError(t, err)
	require.Len(t, run.Results, 3, "every submitted case must have a result")

	assert.Equal(t, domain.StatusPass, run.Results[0].Status)
	assert.Equal(t, domain.StatusError, run.Results[1].Status)
	assert.Equal(t, domain.StatusPass, run.Results[2].Status)
	assert.NotEmpty(t, run.Results[1].Error)

	assert.Equal(t, 2, run.Passed)
	assert.Equal(t, 1, run.Errored)
	assert.Equal(t, 0, run.Failed)
}

func TestRun_ResultsKeepSubmissionOrder(t *testing.T) {
	o := suite.New(&roleClient{}, suite.WithConcurrency(4))

	var cases []domain.TestCase
	names := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	for _, n := range names {
		cases = append(cases, quickCase(n, "normal"))
	}

	run, err := o.Run(context.Background(), orderGraph(t), cases)
	require.NoError(t, err)
	require.Len(t, run.Results, len(names))
	for i, n := range names {
		assert.Equal(t, n, run.Results[i].Name, "result %d out of order", i)
	}
}

func TestRun_MetricAndRuleJudging(t *testing.T) {
	o := suite.New(&roleClient{}, suite.WithConcurrency(1))

	cases := []domain.TestCase{
		func() domain.TestCase {
			tc := quickCase("scored", "normal")
			tc.Metrics = []string{"The agent acknowledged the order problem."}
			return tc
		}(),
		func() domain.TestCase {
			tc := quickCase("rule fails", "normal")
			tc.Includes = []string{"refund"} // agent never says this
			return tc
		}(),
	}

	run, err := o.Run(context.Background(), orderGraph(t), cases)
	require.NoError(t, err)

	scored := run.Results[0]
	assert.Equal(t, domain.StatusPass, scored.Status)
	require.Len(t, scored.Metrics, 1)
	assert.InDelta(t, 1.0, scored.Metrics[0].Score, 1e-9)

	ruled := run.Results[1]
	assert.Equal(t, domain.StatusFail, ruled.Status)
	require.Len(t, ruled.Violations, 1)
	assert.Contains(t, ruled.Violations[0], "missing inclusion")
	assert.Empty(t, ruled.Metrics, "rule-based case must bypass the metric judge")
}

func TestRun_FlowConstraintJudging(t *testing.T) {
	o := suite.New(&roleClient{}, suite.WithConcurrency(1))

	tc := quickCase("must visit billing", "normal")
	tc.RequiredNodes = []string{"billing"}

	run, err := o.Run(context.Background(), orderGraph(t), []domain.TestCase{tc})
	require.NoError(t, err)

	res := run.Results[0]
	assert.Equal(t, domain.StatusFail, res.Status)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0], "billing")
}

func TestRun_RunLevelTimeout(t *testing.T) {
	o := suite.New(&roleClient{}, suite.WithConcurrency(1), suite.WithTimeout(time.Nanosecond))

	run, err := o.Run(context.Background(), orderGraph(t), []domain.TestCase{
		quickCase("too slow", "normal"),
	})
	require.NoError(t, err)
	require.Len(t, run.Results, 1)

	assert.Equal(t, domain.StatusError, run.Results[0].Status)
	assert.Equal(t, domain.EndTimeout, run.Results[0].EndReason)
}

func TestRun_InvalidEquationIsFatal(t *testing.T) {
	g, err := domain.NewGraph("a", []domain.Node{
		{ID: "a", Transitions: []domain.Transition{
			{Target: "b", Condition: domain.EquationWhen("broken >=")},
		}},
		{ID: "b"},
	})
	require.NoError(t, err)

	o := suite.New(&roleClient{})
	_, err = o.Run(context.Background(), g, []domain.TestCase{quickCase("never runs", "normal")})
	require.Error(t, err, "a graph with no valid execution units must abort the run")
}

func TestRun_ObservesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := suite.NewMetrics(reg)
	o := suite.New(&roleClient{}, suite.WithConcurrency(1), suite.WithMetrics(m))

	_, err := o.Run(context.Background(), orderGraph(t), []domain.TestCase{quickCase("ok", "normal")})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "parley_tests_total" {
			found = true
		}
	}
	assert.True(t, found, "parley_tests_total not registered")
}

func TestParseFile(t *testing.T) {
	data := []byte(`
name: checkout flows
threshold: 0.8
tests:
  - name: refund request
    persona: Angry customer demanding a refund.
    metrics:
      - The agent offered a refund.
    max_turns: 6
    required_nodes: [billing]
  - name: rule based
    persona: Curious caller.
    includes: [refund]
`)
	f, err := suite.ParseFile(data)
	require.NoError(t, err)

	assert.Equal(t, "checkout flows", f.Name)
	assert.InDelta(t, 0.8, f.Threshold, 1e-9)
	require.Len(t, f.Tests, 2)
	assert.Equal(t, "refund request", f.Tests[0].Name)
	assert.Equal(t, 6, f.Tests[0].MaxTurns)
	assert.True(t, f.Tests[1].RuleBased())
}

func TestParseFile_Rejects(t *testing.T) {
	t.Run("no tests", func(t *testing.T) {
		_, err := suite.ParseFile([]byte("name: empty\ntests: []"))
		require.Error(t, err)
	})
	t.Run("unnamed test", func(t *testing.T) {
		_, err := suite.ParseFile([]byte("tests:\n  - persona: someone"))
		require.Error(t, err)
	})
}

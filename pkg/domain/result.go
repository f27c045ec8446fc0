package domain

import "time"

// Status values for a single test case.
const (
	StatusPass  = "pass"
	StatusFail  = "fail"
	StatusError = "error"
)

// End reasons reported by the conversation runner.
const (
	EndSimulatorEnded = "simulator ended"
	EndBudgetExceeded = "turn budget exceeded"
	EndTimeout        = "timeout"
)

// DefaultThreshold is the global metric pass threshold when neither the
// test case nor the orchestrator overrides it.
const DefaultThreshold = 0.7

// MetricResult is the outcome of scoring one free-text criterion. Score and
// Threshold are both kept permanently; Passed is derived (score >= threshold)
// and never collapsed early because thresholds are configurable per call site.
type MetricResult struct {
	Metric     string  `json:"metric" yaml:"metric"`
	Score      float64 `json:"score" yaml:"score"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	Passed     bool    `json:"passed" yaml:"passed"`
	Reasoning  string  `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// TestResult is the full outcome of one test case. NodeTrace stores node
// ids, not node references, so the payload serializes as a plain tree.
type TestResult struct {
	Name       string        `json:"name" yaml:"name"`
	Status     string        `json:"status" yaml:"status"`
	Transcript Transcript    `json:"transcript" yaml:"transcript"`
	Metrics    []MetricResult `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	NodeTrace  []string      `json:"node_trace" yaml:"node_trace"`
	ToolCalls  []ToolCall    `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	Violations []string      `json:"violations,omitempty" yaml:"violations,omitempty"`
	Turns      int           `json:"turns" yaml:"turns"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	EndReason  string        `json:"end_reason" yaml:"end_reason"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// TestRun aggregates the results of one orchestrated run. It is created at
// run start and sealed at completion; results follow submission order.
type TestRun struct {
	ID        string        `json:"id" yaml:"id"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Results   []TestResult  `json:"results" yaml:"results"`
	// Encrypted carries a ciphertext envelope when a store middleware
	// encrypts the payload at rest. Empty for plaintext runs.
	Encrypted string `json:"encrypted,omitempty" yaml:"encrypted,omitempty"`
	Passed    int           `json:"passed" yaml:"passed"`
	Failed    int           `json:"failed" yaml:"failed"`
	Errored   int           `json:"errored" yaml:"errored"`
}

// Seal recomputes the aggregate counters from Results. It is a pure
// reduction over result statuses.
func (r *TestRun) Seal() {
	r.Passed, r.Failed, r.Errored = 0, 0, 0
	for _, res := range r.Results {
		switch res.Status {
		case StatusPass:
			r.Passed++
		case StatusError:
			r.Errored++
		default:
			r.Failed++
		}
	}
}

// OK reports whether every test case passed.
func (r *TestRun) OK() bool {
	return r.Failed == 0 && r.Errored == 0
}

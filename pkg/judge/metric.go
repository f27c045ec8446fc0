package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Judge scores free-text metrics through the model-call capability.
type Judge struct {
	client           ports.ModelClient
	defaultThreshold float64
	logger           *slog.Logger
}

// Option configures a Judge.
type Option func(*Judge)

// WithDefaultThreshold overrides the global pass threshold
// (domain.DefaultThreshold when unset).
func WithDefaultThreshold(threshold float64) Option {
	return func(j *Judge) {
		if threshold > 0 {
			j.defaultThreshold = threshold
		}
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Judge) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// New creates a metric judge.
func New(client ports.ModelClient, opts ...Option) *Judge {
	j := &Judge{
		client:           client,
		defaultThreshold: domain.DefaultThreshold,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// verdict is the JSON shape the judging model must reply with.
type verdict struct {
	Score      float64 `json:"score"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// Metrics scores every metric of the test case against the transcript.
// Rule-based cases bypass the metric judge entirely and get nil. A failed
// judge call produces an unresolved (failed) MetricResult, never a gap.
func (j *Judge) Metrics(ctx context.Context, tc domain.TestCase, transcript domain.Transcript) []domain.MetricResult {
	if tc.RuleBased() || len(tc.Metrics) == 0 {
		return nil
	}

	results := make([]domain.MetricResult, 0, len(tc.Metrics))
	for _, metric := range tc.Metrics {
		threshold := j.threshold(tc, metric)
		res, err := j.score(ctx, metric, threshold, transcript)
		if err != nil {
			evalErr := &domain.EvaluationError{Metric: metric, Cause: err}
			j.logger.Warn("metric unresolved", "metric", metric, "err", evalErr)
			res = domain.MetricResult{
				Metric:    metric,
				Score:     0,
				Threshold: threshold,
				Passed:    false,
				Reasoning: "unresolved: " + evalErr.Error(),
			}
		}
		results = append(results, res)
	}
	return results
}

// threshold resolves per-metric override, then the judge default.
func (j *Judge) threshold(tc domain.TestCase, metric string) float64 {
	if t, ok := tc.Thresholds[metric]; ok && t > 0 {
		return t
	}
	return j.defaultThreshold
}

func (j *Judge) score(ctx context.Context, metric string, threshold float64, transcript domain.Transcript) (domain.MetricResult, error) {
	resp, err := j.client.Complete(ctx, ports.ModelRequest{
		System: "You are grading a conversation between a voice agent and a caller. " +
			"Score how well the agent satisfied the given criterion on a scale from 0.0 to 1.0. " +
			`Reply with strict JSON only: {"score": <0..1>, "reasoning": "<short justification>", "confidence": <0..1>}`,
		Messages: []domain.Message{{
			Role:    domain.RoleUser,
			Content: "Criterion: " + metric + "\n\nTranscript:\n" + renderTranscript(transcript),
		}},
	})
	if err != nil {
		return domain.MetricResult{}, err
	}

	var v verdict
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &v); err != nil {
		return domain.MetricResult{}, fmt.Errorf("malformed judge reply: %w", err)
	}
	v.Score = clamp01(v.Score)

	return domain.MetricResult{
		Metric:     metric,
		Score:      v.Score,
		Threshold:  threshold,
		Passed:     v.Score >= threshold,
		Reasoning:  v.Reasoning,
		Confidence: clamp01(v.Confidence),
	}, nil
}

func renderTranscript(transcript domain.Transcript) string {
	var sb strings.Builder
	for _, m := range transcript {
		if m.Role == domain.RoleTool {
			continue
		}
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// extractJSON tolerates models that wrap their JSON in prose or fences.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

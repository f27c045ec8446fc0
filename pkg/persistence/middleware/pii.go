package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

type piiMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that redacts sensitive content from
// runs before they reach storage. Matching substrings in transcript messages
// are replaced with "***", and tool call arguments whose key matches a
// pattern are masked entirely. Patterns must compile or the constructor
// panics.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunStore) ports.RunStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, run *domain.TestRun) error {
	// Deep clone so redaction never touches the run the caller holds.
	cloned := *run
	cloned.Results = make([]domain.TestResult, len(run.Results))
	for i, res := range run.Results {
		cloned.Results[i] = m.redactResult(res)
	}
	return m.next.Save(ctx, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.TestRun, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) redactResult(res domain.TestResult) domain.TestResult {
	out := res
	out.Transcript = make(domain.Transcript, len(res.Transcript))
	for i, msg := range res.Transcript {
		cloned := msg
		cloned.Content = m.redactText(msg.Content)
		cloned.ToolCalls = m.redactCalls(msg.ToolCalls)
		out.Transcript[i] = cloned
	}
	out.ToolCalls = m.redactCalls(res.ToolCalls)
	return out
}

func (m *piiMiddleware) redactText(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, "***")
	}
	return s
}

func (m *piiMiddleware) redactCalls(calls []domain.ToolCall) []domain.ToolCall {
	if calls == nil {
		return nil
	}
	out := make([]domain.ToolCall, len(calls))
	for i, call := range calls {
		cloned := call
		cloned.Arguments = m.redactArgs(call.Arguments)
		out[i] = cloned
	}
	return out
}

func (m *piiMiddleware) redactArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		masked := false
		for _, p := range m.patterns {
			if p.MatchString(k) {
				out[k] = "***"
				masked = true
				break
			}
		}
		if masked {
			continue
		}
		if s, ok := v.(string); ok {
			out[k] = m.redactText(s)
		} else {
			out[k] = v
		}
	}
	return out
}

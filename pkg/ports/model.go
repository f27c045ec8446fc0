package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// ModelRequest is a single chat completion request. Tools, when present,
// are offered to the model for selection; transition triggers ride along as
// synthetic tools.
type ModelRequest struct {
	System   string
	Messages []domain.Message
	Tools    []domain.Tool
}

// ModelResponse carries the model's reply. ToolCalls is non-empty when the
// model chose to invoke tools instead of (or in addition to) replying.
type ModelResponse struct {
	Content   string
	ToolCalls []domain.ToolCall
}

// ModelClient is the model-call capability consumed by the simulator, the
// execution engine and the metric judge. Implementations must be safe for
// concurrent use; failures that are not request-specific should wrap
// domain.ErrModelUnavailable.
//
// Calls are long-latency I/O: every invocation honors ctx cancellation,
// which is the engine's cooperative suspend point.
type ModelClient interface {
	Complete(ctx context.Context, req ModelRequest) (*ModelResponse, error)
}

// ToolResponder computes mock payloads for declared tool calls that have no
// static mock in the test case. The second return reports whether the
// responder covers the tool; uncovered tools fall back to "{}".
// Implementations must be safe for concurrent use.
type ToolResponder interface {
	Respond(ctx context.Context, call domain.ToolCall) (string, bool, error)
}

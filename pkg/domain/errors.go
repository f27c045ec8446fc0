package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelUnavailable signals that the model-call capability failed in a way
// that is not specific to the request (network, auth, quota). Callers use
// errors.Is to distinguish it from malformed-request failures.
var ErrModelUnavailable = errors.New("model unavailable")

// ErrRunNotFound is returned by run stores when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// StructuralError reports a graph that violates the core invariants:
// duplicate node IDs, missing entry node, or dangling transition targets.
// It is fatal at import time and never recovered.
type StructuralError struct {
	Problems []string
}

func (e *StructuralError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid graph: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid graph: %d problems:\n- %s",
		len(e.Problems), strings.Join(e.Problems, "\n- "))
}

// FormatError reports that no importer recognized the input, or that the
// matching importer rejected it as malformed. Attempted lists the source
// types that were tried, in registry priority order.
type FormatError struct {
	Attempted []string
	Cause     error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unrecognized format (tried: %s): %v",
			strings.Join(e.Attempted, ", "), e.Cause)
	}
	return "unrecognized format (tried: " + strings.Join(e.Attempted, ", ") + ")"
}

func (e *FormatError) Unwrap() error { return e.Cause }

// ExecutionError reports an unrecoverable engine or simulator failure in the
// middle of a conversation. It converts that test's status to StatusError
// and does not abort the rest of the run.
type ExecutionError struct {
	Turn   int
	NodeID string
	Cause  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed at turn %d (node %s): %v", e.Turn, e.NodeID, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// EvaluationError reports a judge call failure. The affected metric is
// recorded as unresolved and counts as failed; it is never silently dropped.
type EvaluationError struct {
	Metric string
	Cause  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation of metric %q failed: %v", e.Metric, e.Cause)
}

func (e *EvaluationError) Unwrap() error { return e.Cause }

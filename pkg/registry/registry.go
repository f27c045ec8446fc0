// Package registry provides a dynamic tool-mock registry. Test cases cover
// most tools with static string mocks; this registry serves the rest, where
// the payload has to be computed from the arguments the model supplied.
package registry

import (
	"context"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// MockFunc builds the payload a mocked tool returns for one call. No real
// side effects may happen here; the function only shapes the response the
// agent sees.
type MockFunc func(ctx context.Context, args map[string]any) (string, error)

// Registry maps tool names to mock functions. It satisfies
// ports.ToolResponder and is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]MockFunc
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{funcs: make(map[string]MockFunc)}
}

// Register adds a mock for a tool. An existing mock with the same name is
// overwritten.
func (r *Registry) Register(name string, fn MockFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Static registers a fixed payload for a tool, regardless of arguments.
func (r *Registry) Static(name, payload string) {
	r.Register(name, func(context.Context, map[string]any) (string, error) {
		return payload, nil
	})
}

// Respond looks up the mock for the called tool and runs it. The boolean is
// false when no mock is registered under the tool's name.
func (r *Registry) Respond(ctx context.Context, call domain.ToolCall) (string, bool, error) {
	r.mu.RLock()
	fn, ok := r.funcs[call.Name]
	r.mu.RUnlock()

	if !ok {
		return "", false, nil
	}

	payload, err := fn(ctx, call.Arguments)
	if err != nil {
		return "", true, err
	}
	return payload, true, nil
}

var _ ports.ToolResponder = (*Registry)(nil)

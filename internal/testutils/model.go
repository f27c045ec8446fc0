// Package testutils provides scripted doubles and graph fixtures shared by
// package tests. Nothing here touches a real model endpoint.
package testutils

import (
	"context"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// ScriptedClient is a ports.ModelClient that replays queued responses in
// order. When the script runs out it keeps returning the final response, so
// open-ended loops stay deterministic. Safe for concurrent use.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []ports.ModelResponse
	requests  []ports.ModelRequest
	calls     int

	// Err, when set, is returned by every Complete call.
	Err error

	// FailAt makes the n-th call (1-based) fail with Err. Zero disables.
	FailAt int
}

// NewScriptedClient queues the given responses.
func NewScriptedClient(responses ...ports.ModelResponse) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// Complete implements ports.ModelClient.
func (c *ScriptedClient) Complete(ctx context.Context, req ports.ModelRequest) (*ports.ModelResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.requests = append(c.requests, req)

	if c.Err != nil && (c.FailAt == 0 || c.calls == c.FailAt) {
		return nil, c.Err
	}

	if len(c.responses) == 0 {
		return &ports.ModelResponse{Content: "Okay."}, nil
	}
	idx := c.calls - 1
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	resp := c.responses[idx]
	return &resp, nil
}

// Calls returns how many times Complete was invoked.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Requests returns a copy of every request seen so far.
func (c *ScriptedClient) Requests() []ports.ModelRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.ModelRequest(nil), c.requests...)
}

// Text builds a plain-content model response.
func Text(content string) ports.ModelResponse {
	return ports.ModelResponse{Content: content}
}

// CallTool builds a response that invokes one tool.
func CallTool(name string, args map[string]any) ports.ModelResponse {
	return ports.ModelResponse{
		ToolCalls: []domain.ToolCall{{Name: name, Arguments: args}},
	}
}

// Say builds a response with both content and a tool invocation.
func Say(content, tool string) ports.ModelResponse {
	return ports.ModelResponse{
		Content:   content,
		ToolCalls: []domain.ToolCall{{Name: tool}},
	}
}

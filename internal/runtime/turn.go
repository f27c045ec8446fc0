package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// TurnOutput is the agent side of one conversation turn.
type TurnOutput struct {
	// Messages are the assistant/tool messages produced this turn, in order.
	Messages []domain.Message

	// ToolCalls records declared-tool invocations (transition triggers are
	// not tool calls; they only show up in Path).
	ToolCalls []domain.ToolCall

	// Path lists the node ids entered during this turn, in order. Empty
	// when the conversation stays in the current node.
	Path []string

	// NodeID is the current node after the turn.
	NodeID string
}

// Turn produces the agent's reply to the transcript, which must end with a
// user message. Mock responses are looked up per declared tool call; no
// real side effects happen. At most one model-selected trigger fires per
// turn; the first tool call of the reply wins.
func (e *Engine) Turn(ctx context.Context, nodeID string, transcript domain.Transcript, mocks map[string]string) (*TurnOutput, error) {
	out := &TurnOutput{NodeID: nodeID}

	unit, ok := e.units.Unit(nodeID)
	if !ok {
		return nil, fmt.Errorf("no execution unit for node %q", nodeID)
	}

	// Satisfied equations force their transition before the model is asked
	// anything; the guarded node's prompt triggers are never exposed this
	// turn. The hop count is bounded by the unit count to survive
	// equation-only cycles.
	for hops := 0; hops < e.units.Len(); hops++ {
		target, forced := unit.ForcedTarget(e.vars)
		if !forced {
			break
		}
		e.logger.Debug("equation forced transition", "from", unit.NodeID, "to", target)
		out.Path = append(out.Path, target)
		out.NodeID = target
		unit, ok = e.units.Unit(target)
		if !ok {
			return nil, fmt.Errorf("no execution unit for node %q", target)
		}
	}

	resp, err := e.client.Complete(ctx, ports.ModelRequest{
		System:   e.systemPrompt(unit),
		Messages: transcript,
		Tools:    append(append([]domain.Tool(nil), unit.Tools...), unit.PromptTools()...),
	})
	if err != nil {
		return nil, fmt.Errorf("agent turn in node %q: %w", unit.NodeID, err)
	}

	transitioned := len(out.Path) > 0
	assistant := domain.Message{Role: domain.RoleAssistant, Content: resp.Content}
	var toolMessages []domain.Message

	for _, call := range resp.ToolCalls {
		if target, isTrigger := unit.TriggerTarget(call.Name); isTrigger {
			if transitioned {
				e.logger.Debug("ignoring extra trigger", "node", unit.NodeID, "trigger", call.Name)
				continue
			}
			out.Path = append(out.Path, target)
			out.NodeID = target
			transitioned = true
			continue
		}

		if !unit.DeclaresTool(call.Name) {
			e.logger.Warn("model invoked undeclared tool", "node", unit.NodeID, "tool", call.Name)
			continue
		}

		call.NodeID = unit.NodeID
		assistant.ToolCalls = append(assistant.ToolCalls, call)
		out.ToolCalls = append(out.ToolCalls, call)

		mock, found := mocks[call.Name]
		if !found && e.responder != nil {
			payload, ok, err := e.responder.Respond(ctx, call)
			if err != nil {
				return nil, fmt.Errorf("tool mock %q: %w", call.Name, err)
			}
			if ok {
				mock, found = payload, true
			}
		}
		if !found {
			mock = "{}"
		}
		toolMessages = append(toolMessages, domain.Message{Role: domain.RoleTool, Content: mock})

		if target, fires := unit.ToolTarget(call.Name); fires && !transitioned {
			out.Path = append(out.Path, target)
			out.NodeID = target
			transitioned = true
		}
	}

	if assistant.Content != "" || len(assistant.ToolCalls) > 0 {
		out.Messages = append(out.Messages, assistant)
	}
	out.Messages = append(out.Messages, toolMessages...)

	// Unconditional fallthrough fires after the reply when nothing else did.
	if !transitioned {
		if target, always := unit.AlwaysTarget(); always {
			out.Path = append(out.Path, target)
			out.NodeID = target
		}
	}

	return out, nil
}

func (e *Engine) systemPrompt(unit *ExecutionUnit) string {
	return "You are a voice agent in a simulated phone conversation. " +
		"Follow the instructions for your current conversational state exactly. " +
		"When a transition tool's description matches the situation, call that tool.\n\n" +
		"Current state instructions:\n" + unit.Instructions
}

package importers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/domain"
)

const retellFlowFixture = `{
  "conversation_flow_id": "flow_123",
  "start_node_id": "greeting",
  "global_prompt": "You are a support agent for Acme.",
  "nodes": [
    {
      "id": "greeting",
      "type": "conversation",
      "instruction": {"type": "prompt", "text": "Greet the caller."},
      "edges": [
        {
          "id": "e1",
          "destination_node_id": "billing",
          "transition_condition": {"type": "prompt", "prompt": "Caller asks about a bill"}
        },
        {
          "id": "e2",
          "destination_node_id": "priority",
          "transition_condition": {
            "type": "equation",
            "operator": "&&",
            "equations": [
              {"left": "{{tier}}", "operator": "==", "right": "gold"},
              {"left": "{{age}}", "operator": ">=", "right": "18"}
            ]
          }
        }
      ],
      "tool_ids": ["tool_1"]
    },
    {"id": "billing", "type": "conversation", "instruction": {"type": "prompt", "text": "Handle billing."}},
    {"id": "priority", "type": "conversation", "instruction": {"type": "prompt", "text": "Priority line."}}
  ],
  "tools": [
    {"tool_id": "tool_1", "type": "custom", "name": "lookup_account", "description": "Look up the caller's account."}
  ]
}`

func TestRetellFlowImporter(t *testing.T) {
	raw, err := DecodeBytes([]byte(retellFlowFixture))
	require.NoError(t, err)

	imp := RetellFlowImporter{}
	require.True(t, imp.Detect(raw))

	g, err := imp.Import(raw)
	require.NoError(t, err)

	assert.Equal(t, "greeting", g.Entry())
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, "retell-flow", g.SourceType)

	entry, ok := g.Node("greeting")
	require.True(t, ok)
	assert.Contains(t, entry.Instructions, "You are a support agent for Acme.")
	assert.Contains(t, entry.Instructions, "Greet the caller.")
	require.Len(t, entry.Tools, 1)
	assert.Equal(t, "lookup_account", entry.Tools[0].Name)

	require.Len(t, entry.Transitions, 2)
	assert.Equal(t, domain.ConditionPrompt, entry.Transitions[0].Condition.Kind)
	eq := entry.Transitions[1].Condition
	assert.Equal(t, domain.ConditionEquation, eq.Kind)
	assert.Equal(t, `tier == "gold" && age >= 18`, eq.Equation)
}

const retellLLMFixture = `{
  "llm_id": "llm_456",
  "general_prompt": "You are a dental office receptionist.",
  "starting_state": "intake",
  "general_tools": [
    {"name": "end_call", "description": "Hang up."}
  ],
  "states": [
    {
      "state_prompt": "Ask why they are calling.",
      "name": "intake",
      "edges": [
        {"destination_state_name": "booking", "description": "Caller wants an appointment"}
      ]
    },
    {
      "name": "booking",
      "state_prompt": "Collect a date and time.",
      "tools": [{"name": "book_slot", "description": "Book an appointment slot."}]
    }
  ]
}`

func TestRetellLLMImporter(t *testing.T) {
	raw, err := DecodeBytes([]byte(retellLLMFixture))
	require.NoError(t, err)

	imp := RetellLLMImporter{}
	require.True(t, imp.Detect(raw))

	g, err := imp.Import(raw)
	require.NoError(t, err)

	assert.Equal(t, "intake", g.Entry())
	assert.Equal(t, "retell-llm", g.SourceType)

	intake, ok := g.Node("intake")
	require.True(t, ok)
	require.Len(t, intake.Transitions, 1)
	assert.Equal(t, domain.PromptWhen("Caller wants an appointment"), intake.Transitions[0].Condition)
	// General tools attach to every state.
	require.Len(t, intake.Tools, 1)
	assert.Equal(t, "end_call", intake.Tools[0].Name)

	booking, ok := g.Node("booking")
	require.True(t, ok)
	require.Len(t, booking.Tools, 2)
	assert.Equal(t, "book_slot", booking.Tools[1].Name)
}

const vapiFixture = `{
  "name": "Order status bot",
  "firstMessage": "Hi, thanks for calling!",
  "model": {
    "provider": "openai",
    "model": "gpt-4o",
    "messages": [
      {"role": "system", "content": "You check order statuses for callers."}
    ],
    "tools": [
      {"type": "function", "function": {"name": "get_order", "description": "Fetch an order."}},
      {"type": "transferCall", "destinations": [{"type": "number", "number": "+15550100"}]},
      {"type": "endCall"}
    ]
  }
}`

func TestVAPIImporter(t *testing.T) {
	raw, err := DecodeBytes([]byte(vapiFixture))
	require.NoError(t, err)

	imp := VAPIImporter{}
	require.True(t, imp.Detect(raw))

	g, err := imp.Import(raw)
	require.NoError(t, err)

	assert.Equal(t, "assistant", g.Entry())
	assert.Equal(t, 3, g.Len())

	root, ok := g.Node("assistant")
	require.True(t, ok)
	assert.Equal(t, "You check order statuses for callers.", root.Instructions)

	names := make([]string, 0, len(root.Tools))
	for _, tool := range root.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"get_order", "transferCall", "endCall"}, names)

	require.Len(t, root.Transitions, 2)
	assert.Equal(t, domain.ToolWhen("transferCall"), root.Transitions[0].Condition)
	assert.Equal(t, "transfer_15550100", root.Transitions[0].Target)
	assert.Equal(t, domain.ToolWhen("endCall"), root.Transitions[1].Condition)
	assert.Equal(t, "end", root.Transitions[1].Target)
}

const blandFixture = `{
  "name": "Refund pathway",
  "nodes": [
    {"id": "n1", "type": "Default", "data": {"name": "Start", "prompt": "Ask what the caller needs.", "isStart": true}},
    {"id": "n2", "type": "Default", "data": {"name": "Refund", "text": "Process the refund request."}}
  ],
  "edges": [
    {"id": "e1", "source": "n1", "target": "n2", "label": "Caller wants a refund"}
  ]
}`

func TestBlandImporter(t *testing.T) {
	raw, err := DecodeBytes([]byte(blandFixture))
	require.NoError(t, err)

	imp := BlandImporter{}
	require.True(t, imp.Detect(raw))

	g, err := imp.Import(raw)
	require.NoError(t, err)

	assert.Equal(t, "n1", g.Entry())
	out := g.Outgoing("n1")
	require.Len(t, out, 1)
	assert.Equal(t, "n2", out[0].Target)
	assert.Equal(t, domain.PromptWhen("Caller wants a refund"), out[0].Condition)
}

const telnyxFixture = `{
  "name": "Clinic line",
  "model": "meta-llama/Meta-Llama-3.1-70B-Instruct",
  "instructions": "Triage incoming patient calls.",
  "greeting": "Hello, thanks for calling the clinic.",
  "tools": [
    {"type": "webhook", "webhook": {"name": "check_schedule", "description": "Check open slots."}},
    {"type": "handoff", "handoff": {"ai_assistants": [{"id": "asst_1", "name": "Billing desk"}]}},
    {"type": "hangup"}
  ]
}`

func TestTelnyxImporter(t *testing.T) {
	raw, err := DecodeBytes([]byte(telnyxFixture))
	require.NoError(t, err)

	imp := TelnyxImporter{}
	require.True(t, imp.Detect(raw))

	g, err := imp.Import(raw)
	require.NoError(t, err)

	root, ok := g.Node("assistant")
	require.True(t, ok)
	assert.Equal(t, "Triage incoming patient calls.", root.Instructions)
	require.Len(t, root.Transitions, 2)
	assert.Equal(t, "handoff_billing_desk", root.Transitions[0].Target)
	assert.Equal(t, domain.ToolWhen("handoff"), root.Transitions[0].Condition)
	assert.Equal(t, "end", root.Transitions[1].Target)
}

const sheetFixture = `{
  "title": "Patient intake survey",
  "questions": [
    {"id": "name", "question": "What is your full name?"},
    {"id": "reason", "question": "What brings you in today?", "branches": [
      {"when": "Caller mentions an emergency", "goto": "urgent"}
    ], "next": "wrap"},
    {"id": "urgent", "question": "Is anyone in immediate danger?", "next": "wrap"},
    {"id": "wrap", "question": "Anything else we should know?"}
  ]
}`

func TestSheetImporter(t *testing.T) {
	raw, err := DecodeBytes([]byte(sheetFixture))
	require.NoError(t, err)

	imp := SheetImporter{}
	require.True(t, imp.Detect(raw))

	g, err := imp.Import(raw)
	require.NoError(t, err)

	assert.Equal(t, "name", g.Entry())
	// Rows without explicit routing chain to the next row.
	out := g.Outgoing("name")
	require.Len(t, out, 1)
	assert.Equal(t, "reason", out[0].Target)
	assert.Equal(t, domain.ConditionAlways, out[0].Condition.Kind)

	// Branches come before the default next.
	out = g.Outgoing("reason")
	require.Len(t, out, 2)
	assert.Equal(t, "urgent", out[0].Target)
	assert.Equal(t, domain.ConditionPrompt, out[0].Condition.Kind)
	assert.Equal(t, "wrap", out[1].Target)

	// The last row is terminal.
	assert.Empty(t, g.Outgoing("wrap"))
}

const customFixture = `{
  "entry": "start",
  "nodes": [
    {
      "id": "start",
      "instructions": "Welcome the caller.",
      "transitions": [
        {"target": "adult", "equation": "{{age}} >= 18"},
        {"target": "done", "prompt": "Caller says goodbye"}
      ]
    },
    {"id": "adult", "instructions": "Adult flow.", "transitions": [{"target": "done"}]},
    {"id": "done", "instructions": "Wrap up."}
  ]
}`

func TestCustomImporter(t *testing.T) {
	raw, err := DecodeBytes([]byte(customFixture))
	require.NoError(t, err)

	imp := CustomImporter{}
	require.True(t, imp.Detect(raw))

	g, err := imp.Import(raw)
	require.NoError(t, err)

	out := g.Outgoing("start")
	require.Len(t, out, 2)
	assert.Equal(t, domain.EquationWhen("age >= 18"), out[0].Condition)
	assert.Equal(t, domain.PromptWhen("Caller says goodbye"), out[1].Condition)

	// A transition with no condition falls through unconditionally.
	out = g.Outgoing("adult")
	require.Len(t, out, 1)
	assert.Equal(t, domain.ConditionAlways, out[0].Condition.Kind)
}

func TestRegistryDetection(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name    string
		fixture string
		want    string
	}{
		{"retell flow", retellFlowFixture, "retell-flow"},
		{"retell llm", retellLLMFixture, "retell-llm"},
		{"vapi", vapiFixture, "vapi"},
		{"bland", blandFixture, "bland"},
		{"telnyx", telnyxFixture, "telnyx"},
		{"sheet", sheetFixture, "sheet"},
		{"custom", customFixture, "custom"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := DecodeBytes([]byte(tc.fixture))
			require.NoError(t, err)

			imp, err := reg.Detect(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, imp.SourceType())

			g, err := reg.Import(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.SourceType)
		})
	}
}

func TestRegistryUnrecognizedFormat(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Import(map[string]any{"totally": "unrelated"})
	var formatErr *domain.FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, reg.SourceTypes(), formatErr.Attempted)
}

func TestRegistryExplicitSourceType(t *testing.T) {
	reg := NewRegistry()
	raw, err := DecodeBytes([]byte(customFixture))
	require.NoError(t, err)

	g, err := reg.ImportAs("custom", raw)
	require.NoError(t, err)
	assert.Equal(t, "custom", g.SourceType)

	_, err = reg.ImportAs("nope", raw)
	require.Error(t, err)
}

func TestImportIsIdempotent(t *testing.T) {
	raw, err := DecodeBytes([]byte(retellFlowFixture))
	require.NoError(t, err)

	imp := RetellFlowImporter{}
	first, err := imp.Import(raw)
	require.NoError(t, err)
	second, err := imp.Import(raw)
	require.NoError(t, err)

	assert.Equal(t, first.NodeIDs(), second.NodeIDs())
	assert.Equal(t, first.Reachable(), second.Reachable())
	for _, id := range first.NodeIDs() {
		assert.Equal(t, first.Outgoing(id), second.Outgoing(id))
	}
}

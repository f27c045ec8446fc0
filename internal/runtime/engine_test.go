package runtime_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/internal/testutils"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
)

func guardedGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph("verify", []domain.Node{
		{
			ID:           "verify",
			Instructions: "Verify the caller's age. Caller is {{age}} years old.",
			Transitions: []domain.Transition{
				{Target: "adult", Condition: domain.EquationWhen("age >= 18")},
				{Target: "minor", Condition: domain.PromptWhen("caller sounds underage")},
			},
		},
		{ID: "adult", Instructions: "Proceed with the adult flow."},
		{ID: "minor", Instructions: "Politely end the call."},
	})
	if err != nil {
		t.Fatalf("graph fixture invalid: %v", err)
	}
	return g
}

func TestCompile(t *testing.T) {
	g := guardedGraph(t)
	units, err := runtime.Compile(g, map[string]string{"age": "21"})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if units.Entry() != "verify" {
		t.Errorf("Entry() = %q, want verify", units.Entry())
	}
	if units.Len() != 3 {
		t.Errorf("Len() = %d, want 3", units.Len())
	}

	u, ok := units.Unit("verify")
	if !ok {
		t.Fatal("unit for verify missing")
	}
	if !strings.Contains(u.Instructions, "21 years old") {
		t.Errorf("variables not substituted: %q", u.Instructions)
	}
	if len(u.Triggers) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(u.Triggers))
	}
}

func TestCompile_MalformedEquation(t *testing.T) {
	g, err := domain.NewGraph("a", []domain.Node{
		{ID: "a", Transitions: []domain.Transition{
			{Target: "b", Condition: domain.EquationWhen("age >=")},
		}},
		{ID: "b"},
	})
	if err != nil {
		t.Fatalf("graph fixture invalid: %v", err)
	}

	if _, err := runtime.Compile(g, nil); err == nil {
		t.Fatal("expected compile error for malformed equation")
	}
}

func TestTurn_EquationForcesTransitionBeforeModel(t *testing.T) {
	g := guardedGraph(t)
	units, err := runtime.Compile(g, map[string]string{"age": "21"})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	client := testutils.NewScriptedClient(testutils.Text("Great, you're all set."))
	engine := runtime.NewEngine(units, client, map[string]string{"age": "21"})

	transcript := domain.Transcript{}.Append(domain.Message{Role: domain.RoleUser, Content: "Hi, I'm 21."})
	out, err := engine.Turn(context.Background(), "verify", transcript, nil)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}

	if out.NodeID != "adult" {
		t.Errorf("NodeID = %q, want adult", out.NodeID)
	}
	if len(out.Path) != 1 || out.Path[0] != "adult" {
		t.Errorf("Path = %v, want [adult]", out.Path)
	}

	// The model is consulted only for the reply from the target unit; the
	// guarded node's prompt trigger is never offered.
	reqs := client.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected exactly 1 model call, got %d", len(reqs))
	}
	for _, tool := range reqs[0].Tools {
		if strings.HasPrefix(tool.Name, runtime.TriggerPrefix) && strings.Contains(tool.Name, "minor") {
			t.Errorf("guarded node's prompt trigger %q leaked to the model", tool.Name)
		}
	}
	if !strings.Contains(reqs[0].System, "adult flow") {
		t.Errorf("model not instructed with target node's instructions: %q", reqs[0].System)
	}
}

func TestTurn_ModelSelectedTrigger(t *testing.T) {
	g := testutils.SupportGraph(t)
	units, err := runtime.Compile(g, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// Find the trigger name for greeting -> billing.
	u, _ := units.Unit("greeting")
	var billingTrigger string
	for _, tool := range u.PromptTools() {
		if strings.Contains(tool.Name, "billing") {
			billingTrigger = tool.Name
		}
	}
	if billingTrigger == "" {
		t.Fatal("no prompt trigger for billing found")
	}

	client := testutils.NewScriptedClient(testutils.Say("Let me pull up your account.", billingTrigger))
	engine := runtime.NewEngine(units, client, nil)

	transcript := domain.Transcript{}.Append(domain.Message{Role: domain.RoleUser, Content: "I have a billing question."})
	out, err := engine.Turn(context.Background(), "greeting", transcript, nil)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}

	if out.NodeID != "billing" {
		t.Errorf("NodeID = %q, want billing", out.NodeID)
	}
	if len(out.ToolCalls) != 0 {
		t.Errorf("trigger recorded as tool call: %v", out.ToolCalls)
	}
	if len(out.Messages) != 1 || out.Messages[0].Content != "Let me pull up your account." {
		t.Errorf("unexpected messages: %v", out.Messages)
	}
}

func TestTurn_DeclaredToolUsesMock(t *testing.T) {
	g := testutils.SupportGraph(t)
	units, err := runtime.Compile(g, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	client := testutils.NewScriptedClient(
		testutils.CallTool("lookup_invoice", map[string]any{"customer": "ada"}),
	)
	engine := runtime.NewEngine(units, client, nil)

	mocks := map[string]string{"lookup_invoice": `{"amount": 42}`}
	transcript := domain.Transcript{}.Append(domain.Message{Role: domain.RoleUser, Content: "How much do I owe?"})
	out, err := engine.Turn(context.Background(), "billing", transcript, mocks)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}

	if len(out.ToolCalls) != 1 || out.ToolCalls[0].Name != "lookup_invoice" {
		t.Fatalf("ToolCalls = %v", out.ToolCalls)
	}
	if out.ToolCalls[0].NodeID != "billing" {
		t.Errorf("tool call not attributed to node: %q", out.ToolCalls[0].NodeID)
	}

	var toolMsg *domain.Message
	for i := range out.Messages {
		if out.Messages[i].Role == domain.RoleTool {
			toolMsg = &out.Messages[i]
		}
	}
	if toolMsg == nil || toolMsg.Content != `{"amount": 42}` {
		t.Errorf("mock response not delivered: %v", out.Messages)
	}
}

func TestTurn_DynamicMockFallback(t *testing.T) {
	g := testutils.SupportGraph(t)
	units, err := runtime.Compile(g, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	reg := registry.New()
	reg.Register("lookup_invoice", func(_ context.Context, args map[string]any) (string, error) {
		return `{"customer":"` + args["customer"].(string) + `","amount":7}`, nil
	})

	client := testutils.NewScriptedClient(
		testutils.CallTool("lookup_invoice", map[string]any{"customer": "ada"}),
	)
	engine := runtime.NewEngine(units, client, nil, runtime.WithToolResponder(reg))

	transcript := domain.Transcript{}.Append(domain.Message{Role: domain.RoleUser, Content: "How much do I owe?"})
	out, err := engine.Turn(context.Background(), "billing", transcript, nil)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}

	var toolMsg *domain.Message
	for i := range out.Messages {
		if out.Messages[i].Role == domain.RoleTool {
			toolMsg = &out.Messages[i]
		}
	}
	if toolMsg == nil || toolMsg.Content != `{"customer":"ada","amount":7}` {
		t.Errorf("dynamic mock not delivered: %v", out.Messages)
	}
}

func TestTurn_AlwaysFallthrough(t *testing.T) {
	g, err := domain.NewGraph("intro", []domain.Node{
		{ID: "intro", Instructions: "Read the disclaimer.", Transitions: []domain.Transition{
			{Target: "menu", Condition: domain.Always()},
		}},
		{ID: "menu", Instructions: "Present the menu."},
	})
	if err != nil {
		t.Fatalf("graph fixture invalid: %v", err)
	}
	units, err := runtime.Compile(g, nil)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	client := testutils.NewScriptedClient(testutils.Text("Calls may be recorded."))
	engine := runtime.NewEngine(units, client, nil)

	transcript := domain.Transcript{}.Append(domain.Message{Role: domain.RoleUser, Content: "Hello?"})
	out, err := engine.Turn(context.Background(), "intro", transcript, nil)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}
	if out.NodeID != "menu" {
		t.Errorf("NodeID = %q, want menu (always fallthrough)", out.NodeID)
	}
}

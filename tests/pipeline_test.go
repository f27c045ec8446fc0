package tests

import (
	"context"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/testutils"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/suite"
)

// The fixtures under tests/fixtures describe a small billing agent and a
// one-case suite against it. The scripted clients below drive the exact
// conversation the suite expects, so the whole pipeline (import, validate,
// run, judge, persist) is exercised deterministically.

func loadFixtureGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := parley.ImportFile(filepath.Join("fixtures", "agent.json"))
	if err != nil {
		t.Fatalf("import fixture graph: %v", err)
	}
	if err := parley.Validate(g); err != nil {
		t.Fatalf("fixture graph does not validate: %v", err)
	}
	return g
}

func loadFixtureSuite(t *testing.T) *suite.File {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("fixtures", "parley.yaml"))
	if err != nil {
		t.Fatalf("read fixture suite: %v", err)
	}
	sf, err := suite.ParseFile(data)
	if err != nil {
		t.Fatalf("parse fixture suite: %v", err)
	}
	return sf
}

func TestPipeline_ImportRunJudge(t *testing.T) {
	g := loadFixtureGraph(t)
	sf := loadFixtureSuite(t)

	agent := testutils.NewScriptedClient(
		testutils.Say("Of course, let me pull up your billing details.", "transition_to_billing_0"),
		testutils.CallTool("lookup_invoice", map[string]any{"customer": "ada"}),
		testutils.Text("Your balance is 42 dollars. Anything else I can help with?"),
	)
	simulator := testutils.NewScriptedClient(
		testutils.Text("Hi, I have a question about my bill."),
		testutils.Text("What is my current balance?"),
		testutils.Text("Great, that's all I needed."),
		testutils.Text("Thanks, goodbye. <END_CALL>"),
	)

	run, err := parley.Run(context.Background(), agent, g, sf.Tests,
		suite.WithSimulatorClient(simulator),
		suite.WithConcurrency(1),
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !run.OK() {
		t.Fatalf("expected a passing run, got %+v", run.Results)
	}
	res := run.Results[0]
	if res.Status != domain.StatusPass {
		t.Fatalf("status = %q, violations = %v, error = %q", res.Status, res.Violations, res.Error)
	}
	if res.EndReason != domain.EndSimulatorEnded {
		t.Errorf("end reason = %q", res.EndReason)
	}

	wantTrace := []string{"greeting", "billing", "wrap"}
	if len(res.NodeTrace) != len(wantTrace) {
		t.Fatalf("node trace = %v", res.NodeTrace)
	}
	for i, id := range wantTrace {
		if res.NodeTrace[i] != id {
			t.Fatalf("node trace = %v, want %v", res.NodeTrace, wantTrace)
		}
	}

	if len(res.ToolCalls) != 1 || res.ToolCalls[0].Name != "lookup_invoice" {
		t.Fatalf("tool calls = %v", res.ToolCalls)
	}
	if res.ToolCalls[0].NodeID != "billing" {
		t.Errorf("tool call attributed to %q", res.ToolCalls[0].NodeID)
	}
}

func TestPipeline_PersistAndReload(t *testing.T) {
	g := loadFixtureGraph(t)
	sf := loadFixtureSuite(t)

	agent := testutils.NewScriptedClient(
		testutils.Say("Let me check that for you.", "transition_to_billing_0"),
		testutils.CallTool("lookup_invoice", map[string]any{"customer": "ada"}),
		testutils.Text("Your balance is 42 dollars."),
	)
	simulator := testutils.NewScriptedClient(
		testutils.Text("Hello, what's my balance? My card ends in 4111-1111-1111-1111."),
		testutils.Text("And the total?"),
		testutils.Text("Got it, thanks."),
		testutils.Text("Perfect. <END_CALL>"),
	)

	run, err := parley.Run(context.Background(), agent, g, sf.Tests,
		suite.WithSimulatorClient(simulator),
		suite.WithConcurrency(1),
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		t.Fatal(err)
	}

	inner := memory.NewStore()
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(inner)
	store = middleware.NewPIIMiddleware([]string{`\d{4}-\d{4}-\d{4}-\d{4}`})(store)

	if err := store.Save(t.Context(), run); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// At rest the payload is an opaque envelope.
	envelope, err := inner.Load(t.Context(), run.ID)
	if err != nil {
		t.Fatalf("underlying load failed: %v", err)
	}
	if len(envelope.Results) != 0 || envelope.Encrypted == "" {
		t.Fatal("run was stored in the clear")
	}

	loaded, err := store.Load(t.Context(), run.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Passed != run.Passed {
		t.Errorf("reloaded counters diverge: %+v", loaded)
	}
	for _, msg := range loaded.Results[0].Transcript {
		if msg.Role == domain.RoleUser && msg.Seq == 0 {
			if want := "Hello, what's my balance? My card ends in ***."; msg.Content != want {
				t.Errorf("card number not redacted: %q", msg.Content)
			}
		}
	}
}

func TestPipeline_GraphExports(t *testing.T) {
	g := loadFixtureGraph(t)

	diagram, err := parley.Export(g, "mermaid", ports.ExportOptions{})
	if err != nil {
		t.Fatalf("mermaid export failed: %v", err)
	}
	for _, want := range []string{"flowchart TD", "greeting", "lookup_invoice"} {
		if !strings.Contains(diagram, want) {
			t.Errorf("diagram missing %q:\n%s", want, diagram)
		}
	}

	// Native export reimports to an equivalent graph.
	native, err := parley.Export(g, "native", ports.ExportOptions{})
	if err != nil {
		t.Fatalf("native export failed: %v", err)
	}
	back, err := parley.ImportBytes([]byte(native))
	if err != nil {
		t.Fatalf("reimport failed: %v", err)
	}
	if back.Entry() != g.Entry() || back.Len() != g.Len() {
		t.Errorf("round trip changed the graph: entry %q len %d", back.Entry(), back.Len())
	}
}

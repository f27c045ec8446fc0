package testutils

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
)

// SupportGraph builds the three-node support flow used across package
// tests: greeting -> billing (prompt), greeting -> end (prompt),
// billing -> end (prompt). Fails the test on structural errors.
func SupportGraph(t *testing.T) *domain.Graph {
	t.Helper()

	g, err := domain.NewGraph("greeting", []domain.Node{
		{
			ID:           "greeting",
			Instructions: "Greet the caller and ask how you can help.",
			Transitions: []domain.Transition{
				{Target: "billing", Condition: domain.PromptWhen("caller has a billing question")},
				{Target: "end", Condition: domain.PromptWhen("caller wants to hang up")},
			},
		},
		{
			ID:           "billing",
			Instructions: "Help the caller with billing. Offer a refund when asked.",
			Tools: []domain.Tool{
				{Name: "lookup_invoice", Description: "Fetch the caller's latest invoice."},
			},
			Transitions: []domain.Transition{
				{Target: "end", Condition: domain.PromptWhen("the billing question is resolved")},
			},
		},
		{
			ID:           "end",
			Instructions: "Thank the caller and say goodbye.",
		},
	}, domain.WithSourceType("native"))
	if err != nil {
		t.Fatalf("SupportGraph fixture invalid: %v", err)
	}
	return g
}

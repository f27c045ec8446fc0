package importers

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// TelnyxImporter converts a Telnyx AI assistant config: a flat instruction
// prompt with a tool list, like VAPI but with top-level instructions and a
// plain string model field.
//
// Fidelity note: a handoff target is another live assistant on the Telnyx
// side; here it becomes a terminal node reached by a tool_call transition,
// so the receiving assistant's behavior is out of scope.
type TelnyxImporter struct{}

type telnyxAssistant struct {
	Name         string       `mapstructure:"name"`
	Model        string       `mapstructure:"model"`
	Instructions string       `mapstructure:"instructions"`
	Greeting     string       `mapstructure:"greeting"`
	Tools        []telnyxTool `mapstructure:"tools"`
}

type telnyxTool struct {
	Type    string         `mapstructure:"type"`
	Webhook telnyxWebhook  `mapstructure:"webhook"`
	Handoff telnyxHandoff  `mapstructure:"handoff"`
	Hangup  map[string]any `mapstructure:"hangup"`
	Targets []telnyxTarget `mapstructure:"targets"`
}

type telnyxWebhook struct {
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Parameters  map[string]any `mapstructure:"parameters"`
}

type telnyxHandoff struct {
	AIAssistants []telnyxTarget `mapstructure:"ai_assistants"`
}

type telnyxTarget struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

func (TelnyxImporter) SourceType() string { return "telnyx" }

func (TelnyxImporter) Detect(raw map[string]any) bool {
	if _, ok := raw["instructions"].(string); !ok {
		return false
	}
	// VAPI nests the model config in an object; Telnyx uses a plain string.
	if _, ok := raw["model"].(map[string]any); ok {
		return false
	}
	_, hasModel := raw["model"].(string)
	_, hasGreeting := raw["greeting"]
	_, hasTools := raw["tools"]
	return hasModel || hasGreeting || hasTools
}

func (TelnyxImporter) Import(raw map[string]any) (*domain.Graph, error) {
	var src telnyxAssistant
	if err := decode(raw, &src); err != nil {
		return nil, err
	}
	if src.Instructions == "" {
		return nil, fmt.Errorf("assistant has no instructions")
	}

	root := domain.Node{ID: assistantNodeID, Instructions: src.Instructions}
	var extra []domain.Node
	for _, t := range src.Tools {
		switch t.Type {
		case "webhook":
			root.Tools = append(root.Tools, domain.Tool{
				Name:        t.Webhook.Name,
				Description: t.Webhook.Description,
				Parameters:  t.Webhook.Parameters,
			})
		case "handoff":
			targets := t.Handoff.AIAssistants
			if len(targets) == 0 {
				targets = t.Targets
			}
			for _, dst := range targets {
				label := dst.Name
				if label == "" {
					label = dst.ID
				}
				id := "handoff_" + sanitizeID(label)
				extra = append(extra, domain.Node{
					ID:           id,
					Instructions: "The caller has been handed off to " + label + ".",
				})
				root.Transitions = append(root.Transitions, domain.Transition{
					Target:    id,
					Condition: domain.ToolWhen("handoff"),
				})
			}
			root.Tools = append(root.Tools, domain.Tool{
				Name:        "handoff",
				Description: "Hand the caller off to another assistant.",
			})
		case "hangup":
			extra = append(extra, domain.Node{
				ID:           "end",
				Instructions: "The call has ended.",
			})
			root.Transitions = append(root.Transitions, domain.Transition{
				Target:    "end",
				Condition: domain.ToolWhen("hangup"),
			})
			root.Tools = append(root.Tools, domain.Tool{
				Name:        "hangup",
				Description: "End the call.",
			})
		}
	}

	nodes := append([]domain.Node{root}, extra...)
	return domain.NewGraph(assistantNodeID, nodes,
		domain.WithSourceType("telnyx"),
		domain.WithSourceMetadata(provenance(raw, "name", "model", "greeting")))
}

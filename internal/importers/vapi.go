package importers

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// VAPIImporter converts a VAPI assistant config. VAPI assistants are
// single-prompt agents; the system message becomes the sole conversational
// node and each transferCall destination or endCall tool becomes a
// synthesized terminal node reached by a tool_call transition.
//
// Fidelity note: VAPI performs the actual call transfer out of band; here a
// transfer is modeled as entering a terminal node, so post-transfer audio
// behavior is not represented.
type VAPIImporter struct{}

type vapiAssistant struct {
	Name         string    `mapstructure:"name"`
	FirstMessage string    `mapstructure:"firstMessage"`
	Model        vapiModel `mapstructure:"model"`
}

type vapiModel struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	Messages []vapiMessage `mapstructure:"messages"`
	Tools    []vapiTool    `mapstructure:"tools"`
}

type vapiMessage struct {
	Role    string `mapstructure:"role"`
	Content string `mapstructure:"content"`
}

type vapiTool struct {
	Type         string            `mapstructure:"type"`
	Function     vapiFunction      `mapstructure:"function"`
	Destinations []vapiDestination `mapstructure:"destinations"`
}

type vapiFunction struct {
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Parameters  map[string]any `mapstructure:"parameters"`
}

type vapiDestination struct {
	Type    string `mapstructure:"type"`
	Number  string `mapstructure:"number"`
	Message string `mapstructure:"message"`
}

// assistantNodeID is the single conversational node a VAPI or Telnyx
// assistant collapses into.
const assistantNodeID = "assistant"

func (VAPIImporter) SourceType() string { return "vapi" }

func (VAPIImporter) Detect(raw map[string]any) bool {
	model, ok := raw["model"].(map[string]any)
	if !ok {
		return false
	}
	_, hasProvider := model["provider"]
	_, hasMessages := model["messages"]
	return hasProvider || hasMessages
}

func (VAPIImporter) Import(raw map[string]any) (*domain.Graph, error) {
	var src vapiAssistant
	if err := decode(raw, &src); err != nil {
		return nil, err
	}

	root := domain.Node{ID: assistantNodeID, Instructions: vapiSystemPrompt(src)}
	if root.Instructions == "" {
		return nil, fmt.Errorf("assistant has no system prompt")
	}

	var extra []domain.Node
	for _, t := range src.Model.Tools {
		switch t.Type {
		case "function":
			root.Tools = append(root.Tools, domain.Tool{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			})
		case "transferCall":
			for _, d := range t.Destinations {
				id := "transfer_" + sanitizeID(destinationLabel(d))
				extra = append(extra, domain.Node{
					ID:           id,
					Instructions: "The call has been transferred to " + destinationLabel(d) + ".",
				})
				root.Transitions = append(root.Transitions, domain.Transition{
					Target:    id,
					Condition: domain.ToolWhen("transferCall"),
				})
			}
			root.Tools = append(root.Tools, domain.Tool{
				Name:        "transferCall",
				Description: "Transfer the caller to another destination.",
			})
		case "endCall":
			extra = append(extra, domain.Node{
				ID:           "end",
				Instructions: "The call has ended.",
			})
			root.Transitions = append(root.Transitions, domain.Transition{
				Target:    "end",
				Condition: domain.ToolWhen("endCall"),
			})
			root.Tools = append(root.Tools, domain.Tool{
				Name:        "endCall",
				Description: "End the call.",
			})
		default:
			// Unknown tool types (dtmf, voicemail) carry no graph shape.
		}
	}

	nodes := append([]domain.Node{root}, extra...)
	return domain.NewGraph(assistantNodeID, nodes,
		domain.WithSourceType("vapi"),
		domain.WithSourceMetadata(provenance(raw, "name", "firstMessage", "voice")))
}

func vapiSystemPrompt(src vapiAssistant) string {
	for _, m := range src.Model.Messages {
		if m.Role == "system" {
			return m.Content
		}
	}
	return ""
}

func destinationLabel(d vapiDestination) string {
	if d.Number != "" {
		return d.Number
	}
	if d.Message != "" {
		return d.Message
	}
	return d.Type
}

// sanitizeID makes an arbitrary label usable as a node id.
func sanitizeID(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "destination"
	}
	return out
}

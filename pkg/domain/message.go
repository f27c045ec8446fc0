package domain

import "strings"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// Message is one entry in a transcript. Seq increases monotonically within
// a run; the transcript is append-only while running and immutable after.
type Message struct {
	Role      string     `json:"role" yaml:"role"`
	Content   string     `json:"content" yaml:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	Seq       int        `json:"seq" yaml:"seq"`
}

// Transcript is the ordered message sequence of a single conversation.
type Transcript []Message

// Append returns the transcript with msg added and its Seq assigned.
func (t Transcript) Append(msg Message) Transcript {
	msg.Seq = len(t)
	return append(t, msg)
}

// AssistantText concatenates all assistant message contents, newline
// separated. Rule-based judging matches against this view only.
func (t Transcript) AssistantText() string {
	var parts []string
	for _, m := range t {
		if m.Role == RoleAssistant && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// LastRole returns the role of the final message, or "" when empty.
func (t Transcript) LastRole() string {
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1].Role
}

/*
Package sim implements the persona-driven user simulator: it plays the
human side of a conversation against the compiled agent.

The simulator is stateless across invocations. Each Generate call derives
everything from the transcript prefix and the persona text, so two
simulator instances with the same inputs are interchangeable.
*/
package sim

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"context"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// EndSentinel is the marker the simulator's model emits when the persona's
// goal is achieved or its patience is exhausted. It is stripped from the
// returned message.
const EndSentinel = "<END_CALL>"

// Reply is one simulated user turn.
type Reply struct {
	Message domain.Message

	// ShouldEnd signals normal termination, distinct from turn-budget
	// exhaustion.
	ShouldEnd bool
}

// Simulator generates user turns through the model-call capability.
type Simulator struct {
	client ports.ModelClient
	logger *slog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a simulator backed by the given model client.
func New(client ports.ModelClient, opts ...Option) *Simulator {
	s := &Simulator{
		client: client,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces the next user message for the given transcript prefix.
// The transcript is consulted, never retained.
func (s *Simulator) Generate(ctx context.Context, transcript domain.Transcript, persona string) (Reply, error) {
	resp, err := s.client.Complete(ctx, ports.ModelRequest{
		System:   s.systemPrompt(persona),
		Messages: invert(transcript),
	})
	if err != nil {
		return Reply{}, fmt.Errorf("simulator turn: %w", err)
	}

	content := strings.TrimSpace(resp.Content)
	shouldEnd := strings.Contains(content, EndSentinel)
	if shouldEnd {
		content = strings.TrimSpace(strings.ReplaceAll(content, EndSentinel, ""))
		s.logger.Debug("simulator signalled end of conversation")
	}

	return Reply{
		Message:   domain.Message{Role: domain.RoleUser, Content: content},
		ShouldEnd: shouldEnd,
	}, nil
}

func (s *Simulator) systemPrompt(persona string) string {
	return "You are role-playing a human caller talking to a voice agent on the phone. " +
		"Stay in character and reply with a single short conversational utterance.\n\n" +
		"Your persona:\n" + persona + "\n\n" +
		"When your goal is achieved, or you have run out of patience, append " +
		EndSentinel + " to your final message."
}

// invert swaps conversation sides so the model sees the agent's words as
// its interlocutor ("user") and the simulated human's words as its own
// ("assistant"). Tool traffic is internal to the agent and dropped.
func invert(transcript domain.Transcript) []domain.Message {
	out := make([]domain.Message, 0, len(transcript))
	for _, m := range transcript {
		switch m.Role {
		case domain.RoleAssistant:
			out = append(out, domain.Message{Role: domain.RoleUser, Content: m.Content, Seq: m.Seq})
		case domain.RoleUser:
			out = append(out, domain.Message{Role: domain.RoleAssistant, Content: m.Content, Seq: m.Seq})
		}
	}
	return out
}

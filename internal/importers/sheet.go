package importers

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// SheetImporter converts spreadsheet-style survey definitions: an ordered
// question list where each row names its follow-up, optionally with
// answer-dependent branches.
//
// Fidelity note: a survey row is a question, not an open-ended state, so
// instructions are synthesized around the question text; sheet formatting
// (columns beyond question/next/branches) is dropped.
type SheetImporter struct{}

type sheetDoc struct {
	Title     string          `mapstructure:"title"`
	Questions []sheetQuestion `mapstructure:"questions"`
}

type sheetQuestion struct {
	ID       string        `mapstructure:"id"`
	Question string        `mapstructure:"question"`
	Next     string        `mapstructure:"next"`
	Branches []sheetBranch `mapstructure:"branches"`
}

type sheetBranch struct {
	When string `mapstructure:"when"`
	Goto string `mapstructure:"goto"`
}

func (SheetImporter) SourceType() string { return "sheet" }

func (SheetImporter) Detect(raw map[string]any) bool {
	qs, ok := raw["questions"].([]any)
	return ok && len(qs) > 0
}

func (SheetImporter) Import(raw map[string]any) (*domain.Graph, error) {
	var src sheetDoc
	if err := decode(raw, &src); err != nil {
		return nil, err
	}
	if len(src.Questions) == 0 {
		return nil, fmt.Errorf("sheet has no questions")
	}

	nodes := make([]domain.Node, 0, len(src.Questions))
	for i, q := range src.Questions {
		id := q.ID
		if id == "" {
			id = fmt.Sprintf("q%d", i+1)
		}
		if q.Question == "" {
			return nil, fmt.Errorf("question %q has no text", id)
		}
		node := domain.Node{
			ID:           id,
			Instructions: "Ask the caller: " + q.Question + "\nWait for their answer before moving on.",
		}
		for _, b := range q.Branches {
			if b.When == "" || b.Goto == "" {
				return nil, fmt.Errorf("question %q has a branch missing when or goto", id)
			}
			node.Transitions = append(node.Transitions, domain.Transition{
				Target:    b.Goto,
				Condition: domain.PromptWhen(b.When),
			})
		}
		// An explicit next wins over positional order; the final row with
		// neither is the terminal node.
		next := q.Next
		if next == "" && len(q.Branches) == 0 && i+1 < len(src.Questions) {
			next = questionID(src.Questions[i+1], i+1)
		}
		if next != "" {
			node.Transitions = append(node.Transitions, domain.Transition{
				Target:    next,
				Condition: domain.Always(),
			})
		}
		nodes = append(nodes, node)
	}

	return domain.NewGraph(questionID(src.Questions[0], 0), nodes,
		domain.WithSourceType("sheet"),
		domain.WithSourceMetadata(provenance(raw, "title")))
}

func questionID(q sheetQuestion, idx int) string {
	if q.ID != "" {
		return q.ID
	}
	return fmt.Sprintf("q%d", idx+1)
}

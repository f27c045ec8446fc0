package judge

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// FlowViolations compares the node-visit trace against the test case's
// required and forbidden node lists. The result is empty iff every required
// node appears and no forbidden node does.
func FlowViolations(tc domain.TestCase, trace []string) []string {
	visited := make(map[string]bool, len(trace))
	for _, id := range trace {
		visited[id] = true
	}

	var violations []string
	for _, id := range tc.RequiredNodes {
		if !visited[id] {
			violations = append(violations, fmt.Sprintf("required node %q was never visited", id))
		}
	}
	for _, id := range tc.ForbiddenNodes {
		if visited[id] {
			violations = append(violations, fmt.Sprintf("forbidden node %q was visited", id))
		}
	}
	return violations
}

package judge

import (
	"fmt"
	"reflect"

	"github.com/aretw0/parley/pkg/domain"
)

// ToolViolations compares recorded tool invocations against the test case's
// expectations. An expectation with arguments matches when some recorded
// call has the same name and every expected argument as a subset (extra
// recorded arguments are tolerated).
func ToolViolations(tc domain.TestCase, calls []domain.ToolCall) []string {
	var violations []string

	for _, want := range tc.ExpectedTools {
		if !matched(want, calls) {
			if len(want.Arguments) > 0 {
				violations = append(violations, fmt.Sprintf("expected tool %q with arguments %v was never called", want.Name, want.Arguments))
			} else {
				violations = append(violations, fmt.Sprintf("expected tool %q was never called", want.Name))
			}
		}
	}
	return violations
}

func matched(want domain.ExpectedTool, calls []domain.ToolCall) bool {
	for _, call := range calls {
		if call.Name != want.Name {
			continue
		}
		if argsSubset(want.Arguments, call.Arguments) {
			return true
		}
	}
	return false
}

func argsSubset(want, got map[string]any) bool {
	for k, v := range want {
		actual, ok := got[k]
		if !ok || !reflect.DeepEqual(actual, v) {
			return false
		}
	}
	return true
}

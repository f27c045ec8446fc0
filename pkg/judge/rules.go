package judge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// RuleViolations checks the test case's literal and regex rules against the
// assistant messages only. Every violated rule yields one verbatim
// violation string; an empty result means all rules hold. Rules are
// independent of metric scoring.
func RuleViolations(tc domain.TestCase, transcript domain.Transcript) []string {
	text := transcript.AssistantText()
	var violations []string

	for _, want := range tc.Includes {
		if !strings.Contains(text, want) {
			violations = append(violations, fmt.Sprintf("missing inclusion: %q", want))
		}
	}
	for _, banned := range tc.Excludes {
		if strings.Contains(text, banned) {
			violations = append(violations, fmt.Sprintf("excluded string present: %q", banned))
		}
	}
	for _, pattern := range tc.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			violations = append(violations, fmt.Sprintf("invalid pattern %q: %v", pattern, err))
			continue
		}
		if !re.MatchString(text) {
			violations = append(violations, fmt.Sprintf("pattern unmatched: %q", pattern))
		}
	}

	return violations
}

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/aretw0/parley/pkg/domain"
)

// printReport renders the run summary as markdown, styled with glamour when
// stdout is a terminal.
func printReport(run *domain.TestRun, suiteName string) {
	md := buildReport(run, suiteName)

	if termenv.NewOutput(os.Stdout).Profile == termenv.Ascii {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func buildReport(run *domain.TestRun, suiteName string) string {
	var sb strings.Builder

	title := "Test run"
	if suiteName != "" {
		title = suiteName
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Run `%s` finished in %s: **%d passed**, %d failed, %d errored.\n\n",
		run.ID, run.Duration.Round(timeUnit(run)), run.Passed, run.Failed, run.Errored)

	for _, res := range run.Results {
		fmt.Fprintf(&sb, "## %s %s\n\n", statusIcon(res.Status), res.Name)
		fmt.Fprintf(&sb, "- turns: %d, end reason: %s\n", res.Turns, res.EndReason)
		if len(res.NodeTrace) > 0 {
			fmt.Fprintf(&sb, "- path: %s\n", strings.Join(res.NodeTrace, " → "))
		}
		for _, m := range res.Metrics {
			fmt.Fprintf(&sb, "- metric %q: %.2f (threshold %.2f) %s\n",
				m.Metric, m.Score, m.Threshold, passLabel(m.Passed))
		}
		for _, v := range res.Violations {
			fmt.Fprintf(&sb, "- violation: %s\n", v)
		}
		if res.Error != "" {
			fmt.Fprintf(&sb, "- error: %s\n", res.Error)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func statusIcon(status string) string {
	switch status {
	case domain.StatusPass:
		return "✅"
	case domain.StatusError:
		return "💥"
	default:
		return "❌"
	}
}

func passLabel(passed bool) string {
	if passed {
		return "pass"
	}
	return "FAIL"
}

func timeUnit(run *domain.TestRun) time.Duration {
	if run.Duration > time.Second {
		return 10 * time.Millisecond
	}
	return time.Millisecond
}

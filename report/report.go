// Package report aggregates step outcomes into a summary and an exit code.
package report

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"

	"github.com/groundworklabs/groundwork/step"
)

// Report is the aggregated result of a plan run. It is built once from the
// ordered outcomes and then only read.
type Report struct {
	// Applied is how many steps were applied.
	Applied int
	// Skipped is how many steps were already satisfied.
	Skipped int
	// Failed is how many steps failed.
	Failed int
	// Outcomes are the per-step outcomes, in execution order.
	Outcomes []*step.Outcome
}

// NewReport summarizes the ordered outcomes of a plan run.
func NewReport(outcomes []*step.Outcome) *Report {
	report := &Report{
		Outcomes: outcomes,
	}
	for _, outcome := range outcomes {
		switch outcome.Result {
		case step.Applied:
			report.Applied++
		case step.SkippedAlreadySatisfied:
			report.Skipped++
		case step.Failed:
			report.Failed++
		default:
			panic(fmt.Errorf("invalid result %d", outcome.Result))
		}
	}
	return report
}

// Success returns whether no step failed.
func (r *Report) Success() bool {
	return r.Failed == 0
}

// ExitCode maps the report to a process exit code: 0 while the number of
// failed steps does not exceed maxFailures, 1 otherwise. A maxFailures of
// zero means any failure is fatal.
func (r *Report) ExitCode(maxFailures int) int {
	if r.Failed > maxFailures {
		return 1
	}
	return 0
}

func (r *Report) String() string {
	var buff bytes.Buffer

	for _, outcome := range r.Outcomes {
		fmt.Fprintf(&buff, "%s\n", outcome.String())
	}

	fmt.Fprintf(&buff,
		"%s, %s, %s\n",
		color.New(color.FgGreen).Sprintf("%d applied", r.Applied),
		color.New(color.FgCyan).Sprintf("%d skipped", r.Skipped),
		color.New(color.FgRed).Sprintf("%d failed", r.Failed),
	)

	return buff.String()
}

package step

import (
	"context"
	"fmt"

	"github.com/fornellas/slogxt/log"

	"github.com/groundworklabs/groundwork/diff"
	"github.com/groundworklabs/groundwork/host"
	"github.com/groundworklabs/groundwork/runner"
)

// PostconditionError means Apply succeeded but the re-probed state still does
// not satisfy the step.
type PostconditionError struct {
	StepName string
}

func (e *PostconditionError) Error() string {
	return fmt.Sprintf("%s: postcondition not met after apply", e.StepName)
}

// Execute runs a single step: probe, skip if already satisfied, otherwise
// apply and verify the postcondition with a re-probe. The re-probe is skipped
// under dry-run, as the host was deliberately left untouched.
// Execute never returns an error: failures are captured in the Outcome.
func Execute(ctx context.Context, stp Step, hst host.Host, rnr *runner.Runner) *Outcome {
	name := Name(stp)
	ctx, logger := log.MustWithGroupAttrs(ctx, "✏️ Step", "name", name)

	outcome := &Outcome{StepName: name}

	state, err := stp.Probe(ctx, hst)
	if err != nil {
		outcome.Result = Failed
		outcome.Err = fmt.Errorf("failed to probe: %w", err)
		return outcome
	}

	if stp.Satisfied(state) {
		logger.Debug("Already satisfied")
		outcome.Result = SkippedAlreadySatisfied
		return outcome
	}

	if err := stp.Apply(ctx, rnr, state); err != nil {
		outcome.Result = Failed
		outcome.Err = fmt.Errorf("failed to apply: %w", err)
		return outcome
	}

	if rnr.DryRun() {
		outcome.Result = Applied
		return outcome
	}

	afterState, err := stp.Probe(ctx, hst)
	if err != nil {
		outcome.Result = Failed
		outcome.Err = fmt.Errorf("failed to probe after apply: %w", err)
		return outcome
	}

	if !stp.Satisfied(afterState) {
		logger.Debug("State after apply", "diff", diff.DiffAsYaml(state, afterState).String())
		outcome.Result = Failed
		outcome.Err = &PostconditionError{StepName: name}
		return outcome
	}

	outcome.Result = Applied
	return outcome
}

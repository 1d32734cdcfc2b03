package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fornellas/slogxt/log"

	factsPkg "github.com/groundworklabs/groundwork/facts"
	planPkg "github.com/groundworklabs/groundwork/plan"
	reportPkg "github.com/groundworklabs/groundwork/report"
	runnerPkg "github.com/groundworklabs/groundwork/runner"
)

var policyValue = NewPolicyValue()

var maxFailures int
var defaultMaxFailures = 0

var timeout time.Duration
var defaultTimeout time.Duration = 0

func AddPlanFlags(cmd *cobra.Command) {
	cmd.Flags().VarP(
		policyValue, "policy", "p",
		"Override the failure policy declared by the plan",
	)

	cmd.Flags().IntVar(
		&maxFailures, "max-failures", defaultMaxFailures,
		"Maximum number of failed steps tolerated before a non-zero exit code; only meaningful with the continue policy",
	)

	cmd.Flags().DurationVar(
		&timeout, "timeout", defaultTimeout,
		"Timeout for the whole plan run; zero means no timeout",
	)
}

// exitThreshold returns the failed-step tolerance for the effective policy.
// Under fail-fast any failure is fatal and --max-failures is ignored.
func exitThreshold(policy planPkg.Policy) int {
	if policy == planPkg.FailFast {
		return 0
	}
	return maxFailures
}

// runPlan loads the plan from path and executes it against the host built
// from flags, returning the aggregated report and the effective policy.
func runPlan(ctx context.Context, path string, dryRun bool) (rep *reportPkg.Report, policy planPkg.Policy, retErr error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	hst, err := GetHost(ctx)
	if err != nil {
		return nil, policy, fmt.Errorf("failed to get host: %w", err)
	}
	defer func() {
		if closeErr := hst.Close(ctx); closeErr != nil {
			retErr = errors.Join(retErr, fmt.Errorf("failed to close host: %w", closeErr))
		}
	}()
	ctx, logger := log.MustWithAttrs(ctx, "host", fmt.Sprintf("%s => %s", hst.Type(), hst.String()))

	pln, err := planPkg.Load(ctx, path)
	if err != nil {
		return nil, policy, err
	}

	if override, ok := policyValue.Policy(); ok {
		pln.Policy = override
	}
	policy = pln.Policy
	logger.Debug("Policy", "policy", pln.Policy.String())

	hostFacts, err := factsPkg.Load(ctx, hst)
	if err != nil {
		return nil, policy, fmt.Errorf("failed to load host facts: %w", err)
	}

	rnr := runnerPkg.NewRunner(hst, dryRun)

	outcomes, err := pln.Run(ctx, hst, rnr, hostFacts)
	if err != nil {
		return nil, policy, err
	}

	return reportPkg.NewReport(outcomes), policy, nil
}

func init() {
	resetFlagsFns = append(resetFlagsFns, func() {
		policyValue.Reset()
		maxFailures = defaultMaxFailures
		timeout = defaultTimeout
	})
}

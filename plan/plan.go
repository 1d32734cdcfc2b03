// Package plan implements ordered execution of provisioning steps with a
// declared failure policy.
package plan

import (
	"context"
	"fmt"

	"github.com/fornellas/slogxt/log"

	"github.com/groundworklabs/groundwork/facts"
	"github.com/groundworklabs/groundwork/host"
	"github.com/groundworklabs/groundwork/runner"
	"github.com/groundworklabs/groundwork/step"
)

// Plan is an ordered sequence of steps executed as a unit. Steps execute
// strictly in declared order; later steps may assume earlier steps'
// postconditions.
type Plan struct {
	// Name identifies the plan.
	Name string `yaml:"name"`
	// Policy is what to do when a step fails; defaults to FailFast.
	Policy Policy `yaml:"policy,omitempty"`
	// Requires gates plan execution on host facts.
	Requires Requires `yaml:"requires,omitempty"`
	// Steps is the ordered step sequence.
	Steps step.Steps `yaml:"steps"`
}

func (p *Plan) Validate() error {
	if p.Name == "" {
		return &ConfigError{Message: "plan 'name' must be set"}
	}
	if len(p.Steps) == 0 {
		return &ConfigError{Message: "plan has no steps"}
	}
	if err := p.Steps.Validate(); err != nil {
		return &ConfigError{Message: err.Error()}
	}
	return nil
}

// Run executes the plan steps strictly in order, honoring the plan policy.
// Under FailFast execution stops at the first failed step and steps never
// run produce no outcome. Run only errors when execution could not start
// at all; step failures are captured in the outcomes.
func (p *Plan) Run(
	ctx context.Context, hst host.Host, rnr *runner.Runner, hostFacts *facts.Facts,
) ([]*step.Outcome, error) {
	ctx, logger := log.MustWithGroupAttrs(ctx, "📋 Plan", "name", p.Name)

	if err := p.Requires.Check(hostFacts); err != nil {
		return nil, err
	}

	outcomes := make([]*step.Outcome, 0, len(p.Steps))
	for _, stp := range p.Steps {
		outcome := step.Execute(ctx, stp, hst, rnr)
		logger.Info(outcome.String())
		outcomes = append(outcomes, outcome)
		if outcome.Result == step.Failed && p.Policy == FailFast {
			break
		}
	}

	return outcomes, nil
}

// ConfigError means required configuration is missing or invalid; it is fatal
// before any step runs.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Requires gates plan execution on host facts, checked once before the first
// step runs.
type Requires struct {
	// Root requires the effective user at the host to be root.
	Root bool `yaml:"root,omitempty"`
	// OS restricts execution to hosts whose os-release ID is listed.
	OS []string `yaml:"os,omitempty"`
}

func (r *Requires) Check(hostFacts *facts.Facts) error {
	if r.Root && !hostFacts.Root() {
		return &ConfigError{Message: "plan requires root, run it with a privileged host"}
	}
	if len(r.OS) > 0 {
		ok := false
		for _, id := range r.OS {
			if hostFacts.ID == id {
				ok = true
				break
			}
		}
		if !ok {
			return &ConfigError{Message: fmt.Sprintf(
				"plan requires OS %v, host is %#v", r.OS, hostFacts.ID,
			)}
		}
	}
	return nil
}

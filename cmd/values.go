package main

import (
	"fmt"
	"strings"

	planPkg "github.com/groundworklabs/groundwork/plan"
)

// PolicyValue is a pflag.Value for overriding the plan failure policy.
type PolicyValue struct {
	policyStr string
}

func NewPolicyValue() *PolicyValue {
	return &PolicyValue{}
}

func (p *PolicyValue) String() string {
	return p.policyStr
}

func (p *PolicyValue) Set(value string) error {
	if _, err := planPkg.NewPolicy(value); err != nil {
		return err
	}
	p.policyStr = value
	return nil
}

func (p *PolicyValue) Type() string {
	return fmt.Sprintf("[%s]", strings.Join([]string{
		planPkg.FailFast.String(),
		planPkg.ContinueCollectingErrors.String(),
	}, "|"))
}

// Policy returns the parsed policy; ok is false when the flag was not set.
func (p *PolicyValue) Policy() (planPkg.Policy, bool) {
	if p.policyStr == "" {
		return planPkg.FailFast, false
	}
	policy, err := planPkg.NewPolicy(p.policyStr)
	if err != nil {
		panic("bug: policy value not validated")
	}
	return policy, true
}

func (p *PolicyValue) Reset() {
	p.policyStr = ""
}

package plan

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Policy is what a plan does when a step fails.
type Policy int

const (
	// FailFast stops the plan at the first failed step.
	FailFast Policy = iota
	// ContinueCollectingErrors runs remaining steps regardless of failures
	// and reports all of them at the end.
	ContinueCollectingErrors
)

const failFastStr = "fail-fast"
const continueStr = "continue"

// NewPolicy parses a policy name, either "fail-fast" or "continue".
func NewPolicy(policyStr string) (Policy, error) {
	switch policyStr {
	case failFastStr:
		return FailFast, nil
	case continueStr:
		return ContinueCollectingErrors, nil
	}
	return FailFast, fmt.Errorf(
		"invalid policy %#v, must be %#v or %#v", policyStr, failFastStr, continueStr,
	)
}

func (p Policy) String() string {
	switch p {
	case FailFast:
		return failFastStr
	case ContinueCollectingErrors:
		return continueStr
	}
	panic(fmt.Errorf("invalid policy %d", p))
}

func (p Policy) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *Policy) UnmarshalYAML(node *yaml.Node) error {
	var policyStr string
	if err := node.Decode(&policyStr); err != nil {
		return err
	}
	policy, err := NewPolicy(policyStr)
	if err != nil {
		return fmt.Errorf("line %d: %s", node.Line, err.Error())
	}
	*p = policy
	return nil
}

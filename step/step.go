// Package step implements idempotent provisioning steps: named units that
// probe current host state, apply changes only when required, and verify
// their own postcondition.
package step

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/groundworklabs/groundwork/host"
	"github.com/groundworklabs/groundwork/runner"
)

// Step is a named, idempotent unit of provisioning work.
type Step interface {
	// ID uniquely identifies the step target (eg: a path, a package name).
	ID() string
	// Probe inspects the current host state for the step target. It must be
	// free of side effects and must report missing targets as absent state,
	// not as an error.
	Probe(ctx context.Context, hst host.Host) (*State, error)
	// Satisfied returns true when the probed state already matches the
	// desired state, meaning Apply can be skipped.
	Satisfied(state *State) bool
	// Apply mutates host state via the runner so that a subsequent Probe
	// satisfies the step. It receives the state probed immediately before.
	Apply(ctx context.Context, rnr *runner.Runner, state *State) error
	// Validate whether the step parameters are OK.
	Validate() error
}

// Name returns the full step name in TypeName:id format.
func Name(step Step) string {
	return fmt.Sprintf("%s:%s", TypeName(step), step.ID())
}

// TypeName returns the step type name (eg: Directory, APTPackage).
func TypeName(step Step) string {
	return reflect.TypeOf(step).Elem().Name()
}

var stepTypeMap = map[string]reflect.Type{}

func registerStep(step Step) {
	reflectType := reflect.TypeOf(step).Elem()
	stepTypeMap[reflectType.Name()] = reflectType
}

// GetStepByTypeName returns a new zero valued instance of the step type, or
// nil when the type name is not known.
func GetStepByTypeName(name string) Step {
	reflectType, ok := stepTypeMap[name]
	if !ok {
		return nil
	}
	return reflect.New(reflectType).Interface().(Step)
}

// GetStepTypeNames returns the names of all registered step types, sorted.
func GetStepTypeNames() []string {
	names := make([]string, 0, len(stepTypeMap))
	for name := range stepTypeMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func knownStepTypeNames() string {
	return strings.Join(GetStepTypeNames(), ", ")
}

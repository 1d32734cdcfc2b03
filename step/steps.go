package step

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Steps is an ordered sequence of steps, as declared in a plan file.
type Steps []Step

func (s Steps) Names() string {
	names := make([]string, len(s))
	for i, stp := range s {
		names[i] = Name(stp)
	}
	return strings.Join(names, ",")
}

func (s Steps) Validate() error {
	nameMap := map[string]bool{}
	for _, stp := range s {
		name := Name(stp)
		if _, ok := nameMap[name]; ok {
			return fmt.Errorf("duplicated step %s", name)
		}
		nameMap[name] = true

		if err := stp.Validate(); err != nil {
			return fmt.Errorf("step %s is invalid: %w", name, err)
		}
	}
	return nil
}

func (s Steps) MarshalYAML() (any, error) {
	type MarshalSchema []map[string]Step

	steps := make(MarshalSchema, len(s))

	for i, stp := range s {
		steps[i] = map[string]Step{
			TypeName(stp): stp,
		}
	}

	return steps, nil
}

func (s *Steps) UnmarshalYAML(node *yaml.Node) error {
	type UnmarshalSchema []map[string]yaml.Node

	steps := UnmarshalSchema{}

	if err := node.Decode(&steps); err != nil {
		return fmt.Errorf("line %d: %s", node.Line, err.Error())
	}

	*s = make(Steps, len(steps))

	for i, m := range steps {
		if len(m) != 1 {
			return errors.New("each step must have exactly one type name key")
		}
		for typeName, stepNode := range m {
			stp := GetStepByTypeName(typeName)
			if stp == nil {
				return fmt.Errorf(
					"line %d: unknown step type %#v, must be one of: %s",
					stepNode.Line, typeName, knownStepTypeNames(),
				)
			}
			if err := decodeStrict(&stepNode, stp); err != nil {
				return fmt.Errorf("line %d: %s", stepNode.Line, err.Error())
			}
			(*s)[i] = stp
		}
	}

	return nil
}

// decodeStrict decodes node into v, rejecting unknown keys. Node.Decode spawns
// a decoder without KnownFields, so the node is re-encoded and decoded again
// through a strict decoder.
func decodeStrict(node *yaml.Node, v any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(v)
}

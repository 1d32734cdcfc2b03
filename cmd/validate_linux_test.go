package main

import (
	"testing"
)

func TestValidate(t *testing.T) {
	t.Run("valid plan", func(t *testing.T) {
		planPath := writePlanFile(t, `
name: test
steps:
  - APTPackage:
      package: nginx
`)

		(&TestCmd{
			Args:                 []string{"validate", planPath},
			ExpectStderrContains: []string{"Validation successful"},
		}).Run(t)
	})

	t.Run("invalid plan", func(t *testing.T) {
		planPath := writePlanFile(t, `
name: test
steps:
  - APTPackage:
      package: "Not A Package!"
`)

		(&TestCmd{
			Args:                 []string{"validate", planPath},
			ExpectedCode:         1,
			ExpectStderrContains: []string{"invalid package name"},
		}).Run(t)
	})

	t.Run("unknown step type", func(t *testing.T) {
		planPath := writePlanFile(t, `
name: test
steps:
  - Bogus:
      package: nginx
`)

		(&TestCmd{
			Args:                 []string{"validate", planPath},
			ExpectedCode:         1,
			ExpectStderrContains: []string{"unknown step type"},
		}).Run(t)
	})
}

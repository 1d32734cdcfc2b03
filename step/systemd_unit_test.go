package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSystemdUnitValidate(t *testing.T) {
	require.NoError(t, (&SystemdUnit{Unit: "nginx.service"}).Validate())
	require.ErrorContains(t, (&SystemdUnit{}).Validate(), "'unit' must be set")
	require.ErrorContains(t, (&SystemdUnit{Unit: "bad unit"}).Validate(), "invalid unit name")
}

func TestUnitFileStateEnabled(t *testing.T) {
	for _, state := range []string{"enabled", "static", "generated", "alias", "indirect"} {
		require.True(t, unitFileStateEnabled(state), state)
	}
	for _, state := range []string{"disabled", "masked", ""} {
		require.False(t, unitFileStateEnabled(state), state)
	}
}

func TestSystemdUnitSatisfied(t *testing.T) {
	systemdUnit := &SystemdUnit{Unit: "nginx.service"}
	require.True(t, systemdUnit.Satisfied(&State{Present: true, Running: true, Enabled: true}))
	require.False(t, systemdUnit.Satisfied(&State{Present: true, Running: false, Enabled: true}))
	require.False(t, systemdUnit.Satisfied(&State{Present: true, Running: true, Enabled: false}))
	require.False(t, systemdUnit.Satisfied(Absent()))
}

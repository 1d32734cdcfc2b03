package step

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/groundworklabs/groundwork/host"
	"github.com/groundworklabs/groundwork/runner"
)

// SystemdUnit ensures a systemd unit is enabled and active. Applying enables
// the unit and does a reload-or-restart, so configuration changes from earlier
// steps take effect.
type SystemdUnit struct {
	// Name overrides the step id; defaults to Unit.
	Name string `yaml:"name,omitempty"`
	// Unit is the systemd unit name (eg: nginx.service).
	Unit string `yaml:"unit"`
}

func init() {
	registerStep(&SystemdUnit{})
}

func (s *SystemdUnit) ID() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Unit
}

func (s *SystemdUnit) Validate() error {
	if s.Unit == "" {
		return errors.New("'unit' must be set")
	}
	if strings.ContainsAny(s.Unit, " /") {
		return fmt.Errorf("invalid unit name: %#v", s.Unit)
	}
	return nil
}

func getSystemdUnitProperties(ctx context.Context, hst host.Host, unit string) (map[string]string, error) {
	cmd := host.Cmd{
		Path: "systemctl",
		Args: []string{"show", "--property=LoadState,ActiveState,UnitFileState", unit},
	}
	waitStatus, stdout, stderr, err := hst.Run(ctx, cmd)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !waitStatus.Success() {
		// shells report missing commands with exit code 127
		if waitStatus.Exited && waitStatus.ExitCode == 127 {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"failed to run %s: %s\nstdout:\n%s\nstderr:\n%s",
			cmd, waitStatus.String(), stdout, stderr,
		)
	}
	properties := map[string]string{}
	for _, line := range strings.Split(stdout, "\n") {
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("unexpected output from %s, expected key=value, got %#v", cmd, line)
		}
		properties[key] = value
	}
	return properties, nil
}

// https://github.com/systemd/systemd/blob/master/src/systemctl/systemctl-is-enabled.c
func unitFileStateEnabled(unitFileState string) bool {
	switch unitFileState {
	case "enabled", "static", "generated", "alias", "indirect":
		return true
	}
	return false
}

func (s *SystemdUnit) Probe(ctx context.Context, hst host.Host) (*State, error) {
	properties, err := getSystemdUnitProperties(ctx, hst, s.Unit)
	if err != nil {
		return nil, err
	}
	// systemctl itself missing reads as unit absent, not as a probe failure
	if properties == nil {
		return Absent(), nil
	}
	if properties["LoadState"] != "loaded" {
		return Absent(), nil
	}
	return &State{
		Present: true,
		Running: properties["ActiveState"] == "active",
		Enabled: unitFileStateEnabled(properties["UnitFileState"]),
	}, nil
}

func (s *SystemdUnit) Satisfied(state *State) bool {
	return state.Present && state.Running && state.Enabled
}

func (s *SystemdUnit) Apply(ctx context.Context, rnr *runner.Runner, state *State) error {
	if !state.Present {
		return fmt.Errorf("unit %#v not found by systemd", s.Unit)
	}
	if !state.Enabled {
		cmd := host.Cmd{
			Path: "systemctl",
			Args: []string{"enable", s.Unit},
		}
		if _, _, err := rnr.Run(ctx, cmd); err != nil {
			return err
		}
	}
	cmd := host.Cmd{
		Path: "systemctl",
		Args: []string{"reload-or-restart", s.Unit},
	}
	_, _, err := rnr.Run(ctx, cmd)
	return err
}

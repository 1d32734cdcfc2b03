package step

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/groundworklabs/groundwork/host"
	"github.com/groundworklabs/groundwork/runner"
)

// APTPackage ensures a package is installed via apt-get, non-interactively.
type APTPackage struct {
	// Name overrides the step id; defaults to Package.
	Name string `yaml:"name,omitempty"`
	// Package is the package name.
	Package string `yaml:"package"`
	// Version pins an exact package version; empty accepts any installed
	// version.
	Version string `yaml:"version,omitempty"`
}

func init() {
	registerStep(&APTPackage{})
}

var validDpkgPackageRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9+\-.]{1,}$`)
var validDpkgVersionRegexp = regexp.MustCompile(`^(?:([0-9]+):)?(([0-9][A-Za-z0-9.+~]*)|([0-9][A-Za-z0-9.+~-]*-[A-Za-z0-9+.~]+))$`)

var dpkgStatusRegexp = regexp.MustCompile(`^Status: (.+)$`)
var dpkgVersionRegexp = regexp.MustCompile(`^Version: (.+)$`)

func (a *APTPackage) ID() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Package
}

func (a *APTPackage) Validate() error {
	if a.Package == "" {
		return errors.New("'package' must be set")
	}
	if !validDpkgPackageRegexp.MatchString(a.Package) {
		return fmt.Errorf("invalid package name: %#v", a.Package)
	}
	if a.Version != "" && !validDpkgVersionRegexp.MatchString(a.Version) {
		return fmt.Errorf("invalid package version: %#v", a.Version)
	}
	return nil
}

func (a *APTPackage) Probe(ctx context.Context, hst host.Host) (*State, error) {
	cmd := host.Cmd{
		Path: "dpkg",
		Args: []string{"-s", a.Package},
	}
	waitStatus, stdout, stderr, err := hst.Run(ctx, cmd)
	if err != nil {
		// dpkg itself missing reads as package absent, not as a probe failure
		if errors.Is(err, exec.ErrNotFound) {
			return Absent(), nil
		}
		return nil, err
	}
	if !waitStatus.Success() {
		// dpkg exits 1 both for not installed packages and for unknown ones;
		// shells report missing commands with exit code 127
		if waitStatus.Exited && (waitStatus.ExitCode == 1 || waitStatus.ExitCode == 127) {
			return Absent(), nil
		}
		return nil, fmt.Errorf(
			"failed to run %s: %s\nstdout:\n%s\nstderr:\n%s",
			cmd, waitStatus.String(), stdout, stderr,
		)
	}

	var status, version string
	for _, line := range strings.Split(stdout, "\n") {
		if matches := dpkgStatusRegexp.FindStringSubmatch(line); len(matches) == 2 {
			status = matches[1]
		}
		if matches := dpkgVersionRegexp.FindStringSubmatch(line); len(matches) == 2 {
			version = matches[1]
		}
	}
	if status == "" {
		return nil, fmt.Errorf(
			"failed to parse %s output:\nstdout:\n%s\nstderr:\n%s",
			cmd, stdout, stderr,
		)
	}

	if status != "install ok installed" {
		return Absent(), nil
	}

	return &State{
		Present: true,
		Version: version,
	}, nil
}

func (a *APTPackage) Satisfied(state *State) bool {
	if !state.Present {
		return false
	}
	if a.Version != "" && state.Version != a.Version {
		return false
	}
	return true
}

func (a *APTPackage) Apply(ctx context.Context, rnr *runner.Runner, state *State) error {
	pkg := a.Package
	if a.Version != "" {
		pkg = fmt.Sprintf("%s=%s", a.Package, a.Version)
	}
	cmd := host.Cmd{
		Path: "apt-get",
		Args: []string{"install", "--yes", "--no-install-recommends", pkg},
		Env: []string{
			"DEBIAN_FRONTEND=noninteractive",
			"LANG=en_US.UTF-8",
			"PATH=/usr/sbin:/usr/bin:/sbin:/bin",
		},
	}
	_, _, err := rnr.Run(ctx, cmd)
	return err
}

// Package facts gathers host information required to gate plan execution.
package facts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fornellas/slogxt/log"

	"github.com/groundworklabs/groundwork/host"
)

// Facts holds immutable host information, gathered once before a plan runs.
type Facts struct {
	// ID is the os-release ID field (eg: ubuntu, debian).
	ID string `yaml:"id"`
	// VersionID is the os-release VERSION_ID field (eg: 24.04).
	VersionID string `yaml:"version_id"`
	// VersionCodename is the os-release VERSION_CODENAME field (eg: noble).
	VersionCodename string `yaml:"version_codename"`
	// PrettyName is the os-release PRETTY_NAME field.
	PrettyName string `yaml:"pretty_name"`
	// Arch is the machine hardware name as reported by uname -m.
	Arch string `yaml:"arch"`
	// Euid is the effective user id at the host.
	Euid uint64 `yaml:"euid"`
}

// Root returns whether the effective user at the host is root.
func (f *Facts) Root() bool {
	return f.Euid == 0
}

func (f *Facts) String() string {
	name := f.PrettyName
	if name == "" {
		name = "unknown OS"
	}
	return fmt.Sprintf("%s (%s, euid=%d)", name, f.Arch, f.Euid)
}

func parseOsRelease(contents string) map[string]string {
	osRelease := map[string]string{}
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"'`)
		osRelease[key] = value
	}
	return osRelease
}

// Load gathers Facts from the host. A missing /etc/os-release leaves the OS
// fields empty rather than failing, so plans without OS requirements still run
// on hosts that lack it.
func Load(ctx context.Context, hst host.Host) (*Facts, error) {
	ctx, logger := log.MustWithGroupAttrs(ctx, "🔍 Facts", "host", hst.String())

	facts := &Facts{}

	osReleaseBytes, err := hst.ReadFile(ctx, "/etc/os-release")
	if err == nil {
		osRelease := parseOsRelease(string(osReleaseBytes))
		facts.ID = osRelease["ID"]
		facts.VersionID = osRelease["VERSION_ID"]
		facts.VersionCodename = osRelease["VERSION_CODENAME"]
		facts.PrettyName = osRelease["PRETTY_NAME"]
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read /etc/os-release: %w", err)
	}

	cmd := host.Cmd{Path: "uname", Args: []string{"-m"}}
	waitStatus, stdout, stderr, err := hst.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", cmd, err)
	}
	if !waitStatus.Success() {
		return nil, fmt.Errorf(
			"failed to run %s: %s\nstdout:\n%s\nstderr:\n%s",
			cmd, waitStatus.String(), stdout, stderr,
		)
	}
	facts.Arch = strings.TrimSpace(stdout)

	euid, err := hst.Geteuid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get euid: %w", err)
	}
	facts.Euid = euid

	logger.Debug("Loaded", "facts", facts.String())

	return facts, nil
}

package host

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// SudoWrapper implements Host by having all commands run via sudo on an underlying
// BaseHost.
type SudoWrapper struct {
	cmdHost
	Host BaseHost
}

func (s *SudoWrapper) Run(ctx context.Context, cmd Cmd) (WaitStatus, string, string, error) {
	cmd.Args = append([]string{"--non-interactive", "--", cmd.Path}, cmd.Args...)
	cmd.Path = "sudo"
	return s.Host.Run(ctx, cmd)
}

func (s *SudoWrapper) String() string {
	return s.Host.String()
}

func (s *SudoWrapper) Type() string {
	return fmt.Sprintf("sudo+%s", s.Host.Type())
}

func (s *SudoWrapper) Close(ctx context.Context) error {
	return s.Host.Close(ctx)
}

// NewSudoWrapper creates a new SudoWrapper for host.
// Sudo may ask for a password once, interactively, during construction; after
// that, cached credentials must allow password-less execution, as no step may
// ever prompt mid-plan.
func NewSudoWrapper(ctx context.Context, host BaseHost) (*SudoWrapper, error) {
	sudoHost := &SudoWrapper{
		Host: host,
	}
	sudoHost.cmdHost.BaseHost = sudoHost

	// Sudo MAY ask for password once; only possible with a terminal on the local
	// machine.
	if _, isLocal := host.(Local); isLocal {
		execCmd := exec.CommandContext(ctx, "sudo", "-v")
		execCmd.Stdin = os.Stdin
		execCmd.Stdout = os.Stdout
		execCmd.Stderr = os.Stderr
		if err := execCmd.Run(); err != nil {
			return nil, fmt.Errorf("failed to validate sudo credentials: %w", err)
		}
	}

	// Sudo must NOT ask for password from here on.
	cmd := Cmd{Path: "true"}
	waitStatus, stdout, stderr, err := sudoHost.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !waitStatus.Success() {
		return nil, fmt.Errorf(
			"sudo requires a password and no cached credentials are available, run 'sudo -v' first: %s\nstdout:\n%s\nstderr:\n%s",
			waitStatus.String(), stdout, stderr,
		)
	}

	return sudoHost, nil
}

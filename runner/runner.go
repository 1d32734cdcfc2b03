// Package runner executes system-mutating actions on behalf of steps.
//
// It is the single component allowed real-world side effects: every mutation a
// step applies goes through a Runner, and the dry-run decision is taken here and
// nowhere else. Probes read host state directly, so under dry-run they keep
// observing the unmodified system.
package runner

import (
	"context"
	"fmt"
	"io/fs"

	"al.essio.dev/pkg/shellescape"
	"github.com/fornellas/slogxt/log"

	hostPkg "github.com/groundworklabs/groundwork/host"
)

// ExecutionError is returned when a command run by the Runner fails.
type ExecutionError struct {
	Cmd        hostPkg.Cmd
	WaitStatus hostPkg.WaitStatus
	Stdout     string
	Stderr     string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf(
		"failed to run %s: %s\nstdout:\n%s\nstderr:\n%s",
		e.Cmd, e.WaitStatus.String(), e.Stdout, e.Stderr,
	)
}

// Runner runs mutating actions against a host, or only logs them under dry-run.
// It never retries: failures always surface to the caller, which decides whether
// they are fatal to the plan.
type Runner struct {
	host   hostPkg.Host
	dryRun bool
}

func NewRunner(host hostPkg.Host, dryRun bool) *Runner {
	return &Runner{
		host:   host,
		dryRun: dryRun,
	}
}

// DryRun reports whether the runner only logs actions.
func (r *Runner) DryRun() bool {
	return r.dryRun
}

func (r *Runner) quotedCmd(cmd hostPkg.Cmd) string {
	args := []string{shellescape.Quote(cmd.Path)}
	for _, arg := range cmd.Args {
		args = append(args, shellescape.Quote(arg))
	}
	str := args[0]
	for _, arg := range args[1:] {
		str += " " + arg
	}
	return str
}

// Run runs cmd at the host and returns its buffered output.
// A command that completes with a non-success status yields an *ExecutionError.
func (r *Runner) Run(ctx context.Context, cmd hostPkg.Cmd) (string, string, error) {
	ctx, logger := log.MustWithGroupAttrs(ctx, "⚙️ Run", "cmd", r.quotedCmd(cmd))
	if r.dryRun {
		logger.Info("Dry run: not running command")
		return "", "", nil
	}
	waitStatus, stdout, stderr, err := r.host.Run(ctx, cmd)
	if err != nil {
		return stdout, stderr, fmt.Errorf("failed to run %s: %w", cmd, err)
	}
	if !waitStatus.Success() {
		return stdout, stderr, &ExecutionError{
			Cmd:        cmd,
			WaitStatus: waitStatus,
			Stdout:     stdout,
			Stderr:     stderr,
		}
	}
	logger.Debug("Success", "stdout", stdout, "stderr", stderr)
	return stdout, stderr, nil
}

// WriteFile writes data to the named file at the host.
func (r *Runner) WriteFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error {
	ctx, logger := log.MustWithGroupAttrs(ctx, "⚙️ WriteFile", "name", name, "perm", perm)
	if r.dryRun {
		logger.Info("Dry run: not writing file")
		return nil
	}
	logger.Debug("Writing")
	return r.host.WriteFile(ctx, name, data, perm)
}

// Mkdir creates the named directory and any missing parents at the host.
func (r *Runner) Mkdir(ctx context.Context, name string, perm fs.FileMode) error {
	ctx, logger := log.MustWithGroupAttrs(ctx, "⚙️ Mkdir", "name", name, "perm", perm)
	if r.dryRun {
		logger.Info("Dry run: not creating directory")
		return nil
	}
	logger.Debug("Creating")
	return r.host.Mkdir(ctx, name, perm)
}

// Symlink creates newname as a symbolic link to oldname at the host.
func (r *Runner) Symlink(ctx context.Context, oldname, newname string) error {
	ctx, logger := log.MustWithGroupAttrs(ctx, "⚙️ Symlink", "oldname", oldname, "newname", newname)
	if r.dryRun {
		logger.Info("Dry run: not creating symlink")
		return nil
	}
	logger.Debug("Creating")
	return r.host.Symlink(ctx, oldname, newname)
}

// Remove removes the named file or directory at the host.
func (r *Runner) Remove(ctx context.Context, name string) error {
	ctx, logger := log.MustWithGroupAttrs(ctx, "⚙️ Remove", "name", name)
	if r.dryRun {
		logger.Info("Dry run: not removing")
		return nil
	}
	logger.Debug("Removing")
	return r.host.Remove(ctx, name)
}

// Chmod changes the mode of the named file at the host.
func (r *Runner) Chmod(ctx context.Context, name string, mode fs.FileMode) error {
	ctx, logger := log.MustWithGroupAttrs(ctx, "⚙️ Chmod", "name", name, "mode", mode)
	if r.dryRun {
		logger.Info("Dry run: not changing mode")
		return nil
	}
	logger.Debug("Changing mode")
	return r.host.Chmod(ctx, name, mode)
}

package host

import (
	"context"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// cmdHost implements the file inspection / mutation methods of the Host interface
// on top of a BaseHost.Run, by spawning POSIX commands. Host implementations that
// can only run commands (ssh, sudo, docker) embed this struct and implement the
// remaining BaseHost methods.
type cmdHost struct {
	BaseHost BaseHost
}

func (h cmdHost) runError(cmd Cmd, waitStatus WaitStatus, stdout, stderr string) error {
	if strings.Contains(stderr, "Permission denied") ||
		strings.Contains(stderr, "Operation not permitted") {
		return &fs.PathError{Op: cmd.Path, Path: strings.Join(cmd.Args, " "), Err: fs.ErrPermission}
	}
	if strings.Contains(stderr, "No such file or directory") ||
		strings.Contains(stderr, "Directory nonexistent") {
		return &fs.PathError{Op: cmd.Path, Path: strings.Join(cmd.Args, " "), Err: fs.ErrNotExist}
	}
	return fmt.Errorf(
		"failed to run %s: %s\nstdout:\n%s\nstderr:\n%s",
		cmd, waitStatus.String(), stdout, stderr,
	)
}

func (h cmdHost) Geteuid(ctx context.Context) (uint64, error) {
	cmd := Cmd{Path: "id", Args: []string{"-u"}}
	waitStatus, stdout, stderr, err := h.BaseHost.Run(ctx, cmd)
	if err != nil {
		return 0, err
	}
	if !waitStatus.Success() {
		return 0, h.runError(cmd, waitStatus, stdout, stderr)
	}
	return strconv.ParseUint(strings.TrimSpace(stdout), 10, 64)
}

func (h cmdHost) Lstat(ctx context.Context, name string) (*FileInfo, error) {
	cmd := Cmd{Path: "stat", Args: []string{"-c", "%f %u %g %s", name}}
	waitStatus, stdout, stderr, err := h.BaseHost.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !waitStatus.Success() {
		return nil, h.runError(cmd, waitStatus, stdout, stderr)
	}

	tokens := strings.Fields(strings.TrimSpace(stdout))
	if len(tokens) != 4 {
		return nil, fmt.Errorf("unable to parse stat output: %#v", stdout)
	}
	statMode, err := strconv.ParseUint(tokens[0], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("unable to parse stat mode: %#v", tokens[0])
	}
	uid, err := strconv.ParseUint(tokens[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("unable to parse stat uid: %#v", tokens[1])
	}
	gid, err := strconv.ParseUint(tokens[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("unable to parse stat gid: %#v", tokens[2])
	}
	size, err := strconv.ParseInt(tokens[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unable to parse stat size: %#v", tokens[3])
	}

	return &FileInfo{
		Mode: fileModeFromStatMode(uint32(statMode)),
		Size: size,
		Uid:  uint32(uid),
		Gid:  uint32(gid),
	}, nil
}

func (h cmdHost) ReadFile(ctx context.Context, name string) ([]byte, error) {
	cmd := Cmd{Path: "cat", Args: []string{name}}
	waitStatus, stdout, stderr, err := h.BaseHost.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !waitStatus.Success() {
		return nil, h.runError(cmd, waitStatus, stdout, stderr)
	}
	return []byte(stdout), nil
}

func (h cmdHost) Readlink(ctx context.Context, name string) (string, error) {
	cmd := Cmd{Path: "readlink", Args: []string{name}}
	waitStatus, stdout, stderr, err := h.BaseHost.Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if !waitStatus.Success() {
		return "", h.runError(cmd, waitStatus, stdout, stderr)
	}
	return strings.TrimSuffix(stdout, "\n"), nil
}

func (h cmdHost) WriteFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error {
	cmd := Cmd{
		Path:  "sh",
		Args:  []string{"-c", fmt.Sprintf("cat > %s", shellescape.Quote(name))},
		Stdin: data,
	}
	waitStatus, stdout, stderr, err := h.BaseHost.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if !waitStatus.Success() {
		return h.runError(cmd, waitStatus, stdout, stderr)
	}
	return h.Chmod(ctx, name, perm)
}

func (h cmdHost) Mkdir(ctx context.Context, name string, perm fs.FileMode) error {
	cmd := Cmd{
		Path: "mkdir",
		Args: []string{"-p", "-m", fmt.Sprintf("%o", perm.Perm()), name},
	}
	waitStatus, stdout, stderr, err := h.BaseHost.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if !waitStatus.Success() {
		return h.runError(cmd, waitStatus, stdout, stderr)
	}
	return nil
}

func (h cmdHost) Symlink(ctx context.Context, oldname, newname string) error {
	cmd := Cmd{Path: "ln", Args: []string{"-s", oldname, newname}}
	waitStatus, stdout, stderr, err := h.BaseHost.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if !waitStatus.Success() {
		if strings.Contains(stderr, "File exists") {
			return &fs.PathError{Op: "symlink", Path: newname, Err: fs.ErrExist}
		}
		return h.runError(cmd, waitStatus, stdout, stderr)
	}
	return nil
}

func (h cmdHost) Remove(ctx context.Context, name string) error {
	cmd := Cmd{Path: "rm", Args: []string{"-r", "-f", name}}
	waitStatus, stdout, stderr, err := h.BaseHost.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if !waitStatus.Success() {
		return h.runError(cmd, waitStatus, stdout, stderr)
	}
	return nil
}

func (h cmdHost) Chmod(ctx context.Context, name string, mode fs.FileMode) error {
	cmd := Cmd{Path: "chmod", Args: []string{fmt.Sprintf("%o", mode.Perm()), name}}
	waitStatus, stdout, stderr, err := h.BaseHost.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if !waitStatus.Success() {
		return h.runError(cmd, waitStatus, stdout, stderr)
	}
	return nil
}

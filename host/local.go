package host

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Local interacts with the local machine running the code.
type Local struct{}

func (l Local) Run(ctx context.Context, cmd Cmd) (WaitStatus, string, string, error) {
	execCmd := exec.CommandContext(ctx, cmd.Path, cmd.Args...)

	if len(cmd.Env) == 0 {
		cmd.Env = []string{"LANG=en_US.UTF-8"}
		for _, value := range os.Environ() {
			if strings.HasPrefix(value, "PATH=") {
				cmd.Env = append(cmd.Env, value)
				break
			}
		}
	}
	execCmd.Env = cmd.Env

	if cmd.Dir == "" {
		cmd.Dir = "/tmp"
	}
	execCmd.Dir = cmd.Dir

	execCmd.Stdin = bytes.NewReader(cmd.Stdin)
	var stdoutBuffer, stderrBuffer bytes.Buffer
	execCmd.Stdout = &stdoutBuffer
	execCmd.Stderr = &stderrBuffer

	execCmd.Cancel = func() error {
		if err := execCmd.Process.Signal(syscall.SIGTERM); err != nil {
			return err
		}
		time.Sleep(3 * time.Second)
		// process may have exited by now, should be safe-ish to ignore errors here
		execCmd.Process.Signal(syscall.SIGKILL)
		return nil
	}

	err := execCmd.Run()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return WaitStatus{}, stdoutBuffer.String(), stderrBuffer.String(), err
		}
	}

	waitStatus := WaitStatus{}
	waitStatus.ExitCode = execCmd.ProcessState.ExitCode()
	waitStatus.Exited = execCmd.ProcessState.Exited()
	signal := execCmd.ProcessState.Sys().(syscall.WaitStatus).Signal()
	if signal > 0 {
		waitStatus.Signal = signal.String()
	}
	return waitStatus, stdoutBuffer.String(), stderrBuffer.String(), nil
}

func (l Local) Geteuid(ctx context.Context) (uint64, error) {
	return uint64(os.Geteuid()), nil
}

func (l Local) Lstat(ctx context.Context, name string) (*FileInfo, error) {
	var stat_t unix.Stat_t
	if err := unix.Lstat(name, &stat_t); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil, &fs.PathError{Op: "lstat", Path: name, Err: fs.ErrNotExist}
		}
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: err}
	}
	return &FileInfo{
		Mode: fileModeFromStatMode(uint32(stat_t.Mode)),
		Size: stat_t.Size,
		Uid:  stat_t.Uid,
		Gid:  stat_t.Gid,
	}, nil
}

func (l Local) ReadFile(ctx context.Context, name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (l Local) Readlink(ctx context.Context, name string) (string, error) {
	return os.Readlink(name)
}

func (l Local) WriteFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error {
	if err := os.WriteFile(name, data, perm); err != nil {
		return err
	}
	// os.WriteFile mode is umask affected
	return os.Chmod(name, perm)
}

func (l Local) Mkdir(ctx context.Context, name string, perm fs.FileMode) error {
	if err := os.MkdirAll(name, perm); err != nil {
		return err
	}
	// os.MkdirAll mode is umask affected
	return os.Chmod(name, perm)
}

func (l Local) Symlink(ctx context.Context, oldname, newname string) error {
	return os.Symlink(oldname, newname)
}

func (l Local) Remove(ctx context.Context, name string) error {
	return os.Remove(name)
}

func (l Local) Chmod(ctx context.Context, name string, mode fs.FileMode) error {
	return os.Chmod(name, mode)
}

func (l Local) String() string {
	return "localhost"
}

func (l Local) Type() string {
	return "localhost"
}

func (l Local) Close(ctx context.Context) error {
	return nil
}

// fileModeFromStatMode converts a stat(2) st_mode to a fs.FileMode, keeping both
// the type and permission bits.
func fileModeFromStatMode(statMode uint32) fs.FileMode {
	mode := fs.FileMode(statMode & 0o777)
	switch statMode & unix.S_IFMT {
	case unix.S_IFBLK:
		mode |= fs.ModeDevice
	case unix.S_IFCHR:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case unix.S_IFDIR:
		mode |= fs.ModeDir
	case unix.S_IFIFO:
		mode |= fs.ModeNamedPipe
	case unix.S_IFLNK:
		mode |= fs.ModeSymlink
	case unix.S_IFSOCK:
		mode |= fs.ModeSocket
	}
	if statMode&unix.S_ISGID != 0 {
		mode |= fs.ModeSetgid
	}
	if statMode&unix.S_ISUID != 0 {
		mode |= fs.ModeSetuid
	}
	if statMode&unix.S_ISVTX != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}

package host

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
)

// Cmd represents a command to be run at a host.
type Cmd struct {
	// Path is the path of the command to run.
	//
	// This is the only field that must be set to a non-zero
	// value.
	Path string

	// Args holds command line arguments, not including the command itself.
	Args []string

	// Env specifies the environment of the process.
	// Each entry is of the form "key=value".
	// If Env is nil, the process uses LANG=en_US.UTF-8 and a default PATH.
	Env []string

	// Dir specifies the working directory of the command.
	// If Dir is the empty string, the command runs in /tmp.
	Dir string

	// Stdin specifies the process's standard input.
	// If Stdin is nil, the process reads from an empty buffer.
	Stdin []byte
}

func (c Cmd) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return fmt.Sprintf("%s %s", c.Path, strings.Join(c.Args, " "))
}

// WaitStatus is the result of waiting for a finished command.
type WaitStatus struct {
	// ExitCode is the exit code of the exited process, or -1 if the process was
	// terminated by a signal.
	ExitCode int
	// Exited reports whether the program has exited by calling exit, false if it
	// was terminated by a signal.
	Exited bool
	// Signal describes a process signal.
	Signal string
}

// Success reports whether the program exited successfully, such as with exit status 0.
func (ws WaitStatus) Success() bool {
	return ws.Exited && ws.ExitCode == 0
}

func (ws WaitStatus) String() string {
	var str string
	if ws.Exited {
		str = fmt.Sprintf("process exited with status %d", ws.ExitCode)
	} else {
		str = "process did not exit"
	}
	if ws.Signal != "" {
		str += fmt.Sprintf(" from signal %s", ws.Signal)
	}
	return str
}

// FileInfo describes a file at a host, as returned by Host.Lstat.
type FileInfo struct {
	// Mode holds both the file type and permission bits.
	Mode fs.FileMode
	Size int64
	Uid  uint32
	Gid  uint32
}

// IsDir reports whether the file is a directory.
func (fi *FileInfo) IsDir() bool {
	return fi.Mode.IsDir()
}

// IsSymlink reports whether the file is a symbolic link.
func (fi *FileInfo) IsSymlink() bool {
	return fi.Mode&fs.ModeSymlink != 0
}

// BaseHost defines a minimalist interface for interfacing with a host.
type BaseHost interface {
	// Run starts the specified command and waits for it to complete.
	Run(ctx context.Context, cmd Cmd) (WaitStatus, string, string, error)

	// A string representation of the host which uniquely identifies it, eg its FQDN.
	String() string

	// String representation for the type of connection used, eg: ssh, localhost.
	Type() string

	// Close any pending connections (if applicable).
	Close(ctx context.Context) error
}

// Host defines a complete interface for interacting with a host.
// All inspection methods must report missing targets with an error wrapping
// fs.ErrNotExist, so callers can tell "absent" apart from I/O failures.
type Host interface {
	BaseHost

	// Geteuid returns the effective user id at the host.
	Geteuid(ctx context.Context) (uint64, error)

	// Lstat works similar to os.Lstat.
	Lstat(ctx context.Context, name string) (*FileInfo, error)

	// ReadFile works similar to os.ReadFile.
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// Readlink works similar to os.Readlink.
	Readlink(ctx context.Context, name string) (string, error)

	// WriteFile works similar to os.WriteFile.
	WriteFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error

	// Mkdir creates the named directory and any missing parents, similar to
	// os.MkdirAll.
	Mkdir(ctx context.Context, name string, perm fs.FileMode) error

	// Symlink works similar to os.Symlink.
	Symlink(ctx context.Context, oldname, newname string) error

	// Remove works similar to os.Remove.
	Remove(ctx context.Context, name string) error

	// Chmod works similar to os.Chmod.
	Chmod(ctx context.Context, name string, mode fs.FileMode) error
}

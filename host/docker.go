package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"al.essio.dev/pkg/shellescape"
)

// Docker interacts with a running Docker container via the local docker client.
// The connection string format is '[<name|uid>[:<group|gid>]@]<container>'.
type Docker struct {
	cmdHost
	ConnectionString string
}

// NewDocker creates a new Docker host from given connection string.
func NewDocker(ctx context.Context, connectionString string) (*Docker, error) {
	dockerHost := &Docker{
		ConnectionString: connectionString,
	}
	dockerHost.cmdHost.BaseHost = dockerHost
	if _, _, err := dockerHost.userContainer(); err != nil {
		return nil, err
	}
	return dockerHost, nil
}

func (d *Docker) userContainer() (string, string, error) {
	usr := "0:0"
	container := d.ConnectionString
	parts := strings.Split(d.ConnectionString, "@")
	switch len(parts) {
	case 1:
	case 2:
		usr = parts[0]
		container = parts[1]
	default:
		return "", "", fmt.Errorf("invalid connection string format: %s", d.ConnectionString)
	}
	return usr, container, nil
}

func (d *Docker) Run(ctx context.Context, cmd Cmd) (WaitStatus, string, string, error) {
	usr, container, err := d.userContainer()
	if err != nil {
		return WaitStatus{}, "", "", err
	}

	if cmd.Dir == "" {
		cmd.Dir = "/tmp"
	}
	if !filepath.IsAbs(cmd.Dir) {
		return WaitStatus{}, "", "", &fs.PathError{
			Op:   "Run",
			Path: cmd.Dir,
			Err:  errors.New("path must be absolute"),
		}
	}
	if len(cmd.Env) == 0 {
		cmd.Env = []string{"LANG=en_US.UTF-8", "PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"}
	}

	args := []string{"exec", "--interactive"}
	args = append(args, "--user", usr)
	args = append(args, "--workdir", cmd.Dir)
	args = append(args, container)

	cmdStr := []string{"env", "-i"}
	for _, env := range cmd.Env {
		cmdStr = append(cmdStr, shellescape.Quote(env))
	}
	cmdStr = append(cmdStr, shellescape.Quote(cmd.Path))
	for _, arg := range cmd.Args {
		cmdStr = append(cmdStr, shellescape.Quote(arg))
	}
	args = append(args, "sh", "-c", strings.Join(cmdStr, " "))

	execCmd := exec.CommandContext(ctx, "docker", args...)
	execCmd.Stdin = bytes.NewReader(cmd.Stdin)
	var stdoutBuffer, stderrBuffer bytes.Buffer
	execCmd.Stdout = &stdoutBuffer
	execCmd.Stderr = &stderrBuffer

	err = execCmd.Run()
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

func (d *Docker) String() string {
	return d.ConnectionString
}

func (d *Docker) Type() string {
	return "docker"
}

func (d *Docker) Close(ctx context.Context) error {
	return nil
}

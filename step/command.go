package step

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/groundworklabs/groundwork/host"
	"github.com/groundworklabs/groundwork/runner"
)

// Command runs an arbitrary command, guarded by the path it creates: the
// command only runs while Creates is absent. This is what keeps the step
// idempotent, so Creates is required.
type Command struct {
	// Name overrides the step id; defaults to Path.
	Name string `yaml:"name,omitempty"`
	// Path is the command path.
	Path string `yaml:"path"`
	// Args are the command arguments.
	Args []string `yaml:"args,omitempty"`
	// Env is the environment, eg: "FOO=bar"; when empty, a minimal default
	// environment is used.
	Env []string `yaml:"env,omitempty"`
	// Dir is the working directory.
	Dir string `yaml:"dir,omitempty"`
	// Creates is an absolute path the command creates; its presence marks the
	// step satisfied.
	Creates string `yaml:"creates"`
}

func init() {
	registerStep(&Command{})
}

func (c *Command) ID() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Path
}

func (c *Command) Validate() error {
	if c.Path == "" {
		return errors.New("'path' must be set")
	}
	if c.Creates == "" {
		return errors.New("'creates' must be set")
	}
	if !filepath.IsAbs(c.Creates) {
		return fmt.Errorf("'creates' must be absolute: %#v", c.Creates)
	}
	return nil
}

func (c *Command) Probe(ctx context.Context, hst host.Host) (*State, error) {
	fileInfo, err := hst.Lstat(ctx, c.Creates)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Absent(), nil
		}
		return nil, err
	}
	return &State{
		Present: true,
		Dir:     fileInfo.IsDir(),
		Symlink: fileInfo.IsSymlink(),
	}, nil
}

func (c *Command) Satisfied(state *State) bool {
	return state.Present
}

func (c *Command) Apply(ctx context.Context, rnr *runner.Runner, state *State) error {
	cmd := host.Cmd{
		Path: c.Path,
		Args: c.Args,
		Env:  c.Env,
		Dir:  c.Dir,
	}
	_, _, err := rnr.Run(ctx, cmd)
	return err
}

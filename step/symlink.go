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

// Symlink ensures a symbolic link exists at the host, pointing at Target.
// An existing file or link at Path pointing elsewhere is replaced.
type Symlink struct {
	// Name overrides the step id; defaults to Path.
	Name string `yaml:"name,omitempty"`
	// Path is the absolute path of the symbolic link.
	Path string `yaml:"path"`
	// Target is the path the link points at.
	Target string `yaml:"target"`
}

func init() {
	registerStep(&Symlink{})
}

func (s *Symlink) ID() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Path
}

func (s *Symlink) Validate() error {
	if s.Path == "" {
		return errors.New("'path' must be set")
	}
	if !filepath.IsAbs(s.Path) {
		return fmt.Errorf("'path' must be absolute: %#v", s.Path)
	}
	if s.Path != filepath.Clean(s.Path) {
		return fmt.Errorf("'path' must be clean: %#v", s.Path)
	}
	if s.Target == "" {
		return errors.New("'target' must be set")
	}
	return nil
}

func (s *Symlink) Probe(ctx context.Context, hst host.Host) (*State, error) {
	fileInfo, err := hst.Lstat(ctx, s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Absent(), nil
		}
		return nil, err
	}
	state := &State{
		Present: true,
		Dir:     fileInfo.IsDir(),
		Symlink: fileInfo.IsSymlink(),
	}
	if state.Symlink {
		linkTarget, err := hst.Readlink(ctx, s.Path)
		if err != nil {
			return nil, err
		}
		state.LinkTarget = linkTarget
	}
	return state, nil
}

func (s *Symlink) Satisfied(state *State) bool {
	return state.Present && state.Symlink && state.LinkTarget == s.Target
}

func (s *Symlink) Apply(ctx context.Context, rnr *runner.Runner, state *State) error {
	if state.Present {
		if state.Dir {
			return fmt.Errorf("%#v exists and is a directory", s.Path)
		}
		if err := rnr.Remove(ctx, s.Path); err != nil {
			return err
		}
	}
	return rnr.Symlink(ctx, s.Target, s.Path)
}

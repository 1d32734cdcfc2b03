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

// DefaultDirectoryMode is used when a Directory step declares no mode.
const DefaultDirectoryMode fs.FileMode = 0o755

// Directory ensures a directory exists at the host, creating missing parents.
type Directory struct {
	// Name overrides the step id; defaults to Path.
	Name string `yaml:"name,omitempty"`
	// Path is the absolute path of the directory.
	Path string `yaml:"path"`
	// Mode is the permission bits to enforce; zero means DefaultDirectoryMode
	// on creation and no enforcement on existing directories.
	Mode fs.FileMode `yaml:"mode,omitempty"`
}

func init() {
	registerStep(&Directory{})
}

func (d *Directory) ID() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Path
}

func (d *Directory) Validate() error {
	if d.Path == "" {
		return errors.New("'path' must be set")
	}
	if !filepath.IsAbs(d.Path) {
		return fmt.Errorf("'path' must be absolute: %#v", d.Path)
	}
	if d.Path != filepath.Clean(d.Path) {
		return fmt.Errorf("'path' must be clean: %#v", d.Path)
	}
	if d.Mode&^fs.ModePerm != 0 {
		return fmt.Errorf("'mode' must only set permission bits: %#v", d.Mode.String())
	}
	return nil
}

func (d *Directory) Probe(ctx context.Context, hst host.Host) (*State, error) {
	fileInfo, err := hst.Lstat(ctx, d.Path)
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
		Mode:    fileInfo.Mode & fs.ModePerm,
	}, nil
}

func (d *Directory) Satisfied(state *State) bool {
	if !state.Present || !state.Dir {
		return false
	}
	if d.Mode != 0 && state.Mode != d.Mode {
		return false
	}
	return true
}

func (d *Directory) Apply(ctx context.Context, rnr *runner.Runner, state *State) error {
	if state.Present {
		if !state.Dir {
			return fmt.Errorf("%#v exists and is not a directory", d.Path)
		}
		return rnr.Chmod(ctx, d.Path, d.Mode)
	}
	mode := d.Mode
	if mode == 0 {
		mode = DefaultDirectoryMode
	}
	return rnr.Mkdir(ctx, d.Path, mode)
}

package step

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fornellas/slogxt/log"

	"github.com/groundworklabs/groundwork/diff"
	"github.com/groundworklabs/groundwork/host"
	"github.com/groundworklabs/groundwork/runner"
)

// DefaultFileContentMode is used when a FileContent step declares no mode and
// the file is being created.
const DefaultFileContentMode fs.FileMode = 0o644

// FileContent ensures file contents at the host. It has two modes:
// with Content set, the whole file is ensured to have exactly those contents;
// with Line set, the file is ensured to contain that exact line, either
// replacing the first line matching Match or appending it at the end.
type FileContent struct {
	// Name overrides the step id; defaults to Path.
	Name string `yaml:"name,omitempty"`
	// Path is the absolute path of the file.
	Path string `yaml:"path"`
	// Content is the full desired file contents, empty string meaning an
	// empty file. Mutually exclusive with Line.
	Content *string `yaml:"content,omitempty"`
	// Line is a single line the file must contain. Mutually exclusive with
	// Content.
	Line string `yaml:"line,omitempty"`
	// Match is a regular expression locating the line to replace with Line.
	// When unset, or when no line matches, Line is appended.
	Match string `yaml:"match,omitempty"`
	// Mode is the permission bits to enforce; zero means
	// DefaultFileContentMode on creation and no enforcement on existing files.
	Mode fs.FileMode `yaml:"mode,omitempty"`
}

func init() {
	registerStep(&FileContent{})
}

func (f *FileContent) ID() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Path
}

func (f *FileContent) Validate() error {
	if f.Path == "" {
		return errors.New("'path' must be set")
	}
	if !filepath.IsAbs(f.Path) {
		return fmt.Errorf("'path' must be absolute: %#v", f.Path)
	}
	if f.Path != filepath.Clean(f.Path) {
		return fmt.Errorf("'path' must be clean: %#v", f.Path)
	}
	if f.Content != nil && f.Line != "" {
		return errors.New("'content' and 'line' can not both be set")
	}
	if f.Content == nil && f.Line == "" {
		return errors.New("either 'content' or 'line' must be set")
	}
	if f.Line != "" && strings.Contains(f.Line, "\n") {
		return errors.New("'line' must not contain newlines")
	}
	if f.Match != "" {
		if f.Line == "" {
			return errors.New("'match' requires 'line'")
		}
		if _, err := regexp.Compile(f.Match); err != nil {
			return fmt.Errorf("'match' is not a valid regexp: %w", err)
		}
	}
	if f.Mode&^fs.ModePerm != 0 {
		return fmt.Errorf("'mode' must only set permission bits: %#v", f.Mode.String())
	}
	return nil
}

func (f *FileContent) Probe(ctx context.Context, hst host.Host) (*State, error) {
	fileInfo, err := hst.Lstat(ctx, f.Path)
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
		Mode:    fileInfo.Mode & fs.ModePerm,
	}
	if state.Dir || state.Symlink {
		return state, nil
	}
	contentBytes, err := hst.ReadFile(ctx, f.Path)
	if err != nil {
		return nil, err
	}
	state.Content = string(contentBytes)
	return state, nil
}

func (f *FileContent) Satisfied(state *State) bool {
	if !state.Present || state.Dir || state.Symlink {
		return false
	}
	if f.Mode != 0 && state.Mode != f.Mode {
		return false
	}
	if f.Content != nil {
		return state.Content == *f.Content
	}
	return f.lineSatisfied(state.Content)
}

func (f *FileContent) lineSatisfied(content string) bool {
	for line := range strings.Lines(content) {
		if strings.TrimSuffix(line, "\n") == f.Line {
			return true
		}
	}
	return false
}

// newContent computes the desired file contents from the current ones.
func (f *FileContent) newContent(content string) string {
	if f.Content != nil {
		return *f.Content
	}

	if f.Match != "" {
		matchRegexp := regexp.MustCompile(f.Match)
		lines := strings.Split(content, "\n")
		matched := false
		for i, line := range lines {
			if matchRegexp.MatchString(line) {
				lines[i] = f.Line
				matched = true
				break
			}
		}
		if matched {
			return strings.Join(lines, "\n")
		}
	}

	if content == "" {
		return f.Line + "\n"
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + f.Line + "\n"
}

func (f *FileContent) Apply(ctx context.Context, rnr *runner.Runner, state *State) error {
	logger := log.MustLogger(ctx)

	if state.Present && (state.Dir || state.Symlink) {
		return fmt.Errorf("%#v exists and is not a regular file", f.Path)
	}

	newContent := f.newContent(state.Content)

	chunks := diff.DiffText(state.Content, newContent)
	if chunks.HasChanges() {
		logger.Debug("Content changes", "diff", chunks.String())
	}

	mode := f.Mode
	if mode == 0 {
		if state.Present {
			mode = state.Mode
		} else {
			mode = DefaultFileContentMode
		}
	}

	return rnr.WriteFile(ctx, f.Path, []byte(newContent), mode)
}

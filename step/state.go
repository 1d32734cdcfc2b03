package step

import (
	"io/fs"
)

// State is a snapshot of the current host state for a step target. It is
// recomputed on every probe and never persisted. Which fields are meaningful
// depends on the step type that produced it.
type State struct {
	// Present is whether the target exists at all (file, package, unit).
	Present bool `yaml:"present"`
	// Dir is whether a present filesystem target is a directory.
	Dir bool `yaml:"dir,omitempty"`
	// Symlink is whether a present filesystem target is a symbolic link.
	Symlink bool `yaml:"symlink,omitempty"`
	// Mode is the filesystem permission bits of a present target.
	Mode fs.FileMode `yaml:"mode,omitempty"`
	// Content is the contents of a present regular file.
	Content string `yaml:"content,omitempty"`
	// LinkTarget is the target of a present symbolic link.
	LinkTarget string `yaml:"link_target,omitempty"`
	// Version is the installed version of a present package.
	Version string `yaml:"version,omitempty"`
	// Running is whether a present service unit is active.
	Running bool `yaml:"running,omitempty"`
	// Enabled is whether a present service unit is enabled to start on boot.
	Enabled bool `yaml:"enabled,omitempty"`
}

// Absent is the state of a missing target.
func Absent() *State {
	return &State{}
}

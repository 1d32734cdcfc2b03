package step

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fornellas/slogxt/log"
	"github.com/stretchr/testify/require"

	"github.com/groundworklabs/groundwork/host"
	"github.com/groundworklabs/groundwork/runner"
)

func TestExecuteDirectory(t *testing.T) {
	ctx := log.WithTestLogger(context.Background())
	hst := host.Local{}
	rnr := runner.NewRunner(hst, false)

	directory := &Directory{
		Path: filepath.Join(t.TempDir(), "modules-available"),
		Mode: 0o755,
	}

	outcome := Execute(ctx, directory, hst, rnr)
	require.NoError(t, outcome.Err)
	require.Equal(t, Applied, outcome.Result)

	outcome = Execute(ctx, directory, hst, rnr)
	require.NoError(t, outcome.Err)
	require.Equal(t, SkippedAlreadySatisfied, outcome.Result)
}

func TestExecuteDryRun(t *testing.T) {
	ctx := log.WithTestLogger(context.Background())
	hst := host.Local{}
	rnr := runner.NewRunner(hst, true)

	directory := &Directory{
		Path: filepath.Join(t.TempDir(), "modules-available"),
	}

	before, err := directory.Probe(ctx, hst)
	require.NoError(t, err)
	require.False(t, before.Present)

	outcome := Execute(ctx, directory, hst, rnr)
	require.NoError(t, outcome.Err)
	require.Equal(t, Applied, outcome.Result)

	after, err := directory.Probe(ctx, hst)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestExecuteFileContent(t *testing.T) {
	ctx := log.WithTestLogger(context.Background())
	hst := host.Local{}
	rnr := runner.NewRunner(hst, false)

	path := filepath.Join(t.TempDir(), "sysctl.conf")

	t.Run("create by appending", func(t *testing.T) {
		fileContent := &FileContent{Path: path, Line: "vm.swappiness=10"}

		outcome := Execute(ctx, fileContent, hst, rnr)
		require.NoError(t, outcome.Err)
		require.Equal(t, Applied, outcome.Result)

		contentBytes, err := hst.ReadFile(ctx, path)
		require.NoError(t, err)
		require.Equal(t, "vm.swappiness=10\n", string(contentBytes))

		outcome = Execute(ctx, fileContent, hst, rnr)
		require.NoError(t, outcome.Err)
		require.Equal(t, SkippedAlreadySatisfied, outcome.Result)
	})

	t.Run("replace matched line", func(t *testing.T) {
		fileContent := &FileContent{
			Path:  path,
			Line:  "vm.swappiness=1",
			Match: `^vm\.swappiness=`,
		}

		outcome := Execute(ctx, fileContent, hst, rnr)
		require.NoError(t, outcome.Err)
		require.Equal(t, Applied, outcome.Result)

		contentBytes, err := hst.ReadFile(ctx, path)
		require.NoError(t, err)
		require.Equal(t, "vm.swappiness=1\n", string(contentBytes))
	})
}

func TestExecuteSymlink(t *testing.T) {
	ctx := log.WithTestLogger(context.Background())
	hst := host.Local{}
	rnr := runner.NewRunner(hst, false)

	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "sites-enabled")

	symlink := &Symlink{Path: path, Target: filepath.Join(tempDir, "sites-available")}

	outcome := Execute(ctx, symlink, hst, rnr)
	require.NoError(t, outcome.Err)
	require.Equal(t, Applied, outcome.Result)

	outcome = Execute(ctx, symlink, hst, rnr)
	require.NoError(t, outcome.Err)
	require.Equal(t, SkippedAlreadySatisfied, outcome.Result)

	t.Run("replaces wrong target", func(t *testing.T) {
		newTarget := &Symlink{Path: path, Target: filepath.Join(tempDir, "other")}

		outcome := Execute(ctx, newTarget, hst, rnr)
		require.NoError(t, outcome.Err)
		require.Equal(t, Applied, outcome.Result)

		linkTarget, err := hst.Readlink(ctx, path)
		require.NoError(t, err)
		require.Equal(t, newTarget.Target, linkTarget)
	})
}

func TestExecuteCommand(t *testing.T) {
	ctx := log.WithTestLogger(context.Background())
	hst := host.Local{}
	rnr := runner.NewRunner(hst, false)

	creates := filepath.Join(t.TempDir(), "bootstrap.done")

	command := &Command{
		Path:    "touch",
		Args:    []string{creates},
		Creates: creates,
	}

	outcome := Execute(ctx, command, hst, rnr)
	require.NoError(t, outcome.Err)
	require.Equal(t, Applied, outcome.Result)

	outcome = Execute(ctx, command, hst, rnr)
	require.NoError(t, outcome.Err)
	require.Equal(t, SkippedAlreadySatisfied, outcome.Result)
}

func TestExecutePostconditionNotMet(t *testing.T) {
	ctx := log.WithTestLogger(context.Background())
	hst := host.Local{}
	rnr := runner.NewRunner(hst, false)

	// true exits successfully without creating the expected path
	command := &Command{
		Path:    "true",
		Creates: filepath.Join(t.TempDir(), "never-created"),
	}

	outcome := Execute(ctx, command, hst, rnr)
	require.Equal(t, Failed, outcome.Result)
	var postconditionErr *PostconditionError
	require.ErrorAs(t, outcome.Err, &postconditionErr)
}

func TestExecuteApplyFailure(t *testing.T) {
	ctx := log.WithTestLogger(context.Background())
	hst := host.Local{}
	rnr := runner.NewRunner(hst, false)

	command := &Command{
		Path:    "false",
		Creates: filepath.Join(t.TempDir(), "never-created"),
	}

	outcome := Execute(ctx, command, hst, rnr)
	require.Equal(t, Failed, outcome.Result)
	var executionErr *runner.ExecutionError
	require.ErrorAs(t, outcome.Err, &executionErr)
}

package diff

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestDiffText(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	t.Run("equal", func(t *testing.T) {
		chunks := DiffText("a\nb\nc", "a\nb\nc")
		require.False(t, chunks.HasChanges())
		require.Equal(t, "a\nb\nc\n", chunks.String())
	})

	t.Run("changed", func(t *testing.T) {
		chunks := DiffText("a\nb\nc", "a\nx\nc")
		require.True(t, chunks.HasChanges())
		require.Equal(t, "a\n-b\n+x\nc\n", chunks.String())
	})

	t.Run("added", func(t *testing.T) {
		chunks := DiffText("a", "a\nb")
		require.True(t, chunks.HasChanges())
	})
}

func TestDiffAsYaml(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	type testType struct {
		Name  string
		Value int
	}

	t.Run("equal", func(t *testing.T) {
		chunks := DiffAsYaml(
			testType{Name: "foo", Value: 1},
			testType{Name: "foo", Value: 1},
		)
		require.False(t, chunks.HasChanges())
	})

	t.Run("changed", func(t *testing.T) {
		chunks := DiffAsYaml(
			testType{Name: "foo", Value: 1},
			testType{Name: "foo", Value: 2},
		)
		require.True(t, chunks.HasChanges())
		require.Contains(t, chunks.String(), "-value: 1\n")
		require.Contains(t, chunks.String(), "+value: 2\n")
	})
}

package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

func TestFileContentValidate(t *testing.T) {
	type TestCase struct {
		Title       string
		FileContent FileContent
		Error       string
	}

	for _, tc := range []TestCase{
		{
			Title:       "valid content",
			FileContent: FileContent{Path: "/etc/motd", Content: stringPtr("hello\n")},
		},
		{
			Title:       "valid empty content",
			FileContent: FileContent{Path: "/etc/motd", Content: stringPtr("")},
		},
		{
			Title:       "valid line",
			FileContent: FileContent{Path: "/etc/sysctl.conf", Line: "vm.swappiness=10"},
		},
		{
			Title: "valid line with match",
			FileContent: FileContent{
				Path:  "/etc/sysctl.conf",
				Line:  "vm.swappiness=10",
				Match: `^vm\.swappiness=`,
			},
		},
		{
			Title:       "missing path",
			FileContent: FileContent{Content: stringPtr("hello\n")},
			Error:       "'path' must be set",
		},
		{
			Title:       "both content and line",
			FileContent: FileContent{Path: "/etc/motd", Content: stringPtr("a"), Line: "b"},
			Error:       "can not both be set",
		},
		{
			Title:       "neither content nor line",
			FileContent: FileContent{Path: "/etc/motd"},
			Error:       "either 'content' or 'line' must be set",
		},
		{
			Title:       "line with newline",
			FileContent: FileContent{Path: "/etc/motd", Line: "a\nb"},
			Error:       "must not contain newlines",
		},
		{
			Title:       "match without line",
			FileContent: FileContent{Path: "/etc/motd", Content: stringPtr("a"), Match: "^a"},
			Error:       "'match' requires 'line'",
		},
		{
			Title:       "invalid match regexp",
			FileContent: FileContent{Path: "/etc/motd", Line: "a", Match: "["},
			Error:       "not a valid regexp",
		},
	} {
		t.Run(tc.Title, func(t *testing.T) {
			err := tc.FileContent.Validate()
			if tc.Error == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tc.Error)
			}
		})
	}
}

func TestFileContentSatisfied(t *testing.T) {
	t.Run("content", func(t *testing.T) {
		fileContent := &FileContent{Path: "/etc/motd", Content: stringPtr("hello\n")}
		require.True(t, fileContent.Satisfied(&State{Present: true, Content: "hello\n"}))
		require.False(t, fileContent.Satisfied(&State{Present: true, Content: "bye\n"}))
		require.False(t, fileContent.Satisfied(Absent()))
	})

	t.Run("line", func(t *testing.T) {
		fileContent := &FileContent{Path: "/etc/sysctl.conf", Line: "vm.swappiness=10"}
		require.True(t, fileContent.Satisfied(
			&State{Present: true, Content: "fs.file-max=1000\nvm.swappiness=10\n"},
		))
		require.False(t, fileContent.Satisfied(
			&State{Present: true, Content: "vm.swappiness=60\n"},
		))
		require.False(t, fileContent.Satisfied(
			&State{Present: true, Content: "# vm.swappiness=10 is a substring\n"},
		))
	})

	t.Run("empty content", func(t *testing.T) {
		fileContent := &FileContent{Path: "/etc/motd", Content: stringPtr("")}
		require.True(t, fileContent.Satisfied(&State{Present: true, Content: ""}))
		require.False(t, fileContent.Satisfied(&State{Present: true, Content: "hello\n"}))
		require.False(t, fileContent.Satisfied(Absent()))
	})

	t.Run("directory at path", func(t *testing.T) {
		fileContent := &FileContent{Path: "/etc", Content: stringPtr("hello\n")}
		require.False(t, fileContent.Satisfied(&State{Present: true, Dir: true}))
	})
}

func TestFileContentNewContent(t *testing.T) {
	t.Run("full content", func(t *testing.T) {
		fileContent := &FileContent{Path: "/etc/motd", Content: stringPtr("hello\n")}
		require.Equal(t, "hello\n", fileContent.newContent("anything"))
	})

	t.Run("empty content truncates", func(t *testing.T) {
		fileContent := &FileContent{Path: "/etc/motd", Content: stringPtr("")}
		require.Equal(t, "", fileContent.newContent("anything"))
	})

	t.Run("append to empty", func(t *testing.T) {
		fileContent := &FileContent{Path: "/etc/sysctl.conf", Line: "vm.swappiness=10"}
		require.Equal(t, "vm.swappiness=10\n", fileContent.newContent(""))
	})

	t.Run("append preserves existing", func(t *testing.T) {
		fileContent := &FileContent{Path: "/etc/sysctl.conf", Line: "vm.swappiness=10"}
		require.Equal(
			t,
			"fs.file-max=1000\nvm.swappiness=10\n",
			fileContent.newContent("fs.file-max=1000\n"),
		)
	})

	t.Run("append adds missing trailing newline", func(t *testing.T) {
		fileContent := &FileContent{Path: "/etc/sysctl.conf", Line: "vm.swappiness=10"}
		require.Equal(
			t,
			"fs.file-max=1000\nvm.swappiness=10\n",
			fileContent.newContent("fs.file-max=1000"),
		)
	})

	t.Run("match replaces line", func(t *testing.T) {
		fileContent := &FileContent{
			Path:  "/etc/sysctl.conf",
			Line:  "vm.swappiness=10",
			Match: `^vm\.swappiness=`,
		}
		require.Equal(
			t,
			"fs.file-max=1000\nvm.swappiness=10\n",
			fileContent.newContent("fs.file-max=1000\nvm.swappiness=60\n"),
		)
	})

	t.Run("match without matching line appends", func(t *testing.T) {
		fileContent := &FileContent{
			Path:  "/etc/sysctl.conf",
			Line:  "vm.swappiness=10",
			Match: `^vm\.swappiness=`,
		}
		require.Equal(
			t,
			"fs.file-max=1000\nvm.swappiness=10\n",
			fileContent.newContent("fs.file-max=1000\n"),
		)
	})
}

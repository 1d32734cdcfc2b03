package step

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStepsUnmarshalYAML(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var steps Steps
		err := yaml.Unmarshal([]byte(`
- Directory:
    path: /etc/nginx/modules-available
    mode: 0755
- APTPackage:
    package: nginx
- FileContent:
    path: /etc/nginx/nginx.conf
    line: "worker_processes auto;"
- SystemdUnit:
    unit: nginx.service
- Command:
    name: bootstrap
    path: /usr/local/bin/bootstrap.sh
    creates: /var/lib/bootstrap.done
`), &steps)
		require.NoError(t, err)
		require.Len(t, steps, 5)
		require.NoError(t, steps.Validate())

		directory, ok := steps[0].(*Directory)
		require.True(t, ok)
		require.Equal(t, "/etc/nginx/modules-available", directory.Path)
		require.Equal(t, fs.FileMode(0o755), directory.Mode)

		command, ok := steps[4].(*Command)
		require.True(t, ok)
		require.Equal(t, "bootstrap", command.ID())

		require.Equal(
			t,
			"Directory:/etc/nginx/modules-available,"+
				"APTPackage:nginx,"+
				"FileContent:/etc/nginx/nginx.conf,"+
				"SystemdUnit:nginx.service,"+
				"Command:bootstrap",
			steps.Names(),
		)
	})

	t.Run("empty content", func(t *testing.T) {
		var steps Steps
		err := yaml.Unmarshal([]byte(`
- FileContent:
    path: /etc/motd
    content: ""
`), &steps)
		require.NoError(t, err)
		require.Len(t, steps, 1)
		fileContent, ok := steps[0].(*FileContent)
		require.True(t, ok)
		require.NotNil(t, fileContent.Content)
		require.Equal(t, "", *fileContent.Content)
		require.NoError(t, steps.Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		var steps Steps
		err := yaml.Unmarshal([]byte(`
- Bogus:
    path: /etc
`), &steps)
		require.ErrorContains(t, err, "unknown step type")
	})

	t.Run("unknown field", func(t *testing.T) {
		var steps Steps
		err := yaml.Unmarshal([]byte(`
- Directory:
    path: /etc
    bogus: true
`), &steps)
		require.ErrorContains(t, err, "bogus")
	})
}

func TestStepsMarshalYAML(t *testing.T) {
	steps := Steps{
		&Directory{Path: "/etc/nginx"},
		&APTPackage{Package: "nginx"},
	}

	bs, err := yaml.Marshal(steps)
	require.NoError(t, err)

	var roundTrip Steps
	require.NoError(t, yaml.Unmarshal(bs, &roundTrip))
	require.Equal(t, steps, roundTrip)
}

func TestStepsValidate(t *testing.T) {
	t.Run("duplicated step", func(t *testing.T) {
		steps := Steps{
			&Directory{Path: "/etc/nginx"},
			&Directory{Path: "/etc/nginx"},
		}
		require.ErrorContains(t, steps.Validate(), "duplicated step")
	})

	t.Run("invalid step", func(t *testing.T) {
		steps := Steps{
			&Directory{Path: "relative/path"},
		}
		require.ErrorContains(t, steps.Validate(), "must be absolute")
	})
}

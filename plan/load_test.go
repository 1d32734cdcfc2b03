package plan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fornellas/slogxt/log"
	"github.com/stretchr/testify/require"

	"github.com/groundworklabs/groundwork/step"
)

func writePlanFile(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	ctx := log.WithTestLogger(context.Background())

	t.Run("valid", func(t *testing.T) {
		path := writePlanFile(t, `
name: nginx-base
policy: continue
requires:
  root: true
  os: [ubuntu, debian]
steps:
  - Directory:
      path: /etc/nginx/modules-available
      mode: 0755
  - APTPackage:
      package: nginx
  - SystemdUnit:
      unit: nginx.service
`)
		pln, err := Load(ctx, path)
		require.NoError(t, err)
		require.Equal(t, "nginx-base", pln.Name)
		require.Equal(t, ContinueCollectingErrors, pln.Policy)
		require.True(t, pln.Requires.Root)
		require.Equal(t, []string{"ubuntu", "debian"}, pln.Requires.OS)
		require.Len(t, pln.Steps, 3)
		_, ok := pln.Steps[1].(*step.APTPackage)
		require.True(t, ok)
	})

	t.Run("defaults to fail-fast", func(t *testing.T) {
		path := writePlanFile(t, `
name: minimal
steps:
  - Directory:
      path: /etc/nginx
`)
		pln, err := Load(ctx, path)
		require.NoError(t, err)
		require.Equal(t, FailFast, pln.Policy)
	})

	t.Run("invalid policy", func(t *testing.T) {
		path := writePlanFile(t, `
name: bad
policy: sometimes
steps:
  - Directory:
      path: /etc/nginx
`)
		_, err := Load(ctx, path)
		require.ErrorContains(t, err, "invalid policy")
	})

	t.Run("unknown plan field", func(t *testing.T) {
		path := writePlanFile(t, `
name: bad
bogus: true
steps:
  - Directory:
      path: /etc/nginx
`)
		_, err := Load(ctx, path)
		var configErr *ConfigError
		require.ErrorAs(t, err, &configErr)
	})

	t.Run("unknown step field", func(t *testing.T) {
		path := writePlanFile(t, `
name: bad
steps:
  - Directory:
      path: /etc/nginx
      bogus_field: true
`)
		_, err := Load(ctx, path)
		var configErr *ConfigError
		require.ErrorAs(t, err, &configErr)
		require.ErrorContains(t, err, "bogus_field")
	})

	t.Run("empty file", func(t *testing.T) {
		path := writePlanFile(t, "")
		_, err := Load(ctx, path)
		require.ErrorContains(t, err, "empty plan file")
	})

	t.Run("invalid step", func(t *testing.T) {
		path := writePlanFile(t, `
name: bad
steps:
  - Directory:
      path: relative
`)
		_, err := Load(ctx, path)
		require.ErrorContains(t, err, "must be absolute")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

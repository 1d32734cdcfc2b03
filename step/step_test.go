package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetStepByTypeName(t *testing.T) {
	for _, typeName := range []string{
		"APTPackage",
		"Command",
		"Directory",
		"FileContent",
		"Symlink",
		"SystemdUnit",
	} {
		stp := GetStepByTypeName(typeName)
		require.NotNil(t, stp, typeName)
		require.Equal(t, typeName, TypeName(stp))
	}

	require.Nil(t, GetStepByTypeName("Bogus"))
}

func TestName(t *testing.T) {
	require.Equal(t, "Directory:/etc/nginx", Name(&Directory{Path: "/etc/nginx"}))
	require.Equal(t, "Directory:foo", Name(&Directory{Name: "foo", Path: "/etc/nginx"}))
	require.Equal(t, "APTPackage:nginx", Name(&APTPackage{Package: "nginx"}))
}

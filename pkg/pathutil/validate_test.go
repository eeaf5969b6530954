package pathutil_test

import (
	"path/filepath"
	"testing"

	"github.com/jvs-project/reportstore/pkg/errclass"
	"github.com/jvs-project/reportstore/pkg/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHost_Valid(t *testing.T) {
	valid := []string{"web01", "db-1.example.com", "node_7", "...", ".hidden", "a..b", "ünïcode"}
	for _, host := range valid {
		assert.NoError(t, pathutil.ValidateHost(host), "should accept: %s", host)
	}
}

func TestValidateHost_Dots(t *testing.T) {
	for _, host := range []string{".", ".."} {
		err := pathutil.ValidateHost(host)
		require.ErrorIs(t, err, errclass.ErrInvalidIdentifier, "should reject: %s", host)
	}
}

func TestValidateHost_Separators(t *testing.T) {
	invalid := []string{"a/b", `a\b`, "/etc", "../etc", `..\windows`, "web01/", "/"}
	for _, host := range invalid {
		err := pathutil.ValidateHost(host)
		require.ErrorIs(t, err, errclass.ErrInvalidIdentifier, "should reject: %s", host)
	}
}

func TestValidateHost_Empty(t *testing.T) {
	err := pathutil.ValidateHost("")
	require.ErrorIs(t, err, errclass.ErrInvalidIdentifier)
}

func TestValidateHost_MessageQuotesName(t *testing.T) {
	err := pathutil.ValidateHost("a/b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a/b"`)
}

func TestHostDir(t *testing.T) {
	root := t.TempDir()
	dir, err := pathutil.HostDir(root, "web01")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "web01"), dir)

	_, err = pathutil.HostDir(root, "..")
	require.ErrorIs(t, err, errclass.ErrInvalidIdentifier)
}

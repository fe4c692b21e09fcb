package upgradeCommand

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgm/internal/enlistment"
	"vgm/internal/mounter"
)

// fakeMountTool succeeds for any root except ones containing "bad", and
// appends every invocation to a log file.
func fakeMountTool(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	tool := filepath.Join(dir, "vgmfs")
	logPath := filepath.Join(dir, "invocations.log")
	body := `#!/bin/sh
echo "$@" >> "` + logPath + `"
case "$2" in
  *bad*) echo "projection driver refused $2" >&2; exit 1 ;;
esac
exit 0
`
	require.NoError(t, os.WriteFile(tool, []byte(body), 0o755))
	return tool, logPath
}

func TestUnmountAllTreatsEachEnlistmentIndependently(t *testing.T) {
	tool, logPath := fakeMountTool(t)
	roots := []string{"/work/good-one", "/work/bad-one", "/work/good-two"}
	checker := NewEnlistmentChecker(roots, mounter.New(tool))

	res := checker.UnmountAll(context.Background())
	require.True(t, res.Failed())
	assert.Contains(t, res.Message, "1 of 3")

	// The failing root did not stop the others from being attempted.
	invocations, err := os.ReadFile(logPath)
	require.NoError(t, err)
	for _, root := range roots {
		assert.Contains(t, string(invocations), root)
	}
}

func TestMountAllSucceedsAcrossRegistry(t *testing.T) {
	tool, logPath := fakeMountTool(t)
	checker := NewEnlistmentChecker([]string{"/work/one", "/work/two"}, mounter.New(tool))

	res := checker.MountAll(context.Background())
	require.True(t, res.Ok, res.Message)

	invocations, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(invocations), "mount /work/one")
	assert.Contains(t, string(invocations), "mount /work/two")
}

func TestPreflightFailsOnMissingMarkers(t *testing.T) {
	tool, _ := fakeMountTool(t)
	registered := t.TempDir()
	checker := NewEnlistmentChecker([]string{registered}, mounter.New(tool))

	res := checker.RunPreflightChecks(context.Background())
	require.True(t, res.Failed())
	assert.Contains(t, res.Message, registered)
}

func TestPreflightAcceptsMarkedEnlistments(t *testing.T) {
	tool, _ := fakeMountTool(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, enlistment.MarkerDirName), 0o755))
	checker := NewEnlistmentChecker([]string{root}, mounter.New(tool))

	res := checker.RunPreflightChecks(context.Background())
	assert.True(t, res.Ok, res.Message)
}

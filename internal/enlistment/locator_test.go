package enlistment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgm/internal/status"
)

const testRemote = "https://example/org/repo.git"

func TestLocateDerivesRootFromURL(t *testing.T) {
	cwd := t.TempDir()
	enl, res := Locate(cwd, "", testRemote, "")
	require.True(t, res.Ok, res.Message)
	assert.Equal(t, filepath.Join(cwd, "repo"), enl.Root)
	assert.Equal(t, testRemote, enl.RemoteURL)
}

func TestLocateUsesExplicitRootRegardlessOfURL(t *testing.T) {
	root := filepath.Join(t.TempDir(), "x")
	enl, res := Locate("/does/not/matter", root, testRemote, "")
	require.True(t, res.Ok, res.Message)
	assert.Equal(t, root, enl.Root)
}

func TestLocateResolvesRelativeRootAgainstCwd(t *testing.T) {
	cwd := t.TempDir()
	enl, res := Locate(cwd, "my-enlistment", testRemote, "")
	require.True(t, res.Ok, res.Message)
	assert.Equal(t, filepath.Join(cwd, "my-enlistment"), enl.Root)
}

func TestLocateFailsOnNonEmptyTarget(t *testing.T) {
	cwd := t.TempDir()
	root := filepath.Join(cwd, "repo")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "leftover.txt"), []byte("x"), 0o644))

	_, res := Locate(cwd, "", testRemote, "")
	require.True(t, res.Failed())
	assert.Equal(t, status.NotEmpty, res.Kind)
}

func TestLocateAcceptsExistingEmptyTarget(t *testing.T) {
	cwd := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(cwd, "repo"), 0o755))

	_, res := Locate(cwd, "", testRemote, "")
	assert.True(t, res.Ok, res.Message)
}

func TestLocateRejectsNestedEnlistment(t *testing.T) {
	outer := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outer, MarkerDirName), 0o755))
	nested := filepath.Join(outer, "deeper", "repo")

	_, res := Locate(outer, nested, testRemote, "")
	require.True(t, res.Failed())
	assert.Equal(t, status.NestedEnlistment, res.Kind)
	assert.Contains(t, res.Message, outer)
}

func TestLocateReportsMissingGitTooling(t *testing.T) {
	_, res := Locate(t.TempDir(), "", testRemote, "definitely-not-a-git-binary-on-path")
	require.True(t, res.Failed())
	assert.Equal(t, status.ToolingMissing, res.Kind)
}

func TestLocateFailsWhenNoNameCanBeInferred(t *testing.T) {
	_, res := Locate(t.TempDir(), "", "", "")
	require.True(t, res.Failed())
	assert.Equal(t, status.InvalidRoot, res.Kind)
}

func TestRepoNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://example/org/repo.git": "repo",
		"https://example/org/repo":     "repo",
		"https://example/org/repo/":    "repo",
		"git@example:org/repo.git":     "repo",
	}
	for url, want := range cases {
		assert.Equal(t, want, RepoNameFromURL(url), url)
	}
}

func TestDerivedPaths(t *testing.T) {
	enl := &Enlistment{Root: "/work/repo"}
	assert.Equal(t, filepath.Join("/work/repo", ".vgm"), enl.MarkerDir())
	assert.Equal(t, filepath.Join("/work/repo", ".vgm", "logs"), enl.LogDir())
	assert.Equal(t, filepath.Join("/work/repo", ".vgm", "objects"), enl.ObjectCacheDir())
	assert.Equal(t, filepath.Join("/work/repo", "src"), enl.SrcDir())
}

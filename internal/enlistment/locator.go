package enlistment

import (
	"os"
	"os/exec"
	"path/filepath"

	"vgm/internal/status"
)

// Locate derives and validates the enlistment root for a clone, then
// resolves the local tooling the enlistment will need. Validation runs to
// completion before anything touches the disk; a returned Enlistment means
// every precondition held at this point in time.
//
// cwd is passed in rather than read from the process so callers (and tests)
// control the ambient state.
func Locate(cwd string, userPath string, remoteURL string, gitBin string) (*Enlistment, status.Result) {
	root, res := resolveRoot(cwd, userPath, remoteURL)
	if res.Failed() {
		return nil, res
	}

	if res := checkEmpty(root); res.Failed() {
		return nil, res
	}
	if res := checkNotNested(root); res.Failed() {
		return nil, res
	}

	if gitBin == "" {
		gitBin = "git"
	}
	resolvedGit, err := exec.LookPath(gitBin)
	if err != nil {
		return nil, status.Failure(status.ToolingMissing, "could not locate the git binary %q: %v", gitBin, err)
	}

	enl := &Enlistment{
		Root:       root,
		RemoteURL:  remoteURL,
		GitBinPath: resolvedGit,
	}
	enl.HooksPath = filepath.Join(enl.MarkerDir(), "hooks")
	return enl, status.Success("enlistment root %s", root)
}

func resolveRoot(cwd string, userPath string, remoteURL string) (string, status.Result) {
	if userPath == "" {
		repoName := RepoNameFromURL(remoteURL)
		if repoName == "" {
			return "", status.Failure(status.InvalidRoot, "could not infer an enlistment name from %q; specify a target directory", remoteURL)
		}
		userPath = repoName
	}
	if !filepath.IsAbs(userPath) {
		if cwd == "" {
			return "", status.Failure(status.InvalidRoot, "no working directory available to resolve %q against", userPath)
		}
		userPath = filepath.Join(cwd, userPath)
	}
	return filepath.Clean(userPath), status.Success("")
}

func checkEmpty(root string) status.Result {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return status.Success("")
	}
	if err != nil {
		return status.Failure(status.InvalidRoot, "could not inspect %s: %v", root, err)
	}
	if len(entries) > 0 {
		return status.Failure(status.NotEmpty, "directory %s exists and is not empty", root)
	}
	return status.Success("")
}

// checkNotNested walks the ancestors of root looking for an enlistment
// marker. Creating one enlistment inside another would hand the projection
// layer two owners for the same subtree.
func checkNotNested(root string) status.Result {
	dir := filepath.Dir(root)
	for {
		marker := filepath.Join(dir, MarkerDirName)
		if info, err := os.Stat(marker); err == nil && info.IsDir() {
			return status.Failure(status.NestedEnlistment, "%s is inside the enlistment rooted at %s", root, dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return status.Success("")
		}
		dir = parent
	}
}

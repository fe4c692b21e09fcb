package enlistment

import (
	"path/filepath"
	"strings"
)

// MarkerDirName marks a directory as an enlistment root. Its presence is
// what the nesting walk and the upgrade checker look for.
const MarkerDirName = ".vgm"

// Enlistment is one local working copy of a virtualized remote repository.
// Root and RemoteURL identify it for its whole life; neither ever changes
// after creation.
type Enlistment struct {
	Root       string
	RemoteURL  string
	GitBinPath string
	HooksPath  string
}

func (e *Enlistment) MarkerDir() string {
	return filepath.Join(e.Root, MarkerDirName)
}

func (e *Enlistment) MarkerFile() string {
	return filepath.Join(e.MarkerDir(), "enlistment.yaml")
}

func (e *Enlistment) LogDir() string {
	return filepath.Join(e.MarkerDir(), "logs")
}

func (e *Enlistment) ObjectCacheDir() string {
	return filepath.Join(e.MarkerDir(), "objects")
}

// SrcDir is the materialized working tree under the root.
func (e *Enlistment) SrcDir() string {
	return filepath.Join(e.Root, "src")
}

// RepoNameFromURL infers the repository name from the last path segment of
// the remote URL, trimming a .git suffix. Both https and scp-like remotes
// are handled.
func RepoNameFromURL(remoteURL string) string {
	trimmed := strings.TrimSuffix(remoteURL, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return trimmed
}

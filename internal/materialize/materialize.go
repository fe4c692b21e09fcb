package materialize

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"vgm/internal/cacheserver"
	"vgm/internal/enlistment"
	logger "vgm/internal/log"
	"vgm/internal/refs"
	"vgm/internal/sh"
	"vgm/internal/status"
)

// markerMetadata is written into the enlistment marker dir at creation.
// It is what later invocations and the upgrade checker read to recognize
// the root as an enlistment.
type markerMetadata struct {
	RemoteURL   string `yaml:"remoteUrl"`
	Branch      string `yaml:"branch"`
	CacheServer string `yaml:"cacheServer,omitempty"`
}

// CloneHelper creates the on-disk scaffolding for a validated enlistment and
// performs the initial population of git metadata and working tree.
type CloneHelper struct {
	gitBin string
}

func NewCloneHelper(gitBin string) *CloneHelper {
	return &CloneHelper{gitBin: gitBin}
}

// Materialize re-checks that the root has not appeared since validation
// (the last point this is checked), creates the scaffolding, then populates
// the chosen branch. Partial state after a failure is left on disk for
// diagnosis; cleanup is the user's call, not this component's.
func (h *CloneHelper) Materialize(ctx context.Context, enl *enlistment.Enlistment, gitRefs *refs.GitRefs, branch string, cache cacheserver.Info) status.Result {
	if entries, err := os.ReadDir(enl.Root); err == nil && len(entries) > 0 {
		return status.Failure(status.NotEmpty, "directory %s is no longer empty; another process may have raced this clone", enl.Root)
	}

	for _, dir := range []string{enl.MarkerDir(), enl.LogDir(), enl.ObjectCacheDir(), enl.HooksPath, enl.SrcDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return status.Failure(status.GenericFailure, "could not create %s: %v", dir, err)
		}
	}

	if res := h.writeMarker(enl, branch, cache); res.Failed() {
		return res
	}

	return h.populate(ctx, enl, gitRefs, branch, cache)
}

func (h *CloneHelper) writeMarker(enl *enlistment.Enlistment, branch string, cache cacheserver.Info) status.Result {
	metadata := markerMetadata{
		RemoteURL:   enl.RemoteURL,
		Branch:      branch,
		CacheServer: cache.Name,
	}
	data, err := yaml.Marshal(&metadata)
	if err != nil {
		return status.Failure(status.GenericFailure, "could not marshal enlistment metadata: %v", err)
	}
	if err := os.WriteFile(enl.MarkerFile(), data, 0o644); err != nil {
		return status.Failure(status.GenericFailure, "could not write enlistment metadata: %v", err)
	}
	return status.Success("")
}

func (h *CloneHelper) populate(ctx context.Context, enl *enlistment.Enlistment, gitRefs *refs.GitRefs, branch string, cache cacheserver.Info) status.Result {
	target, ok := gitRefs.Branches[branch]
	if !ok {
		return status.Failure(status.BranchNotFound, "negotiated refs carry no branch named %q", branch)
	}
	logger.Log.Infof("Populating %s at %s (%s)", branch, enl.SrcDir(), target)

	srcDir := sh.DirectoryPath(enl.SrcDir())
	steps := [][]string{
		{"init"},
		{"remote", "add", "origin", enl.RemoteURL},
		{"config", "core.hooksPath", enl.HooksPath},
		{"config", "vgm.objectCache", enl.ObjectCacheDir()},
		{"config", "vgm.cacheServer", cache.URL},
		{"fetch", "--depth=1", "origin", branch},
		{"checkout", "-B", branch, "FETCH_HEAD"},
	}
	for _, args := range steps {
		if _, err := sh.ExecuteGit(ctx, h.gitBin, srcDir, args...); err != nil {
			return status.Failure(status.GenericFailure, "initial population of %s failed: %v", enl.Root, err)
		}
	}

	return status.Success(fmt.Sprintf("materialized %s at %s", branch, enl.Root))
}

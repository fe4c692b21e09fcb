package cloneCommand

import (
	"context"
	"io"

	"vgm/internal/enlistment"
	"vgm/internal/lockserver"
	"vgm/internal/sh"
	"vgm/internal/status"
)

// processLocker adapts the cross-process lock server to the Locker surface.
type processLocker struct{}

func (processLocker) Acquire(root string) (io.Closer, status.Result) {
	lock, res := lockserver.Acquire(root)
	if res.Failed() {
		return nil, res
	}
	return lock, res
}

// gitPrefetcher warms the commit graph for the cloned branch so the first
// interactions with the enlistment do not stall on the network.
type gitPrefetcher struct {
	gitBin string
}

func newGitPrefetcher(gitBin string) *gitPrefetcher {
	return &gitPrefetcher{gitBin: gitBin}
}

func (p *gitPrefetcher) PrefetchCommits(ctx context.Context, enl *enlistment.Enlistment, branch string) status.Result {
	gitBin := p.gitBin
	if gitBin == "" {
		gitBin = enl.GitBinPath
	}
	_, err := sh.ExecuteGit(ctx, gitBin, sh.DirectoryPath(enl.SrcDir()), "fetch", "--filter=blob:none", "origin", branch)
	if err != nil {
		return status.Failure(status.GenericFailure, "commit prefetch failed: %v", err)
	}
	return status.Success("prefetched commits for %s", branch)
}

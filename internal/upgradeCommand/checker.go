package upgradeCommand

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/samber/lo"

	"vgm/internal/enlistment"
	logger "vgm/internal/log"
	"vgm/internal/mounter"
	"vgm/internal/status"
)

// EnlistmentChecker is the default PrerunChecker. It walks the registry of
// known enlistment roots and treats each one independently: one root's
// failure never stops the attempt on the others.
type EnlistmentChecker struct {
	roots  []string
	mounts *mounter.Helper
}

func NewEnlistmentChecker(roots []string, mounts *mounter.Helper) *EnlistmentChecker {
	return &EnlistmentChecker{
		roots:  roots,
		mounts: mounts,
	}
}

// RunPreflightChecks verifies the preconditions an install depends on:
// git tooling present and every registered root still carrying its
// enlistment marker.
func (c *EnlistmentChecker) RunPreflightChecks(_ context.Context) status.Result {
	if _, err := exec.LookPath("git"); err != nil {
		return status.Failure(status.ToolingMissing, "could not locate the git binary: %v", err)
	}
	if res := checkDownloadSpace(os.TempDir()); res.Failed() {
		return res
	}

	var stale []string
	for _, root := range c.roots {
		marker := enlistment.Enlistment{Root: root}
		if info, err := os.Stat(marker.MarkerDir()); err != nil || !info.IsDir() {
			stale = append(stale, root)
		}
	}
	if len(stale) > 0 {
		return status.Failure(status.GenericFailure,
			"registered enlistments are missing their markers: %s; remove them from the registry first", strings.Join(stale, ", "))
	}
	return status.Success("")
}

// The installer payload lands in a temp dir; a near-full disk fails the
// upgrade earlier and with a clearer message than a short write would.
const minDownloadSpace = 100 << 20

func checkDownloadSpace(dir string) status.Result {
	var fs syscall.Statfs_t
	if err := syscall.Statfs(dir, &fs); err != nil {
		logger.Log.Warnf("could not determine free space under %s: %v", dir, err)
		return status.Success("")
	}
	free := fs.Bavail * uint64(fs.Bsize)
	if free < minDownloadSpace {
		return status.Failure(status.GenericFailure,
			"not enough free space under %s for the installer download (%d MB free)", dir, free>>20)
	}
	return status.Success("")
}

func (c *EnlistmentChecker) UnmountAll(ctx context.Context) status.Result {
	return c.forEachRoot("unmount", func(root string) status.Result {
		return c.mounts.Unmount(ctx, root)
	})
}

func (c *EnlistmentChecker) MountAll(ctx context.Context) status.Result {
	return c.forEachRoot("mount", func(root string) status.Result {
		return c.mounts.Mount(ctx, root)
	})
}

func (c *EnlistmentChecker) forEachRoot(verb string, fn func(root string) status.Result) status.Result {
	var failures []string
	for _, root := range c.roots {
		if res := fn(root); res.Failed() {
			logger.Log.Errorf("%s of %s failed: %s", verb, root, res.Message)
			failures = append(failures, res.Message)
		}
	}
	if len(failures) > 0 {
		return status.Failure(status.GenericFailure, "could not %s %d of %d enlistments: %s",
			verb, len(failures), len(c.roots), strings.Join(lo.Uniq(failures), "; "))
	}
	return status.Success("%sed %d enlistments", verb, len(c.roots))
}

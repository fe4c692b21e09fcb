package cloneCommand

import (
	"context"
	"io"

	"vgm/internal/cacheserver"
	"vgm/internal/enlistment"
	"vgm/internal/refs"
	"vgm/internal/status"
	"vgm/internal/transport"
)

// Transport is the remote surface the clone workflow needs: explicit
// credential refresh, then configuration and ref queries.
type Transport interface {
	RefreshCredentials(ctx context.Context) error
	QueryConfig(ctx context.Context) (*transport.RemoteConfig, error)
	QueryRefs(ctx context.Context, branch string) (*transport.RefsPayload, error)
}

// Locker binds the cross-process lock for a root. The returned closer
// releases it; the orchestrator defers that on every exit path.
type Locker interface {
	Acquire(root string) (io.Closer, status.Result)
}

// Materializer creates the scaffolding and performs initial population.
type Materializer interface {
	Materialize(ctx context.Context, enl *enlistment.Enlistment, gitRefs *refs.GitRefs, branch string, cache cacheserver.Info) status.Result
}

// Prefetcher is the commit-prefetch follow-on run after a successful clone.
type Prefetcher interface {
	PrefetchCommits(ctx context.Context, enl *enlistment.Enlistment, branch string) status.Result
}

// Mounter activates the virtual projection for a freshly cloned enlistment.
type Mounter interface {
	Mount(ctx context.Context, root string) status.Result
}

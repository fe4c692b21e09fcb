package refs

import (
	"context"

	"vgm/internal/status"
	"vgm/internal/transport"
)

// GitRefs is the remote's branch mapping from one negotiation round trip.
// Read-only once produced.
type GitRefs struct {
	Branches      map[string]string
	DefaultBranch string
}

// Transport is the single call the negotiator needs from the remote.
type Transport interface {
	QueryRefs(ctx context.Context, branch string) (*transport.RefsPayload, error)
}

type Negotiator struct {
	transport Transport
}

func NewNegotiator(t Transport) *Negotiator {
	return &Negotiator{transport: t}
}

// Negotiate fetches the reference set in one retried round trip and picks
// the checkout target: the requested branch when one was given, the remote's
// default otherwise. A requested branch missing from the returned set is
// detected locally; no second round trip is made for it.
func (n *Negotiator) Negotiate(ctx context.Context, requestedBranch string, singleBranch bool) (*GitRefs, string, status.Result) {
	scope := ""
	if singleBranch && requestedBranch != "" {
		scope = requestedBranch
	}

	payload, err := n.transport.QueryRefs(ctx, scope)
	if err != nil {
		return nil, "", status.Failure(status.RefsUnavailable, "could not negotiate refs with the remote: %v", err)
	}

	gitRefs := &GitRefs{
		Branches:      payload.Branches,
		DefaultBranch: payload.DefaultBranch,
	}

	if requestedBranch != "" {
		if _, ok := gitRefs.Branches[requestedBranch]; !ok {
			return nil, "", status.Failure(status.BranchNotFound, "the remote has no branch named %q", requestedBranch)
		}
		return gitRefs, requestedBranch, status.Success("negotiated branch %s", requestedBranch)
	}

	return gitRefs, gitRefs.DefaultBranch, status.Success("negotiated default branch %s", gitRefs.DefaultBranch)
}

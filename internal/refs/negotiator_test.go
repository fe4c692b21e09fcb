package refs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgm/internal/status"
	"vgm/internal/transport"
)

type mockTransport struct {
	payload    *transport.RefsPayload
	err        error
	calls      int
	lastBranch string
}

func (m *mockTransport) QueryRefs(_ context.Context, branch string) (*transport.RefsPayload, error) {
	m.calls++
	m.lastBranch = branch
	return m.payload, m.err
}

func mainDevPayload() *transport.RefsPayload {
	return &transport.RefsPayload{
		Branches:      map[string]string{"main": "aaa111", "dev": "bbb222"},
		DefaultBranch: "main",
	}
}

func TestNegotiateNoBranchPicksRemoteDefault(t *testing.T) {
	mock := &mockTransport{payload: mainDevPayload()}
	gitRefs, branch, res := NewNegotiator(mock).Negotiate(context.Background(), "", false)
	require.True(t, res.Ok, res.Message)
	assert.Equal(t, "main", branch)
	assert.Equal(t, "aaa111", gitRefs.Branches["main"])
	assert.Equal(t, 1, mock.calls)
}

func TestNegotiateRequestedBranch(t *testing.T) {
	mock := &mockTransport{payload: mainDevPayload()}
	_, branch, res := NewNegotiator(mock).Negotiate(context.Background(), "dev", false)
	require.True(t, res.Ok, res.Message)
	assert.Equal(t, "dev", branch)
}

func TestNegotiateMissingBranchNoExtraRoundTrip(t *testing.T) {
	mock := &mockTransport{payload: mainDevPayload()}
	_, _, res := NewNegotiator(mock).Negotiate(context.Background(), "feature-x", false)
	require.True(t, res.Failed())
	assert.Equal(t, status.BranchNotFound, res.Kind)
	assert.Equal(t, 1, mock.calls)
}

func TestNegotiateSingleBranchScopesRequest(t *testing.T) {
	mock := &mockTransport{payload: &transport.RefsPayload{
		Branches:      map[string]string{"dev": "bbb222"},
		DefaultBranch: "main",
	}}
	_, branch, res := NewNegotiator(mock).Negotiate(context.Background(), "dev", true)
	require.True(t, res.Ok, res.Message)
	assert.Equal(t, "dev", branch)
	assert.Equal(t, "dev", mock.lastBranch)
}

func TestNegotiateSingleBranchWithoutRequestIsUnscoped(t *testing.T) {
	mock := &mockTransport{payload: mainDevPayload()}
	_, _, res := NewNegotiator(mock).Negotiate(context.Background(), "", true)
	require.True(t, res.Ok, res.Message)
	assert.Equal(t, "", mock.lastBranch)
}

func TestNegotiateTransportFailure(t *testing.T) {
	mock := &mockTransport{err: errors.New("fetch refs failed after 3 attempts: connection refused")}
	_, _, res := NewNegotiator(mock).Negotiate(context.Background(), "dev", false)
	require.True(t, res.Failed())
	assert.Equal(t, status.RefsUnavailable, res.Kind)
	assert.Contains(t, res.Message, "connection refused")
}

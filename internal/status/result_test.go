package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessCarriesMessage(t *testing.T) {
	res := Success("done in %d steps", 3)
	assert.True(t, res.Ok)
	assert.False(t, res.Failed())
	assert.Equal(t, "done in 3 steps", res.Message)
	assert.NoError(t, res.Err())
}

func TestFailureKeepsKindAndMessage(t *testing.T) {
	res := Failure(BranchNotFound, "branch %q not found", "topic/x")
	assert.True(t, res.Failed())
	assert.Equal(t, BranchNotFound, res.Kind)
	assert.EqualError(t, res.Err(), `branch "topic/x" not found`)
}

func TestFromError(t *testing.T) {
	res := FromError(AuthFailed, errors.New("token rejected"))
	assert.True(t, res.Failed())
	assert.Equal(t, AuthFailed, res.Kind)
	assert.Equal(t, "token rejected", res.Message)
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "EnlistmentBusy", EnlistmentBusy.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

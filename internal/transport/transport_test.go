package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgm/internal/retry"
)

func testRetryConfig() retry.Config {
	return retry.Config{MaxAttempts: 3, Timeout: 5 * time.Second, Backoff: time.Millisecond}
}

func authedClient(t *testing.T, serverURL string) *Client {
	t.Setenv(TokenEnvVar, "test-token")
	c := NewClient(serverURL, testRetryConfig(), nil)
	require.NoError(t, c.RefreshCredentials(context.Background()))
	return c
}

func TestRefreshCredentialsFailsWithoutToken(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	c := NewClient("https://example", testRetryConfig(), nil)
	err := c.RefreshCredentials(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), TokenEnvVar)
}

func TestQueryConfigDecodesAdvertisedServers(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/vgm/config", r.URL.Path)
		_, _ = w.Write([]byte(`{"cacheServers":[{"name":"EU-Cache","url":"https://eu.cache.example","globalDefault":true}],"minClientVersion":"1.0.0"}`))
	}))
	defer server.Close()

	config, err := authedClient(t, server.URL).QueryConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	require.Len(t, config.CacheServers, 1)
	assert.Equal(t, "EU-Cache", config.CacheServers[0].Name)
	assert.True(t, config.CacheServers[0].GlobalDefault)
	assert.Equal(t, "1.0.0", config.MinClientVersion)
}

func TestQueryRefsScopesToSingleBranch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vgm/refs", r.URL.Path)
		assert.Equal(t, "dev", r.URL.Query().Get("branch"))
		_, _ = w.Write([]byte(`{"branches":{"dev":"abc123"},"defaultBranch":"main"}`))
	}))
	defer server.Close()

	payload, err := authedClient(t, server.URL).QueryRefs(context.Background(), "dev")
	require.NoError(t, err)
	assert.Equal(t, "abc123", payload.Branches["dev"])
	assert.Equal(t, "main", payload.DefaultBranch)
}

func TestServerErrorsConsumeRetryBudget(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := authedClient(t, server.URL).QueryConfig(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, hits)
}

func TestAuthRejectionIsNotRetried(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := authedClient(t, server.URL).QueryConfig(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, hits)
	assert.Contains(t, err.Error(), "401")
}

package appConfig

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	config, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Empty(t, config.Enlistments)
	assert.Equal(t, 3, config.RetryConfig().MaxAttempts)
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	config, err := LoadFrom(path)
	require.NoError(t, err)

	config.DefaultCacheServer = "eu-cache"
	config.UpgradeFeedURL = "https://upgrade.example/feed.json"
	config.RegisterEnlistment("/work/repo")
	require.NoError(t, config.Save())

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "eu-cache", reloaded.DefaultCacheServer)
	assert.Equal(t, []string{"/work/repo"}, reloaded.Enlistments)
}

func TestRegisterEnlistmentIsIdempotent(t *testing.T) {
	config := &AppConfig{}
	config.RegisterEnlistment("/work/repo")
	config.RegisterEnlistment("/work/repo")
	config.RegisterEnlistment("/work/other")
	assert.Equal(t, []string{"/work/repo", "/work/other"}, config.Enlistments)
}

func TestRetryConfigOverrides(t *testing.T) {
	config := &AppConfig{RetryMaxAttempts: 7, RetryTimeoutSeconds: 5}
	rc := config.RetryConfig()
	assert.Equal(t, 7, rc.MaxAttempts)
	assert.Equal(t, 5*time.Second, rc.Timeout)
}

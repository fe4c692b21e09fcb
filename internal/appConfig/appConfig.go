package appConfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v2"

	"vgm/internal/retry"
)

const ConfigFileName = "vgm.yaml"

// AppConfig is the tool-level configuration plus the registry of locally
// known enlistments. The registry is what the upgrade workflow walks when it
// unmounts and remounts everything.
type AppConfig struct {
	DefaultCacheServer  string   `yaml:"defaultCacheServer,omitempty"`
	UpgradeFeedURL      string   `yaml:"upgradeFeedUrl,omitempty"`
	InstallMethod       string   `yaml:"installMethod,omitempty"`
	MountTool           string   `yaml:"mountTool,omitempty"`
	Enlistments         []string `yaml:"enlistments"`
	RetryMaxAttempts    int      `yaml:"retryMaxAttempts,omitempty"`
	RetryTimeoutSeconds int      `yaml:"retryTimeoutSeconds,omitempty"`

	path string
}

// Load reads vgm.yaml from the current directory, falling back to the home
// directory. A missing file is not an error; it yields defaults that will be
// persisted to the home directory on first save.
func Load() (*AppConfig, error) {
	candidates := []string{filepath.Join(".", ConfigFileName)}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ConfigFileName))
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", candidate, err)
		}
		var config AppConfig
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("could not unmarshal config file %s: %w", candidate, err)
		}
		config.path = candidate
		return &config, nil
	}

	config := &AppConfig{}
	config.path = candidates[len(candidates)-1]
	return config, nil
}

// LoadFrom reads a config from an explicit path. Missing files yield
// defaults bound to that path, mirroring Load.
func LoadFrom(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &AppConfig{path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file %s: %w", path, err)
	}
	var config AppConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", path, err)
	}
	config.path = path
	return &config, nil
}

func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("could not write config file %s: %w", c.path, err)
	}
	return nil
}

// RegisterEnlistment records a newly materialized enlistment root. Roots are
// kept unique; registering a known root is a no-op.
func (c *AppConfig) RegisterEnlistment(root string) {
	if lo.Contains(c.Enlistments, root) {
		return
	}
	c.Enlistments = append(c.Enlistments, root)
}

func (c *AppConfig) RetryConfig() retry.Config {
	config := retry.DefaultConfig()
	if c.RetryMaxAttempts > 0 {
		config.MaxAttempts = c.RetryMaxAttempts
	}
	if c.RetryTimeoutSeconds > 0 {
		config.Timeout = time.Duration(c.RetryTimeoutSeconds) * time.Second
	}
	return config
}

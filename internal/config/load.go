package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables overriding file values.
const (
	EnvNamespace    = "MAGNUM_CAPI_NAMESPACE"
	EnvKubeconfig   = "MAGNUM_CAPI_KUBECONFIG"
	EnvStateDir     = "MAGNUM_CAPI_STATE_DIR"
	EnvManifestsDir = "MAGNUM_CAPI_MANIFESTS_DIR"
	EnvPollInterval = "MAGNUM_CAPI_POLL_INTERVAL"
	EnvPollRetries  = "MAGNUM_CAPI_POLL_MAX_RETRIES"
	EnvRegionName   = "OS_REGION_NAME"
	EnvAuthURL      = "OS_AUTH_URL"
	EnvInterface    = "OS_INTERFACE"
)

// LoadFile reads and parses the configuration from a YAML file.
// An empty path loads defaults and environment overrides only.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Namespace = parseString(EnvNamespace, c.Namespace)
	c.Kubeconfig = parseString(EnvKubeconfig, c.Kubeconfig)
	c.StateDir = parseString(EnvStateDir, c.StateDir)
	c.ManifestsDir = parseString(EnvManifestsDir, c.ManifestsDir)
	c.Poller.Interval = parseDuration(EnvPollInterval, c.Poller.Interval)
	c.Poller.MaxRetries = parseInt(EnvPollRetries, c.Poller.MaxRetries)
	c.OpenStack.RegionName = parseString(EnvRegionName, c.OpenStack.RegionName)
	c.OpenStack.Interface = parseString(EnvInterface, c.OpenStack.Interface)
	if c.OpenStack.AuthURL == "" {
		c.OpenStack.AuthURL = os.Getenv(EnvAuthURL)
	}
}

// Addon manifest file names inside ManifestsDir.
const (
	ManifestCCM       = "ccm.yaml"
	ManifestCalico    = "calico.yaml"
	ManifestCinderCSI = "cinder-csi.yaml"
)

// LoadManifests reads the pre-rendered addon manifests. Missing files yield
// empty manifests so a cluster can be created without an addon.
func (c *Config) LoadManifests() (map[string][]byte, error) {
	manifests := make(map[string][]byte, 3)
	for _, name := range []string{ManifestCCM, ManifestCalico, ManifestCinderCSI} {
		if c.ManifestsDir == "" {
			manifests[name] = nil
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.ManifestsDir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				manifests[name] = nil
				continue
			}
			return nil, fmt.Errorf("failed to read manifest %s: %w", name, err)
		}
		manifests[name] = data
	}
	return manifests, nil
}

func parseString(envVar, current string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return current
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the current value is kept.
func parseDuration(envVar string, current time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return current
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return current
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the current value is kept.
func parseInt(envVar string, current int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return current
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return current
	}

	return i
}

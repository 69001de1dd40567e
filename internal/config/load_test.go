package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		EnvNamespace, EnvKubeconfig, EnvStateDir, EnvManifestsDir, EnvPollInterval,
		EnvPollRetries, EnvRegionName, EnvAuthURL, EnvInterface,
	} {
		t.Setenv(env, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", `
namespace: capi
stateDir: /tmp/state
openstack:
  authURL: https://keystone.example.com/v3
  regionName: RegionOne
poller:
  interval: 45s
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "capi", cfg.Namespace)
	assert.Equal(t, "/tmp/state", cfg.StateDir)
	assert.Equal(t, "https://keystone.example.com/v3", cfg.OpenStack.AuthURL)
	assert.Equal(t, "RegionOne", cfg.OpenStack.RegionName)
	assert.Equal(t, 45*time.Second, cfg.Poller.Interval)
	assert.Equal(t, DefaultFieldManager, cfg.FieldManager)
	assert.Equal(t, DefaultPollMaxRetries, cfg.Poller.MaxRetries)
}

func TestLoadFile_EmptyPathUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultNamespace, cfg.Namespace)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvNamespace, "from-env")
	t.Setenv(EnvPollInterval, "2m")
	t.Setenv(EnvPollRetries, "not-a-number")
	t.Setenv(EnvRegionName, "RegionTwo")
	t.Setenv(EnvAuthURL, "https://env-keystone/v3")

	path := writeFile(t, t.TempDir(), "config.yaml", "namespace: from-file\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Namespace)
	assert.Equal(t, 2*time.Minute, cfg.Poller.Interval)
	assert.Equal(t, DefaultPollMaxRetries, cfg.Poller.MaxRetries, "invalid values keep the current value")
	assert.Equal(t, "RegionTwo", cfg.OpenStack.RegionName)
	assert.Equal(t, "https://env-keystone/v3", cfg.OpenStack.AuthURL)
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = LoadFile(writeFile(t, dir, "bad.yaml", "namespace: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")

	_, err = LoadFile(writeFile(t, dir, "invalid.yaml", "openstack:\n  interface: private\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestLoadManifests(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, ManifestCalico, "kind: DaemonSet\n")

	cfg := Default()
	cfg.ManifestsDir = dir

	manifests, err := cfg.LoadManifests()
	require.NoError(t, err)
	assert.Equal(t, "kind: DaemonSet\n", string(manifests[ManifestCalico]))
	assert.Empty(t, manifests[ManifestCCM])
	assert.Len(t, manifests, 3)
}

func TestLoadManifests_NoDir(t *testing.T) {
	t.Parallel()

	manifests, err := Default().LoadManifests()
	require.NoError(t, err)
	assert.Len(t, manifests, 3)
	for _, data := range manifests {
		assert.Empty(t, data)
	}
}

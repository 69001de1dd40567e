package config

import (
	"fmt"
	"net/url"
	"time"
)

// Defaults
const (
	DefaultNamespace      = "magnum-system"
	DefaultFieldManager   = "magnum-capi"
	DefaultStateDir       = "/var/lib/magnum-capi"
	DefaultPollInterval   = 30 * time.Second
	DefaultPollMaxRetries = 3
	DefaultMetricsAddress = ":8080"
	DefaultHealthAddress  = ":8081"
	DefaultInterface      = "public"
)

// Config holds the driver configuration.
type Config struct {
	// Namespace holds every child resource in the management cluster
	Namespace string `yaml:"namespace"`

	// FieldManager is the Server-Side Apply owner of applied fields
	FieldManager string `yaml:"fieldManager"`

	// Kubeconfig is the path of the management cluster kubeconfig.
	// Empty uses the in-cluster or default loading rules.
	Kubeconfig string `yaml:"kubeconfig"`

	// StateDir holds the cluster record database
	StateDir string `yaml:"stateDir"`

	// ManifestsDir holds pre-rendered addon manifests (ccm.yaml, calico.yaml, cinder-csi.yaml)
	ManifestsDir string `yaml:"manifestsDir"`

	OpenStack OpenStackConfig `yaml:"openstack"`
	Poller    PollerConfig    `yaml:"poller"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// OpenStackConfig selects the identity endpoint and region.
type OpenStackConfig struct {
	// AuthURL overrides OS_AUTH_URL
	AuthURL string `yaml:"authURL"`

	// RegionName is the region written into the cluster cloud config
	RegionName string `yaml:"regionName"`

	// Interface is the endpoint interface (public, internal, admin)
	Interface string `yaml:"interface"`

	// CACert is a PEM bundle trusted by the child cloud provider
	CACert string `yaml:"caCert"`
}

// PollerConfig configures the periodic status refresh.
type PollerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	MaxRetries int           `yaml:"maxRetries"`
}

// MetricsConfig configures the HTTP endpoints of the serve command.
type MetricsConfig struct {
	BindAddress       string `yaml:"bindAddress"`
	HealthBindAddress string `yaml:"healthBindAddress"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.FieldManager == "" {
		c.FieldManager = DefaultFieldManager
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	if c.OpenStack.Interface == "" {
		c.OpenStack.Interface = DefaultInterface
	}
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.MaxRetries == 0 {
		c.Poller.MaxRetries = DefaultPollMaxRetries
	}
	if c.Metrics.BindAddress == "" {
		c.Metrics.BindAddress = DefaultMetricsAddress
	}
	if c.Metrics.HealthBindAddress == "" {
		c.Metrics.HealthBindAddress = DefaultHealthAddress
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if c.FieldManager == "" {
		return fmt.Errorf("fieldManager is required")
	}
	if c.Poller.Interval < time.Second {
		return fmt.Errorf("poller.interval must be at least 1s, got %s", c.Poller.Interval)
	}
	if c.Poller.MaxRetries < 0 {
		return fmt.Errorf("poller.maxRetries must not be negative")
	}
	switch c.OpenStack.Interface {
	case "public", "internal", "admin":
	default:
		return fmt.Errorf("openstack.interface must be one of public, internal, admin, got %q", c.OpenStack.Interface)
	}
	if c.OpenStack.AuthURL != "" {
		u, err := url.Parse(c.OpenStack.AuthURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("openstack.authURL %q is not an absolute URL", c.OpenStack.AuthURL)
		}
	}
	return nil
}

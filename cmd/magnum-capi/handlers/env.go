package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/applier"
	"github.com/imamik/magnum-capi/internal/config"
	"github.com/imamik/magnum-capi/internal/credentials"
	"github.com/imamik/magnum-capi/internal/driver"
	"github.com/imamik/magnum-capi/internal/resources"
	"github.com/imamik/magnum-capi/internal/store"
	"github.com/imamik/magnum-capi/internal/ui/tui"
)

// environment bundles what a driver operation needs.
type environment struct {
	driver *driver.Driver
	store  store.Store
	close  func() error

	pollInterval time.Duration
}

// Factory variables, replaced in tests.
var (
	loadConfig     = config.LoadFile
	newEnvironment = buildEnvironment
	runWatch       = tui.RunWatch

	out io.Writer = os.Stdout

	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// manifestAddons maps manifest file names to the addon they distribute.
var manifestAddons = map[string]resources.Addon{
	config.ManifestCCM:       resources.AddonCloudControllerManager,
	config.ManifestCalico:    resources.AddonCalico,
	config.ManifestCinderCSI: resources.AddonCinderCSI,
}

func restConfigFor(cfg *config.Config) (*rest.Config, error) {
	if cfg.Kubeconfig != "" {
		restCfg, err := clientcmd.BuildConfigFromFlags("", cfg.Kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
		return restCfg, nil
	}
	restCfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load management cluster config: %w", err)
	}
	return restCfg, nil
}

// builderFor renders the graph builder settings from the configuration.
func builderFor(cfg *config.Config, authURL string) (*resources.Builder, error) {
	files, err := cfg.LoadManifests()
	if err != nil {
		return nil, err
	}
	manifests := make(map[resources.Addon][]byte, len(files))
	for name, data := range files {
		if addon, ok := manifestAddons[name]; ok {
			manifests[addon] = data
		}
	}

	return &resources.Builder{
		Namespace:  cfg.Namespace,
		AuthURL:    authURL,
		RegionName: cfg.OpenStack.RegionName,
		Interface:  cfg.OpenStack.Interface,
		CACert:     cfg.OpenStack.CACert,
		Manifests:  manifests,
	}, nil
}

func buildEnvironment(ctx context.Context, cfg *config.Config) (*environment, error) {
	restCfg, err := restConfigFor(cfg)
	if err != nil {
		return nil, err
	}
	a, err := applier.NewFromConfig(restCfg, cfg.FieldManager)
	if err != nil {
		return nil, err
	}

	keystone, err := credentials.NewKeystone(ctx, cfg.OpenStack)
	if err != nil {
		return nil, err
	}

	b, err := builderFor(cfg, keystone.AuthURL())
	if err != nil {
		return nil, err
	}

	s, err := store.NewBoltStore(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	return &environment{
		driver: driver.New(a, credentials.NewManager(keystone), s, b),
		store:  s,
		close:  s.Close,

		pollInterval: cfg.Poller.Interval,
	}, nil
}

// openEnvironment loads the configuration and builds the environment. The
// caller closes it.
func openEnvironment(ctx context.Context, configPath string) (*environment, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return newEnvironment(ctx, cfg)
}

func (e *environment) loadCluster(ctx context.Context, id string) (v1alpha1.Cluster, error) {
	c, err := e.store.LoadCluster(ctx, id)
	if err != nil {
		return c, fmt.Errorf("failed to load cluster %s: %w", id, err)
	}
	return c, nil
}

func printCluster(c v1alpha1.Cluster) {
	fmt.Fprintf(out, "cluster %s: %s\n", c.ID, c.Status)
	for _, ng := range c.NodeGroups {
		fmt.Fprintf(out, "  %s (%s, %d nodes): %s\n", ng.Name, ng.Role, ng.NodeCount, ng.Status)
	}
}

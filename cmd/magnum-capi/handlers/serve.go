package handlers

import (
	"context"
	"fmt"

	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/imamik/magnum-capi/internal/poller"
)

var newManager = func(restCfg *rest.Config, opts manager.Options) (manager.Manager, error) {
	return ctrl.NewManager(restCfg, opts)
}

// Serve runs the status poller until ctx is cancelled. The manager serves
// the collectors of internal/metrics on its metrics endpoint.
func Serve(ctx context.Context, configPath string) error {
	logger := log.FromContext(ctx).WithName("serve")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	restCfg, err := restConfigFor(cfg)
	if err != nil {
		return err
	}

	mgr, err := newManager(restCfg, manager.Options{
		Metrics: metricsserver.Options{
			BindAddress: cfg.Metrics.BindAddress,
		},
		HealthProbeBindAddress: cfg.Metrics.HealthBindAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}

	env, err := newEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = env.close() }()

	p := poller.New(env.driver, env.store, cfg.Poller.Interval, cfg.Poller.MaxRetries)
	if err := mgr.Add(p); err != nil {
		return fmt.Errorf("failed to add poller: %w", err)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return fmt.Errorf("failed to set up health check: %w", err)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return fmt.Errorf("failed to set up ready check: %w", err)
	}

	logger.Info("starting manager",
		"namespace", cfg.Namespace,
		"interval", cfg.Poller.Interval.String(),
		"metrics", cfg.Metrics.BindAddress,
		"health", cfg.Metrics.HealthBindAddress)
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("manager stopped: %w", err)
	}
	return nil
}

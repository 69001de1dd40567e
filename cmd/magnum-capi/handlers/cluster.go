package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/config"
	"github.com/imamik/magnum-capi/internal/monitor"
	"github.com/imamik/magnum-capi/internal/ui/tui"
)

// loadRecord reads a cluster record from a YAML or JSON file.
func loadRecord(path string) (v1alpha1.Cluster, error) {
	var c v1alpha1.Cluster

	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read cluster record: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse cluster record %s: %w", path, err)
	}
	return c, nil
}

// CreateCluster creates the cluster described in recordPath.
func CreateCluster(ctx context.Context, configPath, recordPath string) error {
	c, err := loadRecord(recordPath)
	if err != nil {
		return err
	}

	env, err := openEnvironment(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = env.close() }()

	created, err := env.driver.CreateCluster(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to create cluster %s: %w", c.ID, err)
	}
	printCluster(created)
	return nil
}

// DeleteCluster submits the deletion of a stored cluster.
func DeleteCluster(ctx context.Context, configPath, id string) error {
	env, err := openEnvironment(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = env.close() }()

	c, err := env.loadCluster(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := env.driver.DeleteCluster(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to delete cluster %s: %w", id, err)
	}
	printCluster(deleted)
	return nil
}

// RefreshCluster runs one status refresh of a stored cluster.
func RefreshCluster(ctx context.Context, configPath, id string) error {
	env, err := openEnvironment(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = env.close() }()

	c, err := env.loadCluster(ctx, id)
	if err != nil {
		return err
	}

	refreshed, err := env.driver.UpdateClusterStatus(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to refresh cluster %s: %w", id, err)
	}
	printCluster(refreshed)
	return nil
}

// ResizeCluster changes the node count of a node group. An empty nodeGroup
// resizes the default worker group.
func ResizeCluster(ctx context.Context, configPath, id string, nodeCount int, nodesToRemove []string, nodeGroup string) error {
	env, err := openEnvironment(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = env.close() }()

	c, err := env.loadCluster(ctx, id)
	if err != nil {
		return err
	}

	var target *v1alpha1.NodeGroup
	if nodeGroup != "" {
		ng, ok := c.NodeGroup(nodeGroup)
		if !ok {
			return fmt.Errorf("cluster %s has no node group %q", id, nodeGroup)
		}
		target = &ng
	}

	resized, err := env.driver.ResizeCluster(ctx, c, nodeCount, nodesToRemove, target)
	if err != nil {
		return fmt.Errorf("failed to resize cluster %s: %w", id, err)
	}
	printCluster(resized)
	return nil
}

// statusView is the status command output.
type statusView struct {
	Cluster     v1alpha1.Cluster `json:"cluster"`
	Health      *monitor.Report  `json:"health,omitempty"`
	HealthError string           `json:"healthError,omitempty"`
}

// fetchStatus loads a record and polls its health. Records still in
// progress are refreshed first when refresh is set.
func (e *environment) fetchStatus(ctx context.Context, id string, refresh bool) (statusView, error) {
	c, err := e.loadCluster(ctx, id)
	if err != nil {
		return statusView{}, err
	}

	if refresh && c.Status.IsInProgress() {
		c, err = e.driver.UpdateClusterStatus(ctx, c)
		if err != nil {
			return statusView{}, fmt.Errorf("failed to refresh cluster %s: %w", id, err)
		}
	}

	view := statusView{Cluster: c}
	if c.Status != v1alpha1.DeleteComplete {
		report, err := e.driver.GetMonitor(c).Poll(ctx)
		if err != nil {
			view.HealthError = err.Error()
		} else {
			view.Health = &report
		}
	}
	return view, nil
}

// ClusterStatus prints the stored record and the live health of a cluster.
// With watch set it follows the cluster in a dashboard until it settles.
func ClusterStatus(ctx context.Context, configPath, id string, jsonOutput, watch bool) error {
	if watch && (jsonOutput || !isInteractiveTTY()) {
		return fmt.Errorf("--watch requires an interactive terminal and cannot be combined with --json")
	}

	env, err := openEnvironment(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = env.close() }()

	if watch {
		interval := env.pollInterval
		if interval <= 0 {
			interval = config.DefaultPollInterval
		}
		return runWatch(ctx, id, func(ctx context.Context) tui.StatusMsg {
			view, err := env.fetchStatus(ctx, id, true)
			if err != nil {
				return tui.StatusMsg{FetchErr: err.Error()}
			}
			return statusMsg(view)
		}, interval)
	}

	view, err := env.fetchStatus(ctx, id, false)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	if isInteractiveTTY() {
		fmt.Fprint(out, tui.RenderOnce(statusMsg(view)))
		return nil
	}
	fmt.Fprint(out, renderStatus(view))
	return nil
}

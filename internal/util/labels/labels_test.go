package labels

import "testing"

func TestNewLabelBuilder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		clusterName string
		clusterID   string
	}{
		{"simple cluster name", "my-cluster", "My-Cluster"},
		{"uuid", "6f1c0e6c-94a1", "6F1C0E6C-94A1"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			labels := NewLabelBuilder(tt.clusterName, tt.clusterID).Build()

			if labels[KeyClusterName] != tt.clusterName {
				t.Errorf("expected %s=%q, got %q", KeyClusterName, tt.clusterName, labels[KeyClusterName])
			}
			if labels[KeyClusterID] != tt.clusterID {
				t.Errorf("expected %s=%q, got %q", KeyClusterID, tt.clusterID, labels[KeyClusterID])
			}
			if labels[KeyManagedBy] != ManagedByDriver {
				t.Errorf("expected %s=%q, got %q", KeyManagedBy, ManagedByDriver, labels[KeyManagedBy])
			}
		})
	}
}

func TestWithNodeGroup(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("c", "C").WithNodeGroup("default-worker", "worker").Build()

	if labels[KeyNodeGroup] != "default-worker" {
		t.Errorf("expected node group label, got %q", labels[KeyNodeGroup])
	}
	if labels[KeyRole] != "worker" {
		t.Errorf("expected role label, got %q", labels[KeyRole])
	}
}

func TestBuildReturnsCopy(t *testing.T) {
	t.Parallel()
	lb := NewLabelBuilder("c", "C")
	first := lb.Build()
	first["mutated"] = "yes"

	if _, ok := lb.Build()["mutated"]; ok {
		t.Error("Build must return a copy")
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("c", "C").Merge(map[string]string{"extra": "1", KeyManagedBy: "other"}).Build()

	if labels["extra"] != "1" {
		t.Error("expected merged label")
	}
	if labels[KeyManagedBy] != "other" {
		t.Error("merge must override existing keys")
	}
}

func TestDeploymentSelector(t *testing.T) {
	t.Parallel()
	sel := DeploymentSelector("c", "c-default-worker")
	if len(sel) != 2 || sel[KeyDeploymentName] != "c-default-worker" || sel[KeyClusterName] != "c" {
		t.Errorf("unexpected selector %v", sel)
	}
}

func TestControlPlaneSelector(t *testing.T) {
	t.Parallel()
	sel := ControlPlaneSelector("c", "c-control-plane")
	if len(sel) != 2 || sel[KeyControlPlaneName] != "c-control-plane" || sel[KeyClusterName] != "c" {
		t.Errorf("unexpected selector %v", sel)
	}
}

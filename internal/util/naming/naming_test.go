package naming

import (
	"strings"
	"testing"
)

func TestNamingFunctions(t *testing.T) {
	cluster := "6F1C-Cluster"
	group := "Default-Worker"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "Cluster", got: Cluster(cluster), expected: "6f1c-cluster"},
		{name: "NodeGroup", got: NodeGroup(cluster, group), expected: "6f1c-cluster-default-worker"},
		{name: "MachineTemplate", got: MachineTemplate(cluster, group), expected: "6f1c-cluster-default-worker"},
		{name: "ControlPlane", got: ControlPlane(cluster), expected: "6f1c-cluster-control-plane"},
		{name: "KubeadmConfigTemplate", got: KubeadmConfigTemplate(cluster), expected: "6f1c-cluster"},
		{name: "CloudConfigSecret", got: CloudConfigSecret(cluster), expected: "6f1c-cluster-cloud-config"},
		{name: "CertificateAuthoritySecret", got: CertificateAuthoritySecret(cluster, "etcd"), expected: "6f1c-cluster-etcd"},
		{name: "AddonConfigMap", got: AddonConfigMap(cluster, "calico"), expected: "6f1c-cluster-calico"},
		{name: "ClusterResourceSet", got: ClusterResourceSet(cluster, "calico"), expected: "6f1c-cluster-calico"},
		{name: "MachineHealthCheck", got: MachineHealthCheck(cluster), expected: "6f1c-cluster"},
		{name: "CredentialName", got: CredentialName(cluster), expected: "6F1C-Cluster"},
		{name: "CredentialDescription", got: CredentialDescription(cluster), expected: "Magnum cluster (6F1C-Cluster)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestInstanceIDFromProviderID(t *testing.T) {
	tests := map[string]string{
		"openstack:///abc123":       "abc123",
		"openstack://region/abc123": "abc123",
		"abc123":                    "abc123",
		"openstack:///":             "",
	}
	for in, want := range tests {
		if got := InstanceIDFromProviderID(in); got != want {
			t.Errorf("InstanceIDFromProviderID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateCluster(t *testing.T) {
	valid := []string{"c1", "0b5e6a5c-cafe-4f00-9d1e-000000000001", "C0FFEE"}
	for _, id := range valid {
		if err := ValidateCluster(id); err != nil {
			t.Errorf("ValidateCluster(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"my_cluster", "cluster.one", "-leading", strings.Repeat("a", 50)}
	for _, id := range invalid {
		if err := ValidateCluster(id); err == nil {
			t.Errorf("ValidateCluster(%q) = nil, want error", id)
		}
	}
}

func TestValidateNodeGroup(t *testing.T) {
	const id = "0b5e6a5c-cafe-4f00-9d1e-000000000001"

	tests := []struct {
		group   string
		wantErr bool
	}{
		{group: "default-worker"},
		{group: "Highmem"},
		{group: "GPU_Pool", wantErr: true},
		{group: "pool.a", wantErr: true},
		{group: "trailing-", wantErr: true},
		{group: "a-very-long-node-group-name-for-gpus", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			err := ValidateNodeGroup(id, tt.group)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeGroup(%q) = %v, wantErr %v", tt.group, err, tt.wantErr)
			}
		})
	}
}

// Package v1alpha1 contains the cluster and node group records exchanged with
// the cluster service. The records are plain values: operations return updated
// copies and persistence happens through an explicit save at the boundary.
package v1alpha1

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/imamik/magnum-capi/internal/util/naming"
)

// ErrInvalidNodeGroups is returned when a cluster does not have exactly one
// master node group or its node groups are otherwise inconsistent.
var ErrInvalidNodeGroups = errors.New("invalid node groups")

// Role is the role of a node group within a cluster.
type Role string

const (
	// RoleMaster hosts the control plane
	RoleMaster Role = "master"
	// RoleWorker hosts workloads
	RoleWorker Role = "worker"
)

// NodeGroup is a set of identically configured nodes belonging to one cluster.
type NodeGroup struct {
	// ID is the opaque node group identifier
	ID string `json:"id"`

	// Name is unique within the cluster and used to derive resource names
	Name string `json:"name"`

	// Role is either master or worker
	Role Role `json:"role"`

	// NodeCount is the desired number of nodes
	NodeCount int `json:"nodeCount"`

	// MinNodeCount and MaxNodeCount bound autoscaling
	// +optional
	MinNodeCount int `json:"minNodeCount,omitempty"`
	// +optional
	MaxNodeCount int `json:"maxNodeCount,omitempty"`

	// FlavorID is the compute flavor used for the group's machines
	FlavorID string `json:"flavorID,omitempty"`

	// ImageID is the image used for the group's machines
	ImageID string `json:"imageID,omitempty"`

	// Labels are free-form node group labels
	// +optional
	Labels map[string]string `json:"labels,omitempty"`

	Status       Status `json:"status"`
	StatusReason string `json:"statusReason,omitempty"`
}

// IsMaster reports whether the group hosts the control plane.
func (ng NodeGroup) IsMaster() bool {
	return ng.Role == RoleMaster
}

// Cluster is a managed Kubernetes cluster record.
type Cluster struct {
	// ID is the opaque cluster identifier; resource names are derived from it
	ID string `json:"id"`

	// Name is the human readable cluster name
	Name string `json:"name,omitempty"`

	// UserID owns the cluster and its credential
	UserID string `json:"userID"`

	// ProjectID is the tenant the cluster lives in
	ProjectID string `json:"projectID,omitempty"`

	// KeyPair is the SSH key pair name injected into machines
	// +optional
	KeyPair string `json:"keyPair,omitempty"`

	// Labels carry driver options such as auto_healing_enabled and kube_tag
	// +optional
	Labels map[string]string `json:"labels,omitempty"`

	// ExternalNetworkID is the network used for floating IPs
	// +optional
	ExternalNetworkID string `json:"externalNetworkID,omitempty"`

	// FixedNetwork and FixedSubnet select an existing tenant network
	// +optional
	FixedNetwork string `json:"fixedNetwork,omitempty"`
	// +optional
	FixedSubnet string `json:"fixedSubnet,omitempty"`

	// DNSNameserver is used for the cluster subnet
	// +optional
	DNSNameserver string `json:"dnsNameserver,omitempty"`

	// MasterLBEnabled places the API server behind a load balancer
	// +optional
	MasterLBEnabled bool `json:"masterLBEnabled,omitempty"`

	NodeGroups []NodeGroup `json:"nodeGroups"`

	Status       Status `json:"status"`
	StatusReason string `json:"statusReason,omitempty"`
	COEVersion   string `json:"coeVersion,omitempty"`
	APIAddress   string `json:"apiAddress,omitempty"`
}

// NewCluster builds a cluster record in CREATE_IN_PROGRESS and validates it.
func NewCluster(id, userID string, nodeGroups ...NodeGroup) (Cluster, error) {
	c := Cluster{
		ID:         id,
		UserID:     userID,
		NodeGroups: slices.Clone(nodeGroups),
		Status:     CreateInProgress,
	}
	for i := range c.NodeGroups {
		if c.NodeGroups[i].Status == "" {
			c.NodeGroups[i].Status = CreateInProgress
		}
	}
	if err := c.Validate(); err != nil {
		return Cluster{}, err
	}
	return c, nil
}

// Validate checks the record invariants.
func (c Cluster) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("cluster id is required")
	}
	if err := naming.ValidateCluster(c.ID); err != nil {
		return err
	}
	if c.UserID == "" {
		return fmt.Errorf("cluster %s: user id is required", c.ID)
	}

	masters := 0
	seen := make(map[string]bool, len(c.NodeGroups))
	for _, ng := range c.NodeGroups {
		if ng.Name == "" {
			return fmt.Errorf("%w: node group name is required", ErrInvalidNodeGroups)
		}
		if seen[ng.Name] {
			return fmt.Errorf("%w: duplicate node group %q", ErrInvalidNodeGroups, ng.Name)
		}
		seen[ng.Name] = true
		if err := naming.ValidateNodeGroup(c.ID, ng.Name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidNodeGroups, err)
		}

		switch ng.Role {
		case RoleMaster:
			masters++
		case RoleWorker:
		default:
			return fmt.Errorf("%w: node group %q has unknown role %q", ErrInvalidNodeGroups, ng.Name, ng.Role)
		}
		if ng.NodeCount < 0 {
			return fmt.Errorf("%w: node group %q has negative node count", ErrInvalidNodeGroups, ng.Name)
		}
	}
	if masters != 1 {
		return fmt.Errorf("%w: expected exactly one master node group, got %d", ErrInvalidNodeGroups, masters)
	}
	return nil
}

// Master returns the master node group.
func (c Cluster) Master() (NodeGroup, bool) {
	for _, ng := range c.NodeGroups {
		if ng.IsMaster() {
			return ng, true
		}
	}
	return NodeGroup{}, false
}

// DefaultWorker returns the first worker node group, which the cluster service
// treats as the default target of a resize.
func (c Cluster) DefaultWorker() (NodeGroup, bool) {
	for _, ng := range c.NodeGroups {
		if !ng.IsMaster() {
			return ng, true
		}
	}
	return NodeGroup{}, false
}

// NodeGroup returns the node group with the given name.
func (c Cluster) NodeGroup(name string) (NodeGroup, bool) {
	for _, ng := range c.NodeGroups {
		if ng.Name == name {
			return ng, true
		}
	}
	return NodeGroup{}, false
}

// WithNodeGroup returns a copy of the cluster with ng replacing the group of
// the same name, or appended when absent.
func (c Cluster) WithNodeGroup(ng NodeGroup) Cluster {
	groups := make([]NodeGroup, 0, len(c.NodeGroups)+1)
	replaced := false
	for _, existing := range c.NodeGroups {
		if existing.Name == ng.Name {
			groups = append(groups, ng)
			replaced = true
			continue
		}
		groups = append(groups, existing)
	}
	if !replaced {
		groups = append(groups, ng)
	}
	c.NodeGroups = groups
	return c
}

// WithoutNodeGroup returns a copy of the cluster without the named group.
func (c Cluster) WithoutNodeGroup(name string) Cluster {
	groups := make([]NodeGroup, 0, len(c.NodeGroups))
	for _, existing := range c.NodeGroups {
		if existing.Name != name {
			groups = append(groups, existing)
		}
	}
	c.NodeGroups = groups
	return c
}

// Label returns a cluster label value.
func (c Cluster) Label(key string) (string, bool) {
	v, ok := c.Labels[key]
	return v, ok
}

// LabelBool parses a boolean cluster label, falling back to def when the label
// is absent or not a boolean.
func (c Cluster) LabelBool(key string, def bool) bool {
	v, ok := c.Labels[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

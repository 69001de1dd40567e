// Package monitor reports the health of a running cluster from the objects
// the Cluster API controllers maintain in the management cluster.
package monitor

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/applier"
	"github.com/imamik/magnum-capi/internal/resources"
)

// HealthStatus is the coarse health of a cluster.
type HealthStatus string

const (
	Healthy   HealthStatus = "HEALTHY"
	Unhealthy HealthStatus = "UNHEALTHY"
	Unknown   HealthStatus = "UNKNOWN"
)

// Report is the result of one poll.
type Report struct {
	Status HealthStatus `json:"status"`

	// Reasons holds one entry per node group: "ok" or why it is not healthy.
	Reasons map[string]string `json:"reasons,omitempty"`
}

// Monitor polls the health of one cluster.
type Monitor struct {
	applier   applier.Applier
	namespace string
	cluster   v1alpha1.Cluster
}

// New creates a monitor for a cluster.
func New(a applier.Applier, namespace string, c v1alpha1.Cluster) *Monitor {
	return &Monitor{applier: a, namespace: namespace, cluster: c}
}

// Poll reads the control plane and every MachineDeployment. Missing objects
// make the report UNKNOWN, transport errors are returned.
func (m *Monitor) Poll(ctx context.Context) (Report, error) {
	report := Report{Status: Healthy, Reasons: make(map[string]string, len(m.cluster.NodeGroups))}

	for _, ng := range m.cluster.NodeGroups {
		src := resources.KindOf(ng).StatusSource(m.namespace, m.cluster, ng)
		obj, err := m.applier.Get(ctx, src.Ref)
		if apierrors.IsNotFound(err) {
			report.Reasons[ng.Name] = fmt.Sprintf("%s not found", src.Ref)
			report.Status = Unknown
			continue
		}
		if err != nil {
			return Report{Status: Unknown}, fmt.Errorf("failed to read %s: %w", src.Ref, err)
		}

		reason := src.Health(obj)
		if reason == "" {
			reason = "ok"
		} else if report.Status == Healthy {
			report.Status = Unhealthy
		}
		report.Reasons[ng.Name] = reason
	}

	log.FromContext(ctx).V(1).Info("polled cluster health", "cluster", m.cluster.ID, "status", report.Status)
	return report, nil
}

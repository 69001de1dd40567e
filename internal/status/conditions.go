package status

import (
	"net"
	"net/url"
	"strconv"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ConditionType is a Cluster condition read by the aggregator.
type ConditionType string

const (
	ConditionControlPlaneReady   ConditionType = "ControlPlaneReady"
	ConditionInfrastructureReady ConditionType = "InfrastructureReady"
	ConditionReady               ConditionType = "Ready"
)

// Conditions is one observation of the conditions of an object.
type Conditions struct {
	values map[ConditionType]metav1.ConditionStatus
}

// ConditionsOf reads status.conditions. Malformed entries are skipped.
func ConditionsOf(obj *unstructured.Unstructured) Conditions {
	c := Conditions{values: map[ConditionType]metav1.ConditionStatus{}}

	list, found, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if !found || err != nil {
		return c
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		condType, _, _ := unstructured.NestedString(m, "type")
		condStatus, _, _ := unstructured.NestedString(m, "status")
		if condType == "" {
			continue
		}
		c.values[ConditionType(condType)] = metav1.ConditionStatus(condStatus)
	}
	return c
}

// Lookup returns the status of a condition and whether it is present.
func (c Conditions) Lookup(t ConditionType) (metav1.ConditionStatus, bool) {
	v, ok := c.values[t]
	return v, ok
}

// IsTrue reports whether the condition is present and literally True.
func (c Conditions) IsTrue(t ConditionType) bool {
	v, ok := c.Lookup(t)
	return ok && v == metav1.ConditionTrue
}

// Endpoint is the control plane endpoint of a Cluster.
type Endpoint struct {
	Host string
	Port int64
}

// URL returns the https URL of the endpoint.
func (e Endpoint) URL() string {
	u := url.URL{Scheme: "https", Host: net.JoinHostPort(e.Host, strconv.FormatInt(e.Port, 10))}
	return u.String()
}

// ControlPlaneEndpoint reads spec.controlPlaneEndpoint of a Cluster.
func ControlPlaneEndpoint(obj *unstructured.Unstructured) (Endpoint, bool) {
	host, _, _ := unstructured.NestedString(obj.Object, "spec", "controlPlaneEndpoint", "host")
	port, _, _ := unstructured.NestedInt64(obj.Object, "spec", "controlPlaneEndpoint", "port")
	if host == "" || port == 0 {
		return Endpoint{}, false
	}
	return Endpoint{Host: host, Port: port}, true
}

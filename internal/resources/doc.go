// Package resources builds the desired state of the management cluster
// objects that make up one Magnum cluster.
//
// Builders are pure: they never talk to the API server. The returned Graph is
// ordered so that every object is applied after the objects it reads, e.g. the
// cloud config secret before the node groups and the certificate authorities
// before the Cluster object.
package resources

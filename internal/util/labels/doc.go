// Package labels provides consistent labeling for management cluster resources.
//
// Resources carry the Cluster API cluster-name label so the child control
// plane associates them with their cluster, plus magnum-capi labels
// identifying the owning cluster record, node group and manager.
package labels

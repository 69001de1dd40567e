// Package naming provides consistent naming functions for management cluster
// resources.
//
// Every child resource of a cluster is named {cluster}-{suffix}, where
// {cluster} is the lower-cased cluster id. Node group resources additionally
// carry the node group name: {cluster}-{nodegroup}.
package naming

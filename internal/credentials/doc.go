// Package credentials issues and revokes the per-cluster application
// credential the child control plane uses to reach the cloud.
//
// A credential is keyed by (user, cluster id): its name is the cluster id.
// Issuing twice for the same key is a configuration error; revoking an
// absent credential is not an error.
package credentials

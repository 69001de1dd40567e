// Package applier applies, reads and deletes individual typed resources in
// the management cluster, wrapping the k8s.io/client-go dynamic client.
//
// Writes use Server-Side Apply with a fixed field manager, so repeated applies
// of the same desired state are no-ops and the child control plane can own
// other fields of the same object. Reads always go to the API server; there is
// no cache.
package applier

// Package poller periodically refreshes the status of stored clusters.
//
// The driver core never waits for the management cluster. Something outside
// of it has to call UpdateClusterStatus until a record reaches a terminal
// status; in the serve command that is the Poller, run by the
// controller-runtime manager.
package poller

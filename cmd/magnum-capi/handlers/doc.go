// Package handlers implements the CLI commands.
//
// Each handler loads the driver configuration, opens the record store and
// the management cluster and identity clients, runs one driver operation and
// prints the resulting record. Factory variables let tests replace the
// environment with in-memory fakes.
package handlers

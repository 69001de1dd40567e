// Package tui provides a Bubble Tea terminal dashboard that follows a
// cluster record until it reaches a terminal status.
package tui

import (
	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/monitor"
)

// StatusMsg carries the latest record and health of the watched cluster.
type StatusMsg struct {
	Cluster v1alpha1.Cluster

	// Health is nil when the health poll failed or was skipped.
	Health    *monitor.Report
	HealthErr string

	// FetchErr is set when the record itself could not be loaded.
	FetchErr string
}

// TickMsg is sent periodically to animate the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that watching is complete.
type DoneMsg struct{}

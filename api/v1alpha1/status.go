package v1alpha1

import (
	"fmt"
	"strings"
)

// Action is the lifecycle verb a status refers to.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Outcome is the progress of an action.
type Outcome string

const (
	OutcomeInProgress Outcome = "IN_PROGRESS"
	OutcomeComplete   Outcome = "COMPLETE"
	OutcomeFailed     Outcome = "FAILED"
)

// Status is a lifecycle state of a cluster or node group, composed of an
// action and an outcome (e.g. CREATE_IN_PROGRESS).
type Status string

const (
	CreateInProgress Status = "CREATE_IN_PROGRESS"
	CreateComplete   Status = "CREATE_COMPLETE"
	CreateFailed     Status = "CREATE_FAILED"
	UpdateInProgress Status = "UPDATE_IN_PROGRESS"
	UpdateComplete   Status = "UPDATE_COMPLETE"
	UpdateFailed     Status = "UPDATE_FAILED"
	DeleteInProgress Status = "DELETE_IN_PROGRESS"
	DeleteComplete   Status = "DELETE_COMPLETE"
	DeleteFailed     Status = "DELETE_FAILED"
)

// NewStatus composes a status from its parts.
func NewStatus(action Action, outcome Outcome) Status {
	return Status(fmt.Sprintf("%s_%s", action, outcome))
}

// Action returns the verb prefix of the status.
func (s Status) Action() Action {
	action, _, _ := strings.Cut(string(s), "_")
	return Action(action)
}

// Outcome returns the suffix of the status.
func (s Status) Outcome() Outcome {
	_, outcome, _ := strings.Cut(string(s), "_")
	return Outcome(outcome)
}

// WithOutcome keeps the action and replaces the outcome.
func (s Status) WithOutcome(outcome Outcome) Status {
	return NewStatus(s.Action(), outcome)
}

// Valid reports whether s is one of the nine known statuses.
func (s Status) Valid() bool {
	switch s.Action() {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return false
	}
	switch s.Outcome() {
	case OutcomeInProgress, OutcomeComplete, OutcomeFailed:
		return true
	}
	return false
}

func (s Status) IsInProgress() bool { return s.Outcome() == OutcomeInProgress }

func (s Status) IsComplete() bool { return s.Outcome() == OutcomeComplete }

func (s Status) IsFailed() bool { return s.Outcome() == OutcomeFailed }

// IsTerminal reports whether no refresh can advance the status further.
func (s Status) IsTerminal() bool {
	return s.IsComplete() || s.IsFailed()
}

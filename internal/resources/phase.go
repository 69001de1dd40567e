package resources

import "github.com/imamik/magnum-capi/api/v1alpha1"

// Phase is the rollout phase reported by a MachineDeployment.
type Phase string

const (
	PhaseScalingUp   Phase = "ScalingUp"
	PhaseScalingDown Phase = "ScalingDown"
	PhaseRunning     Phase = "Running"
	PhaseFailed      Phase = "Failed"
	PhaseUnknown     Phase = "Unknown"
)

// OutcomeForPhase maps a MachineDeployment phase onto a node group outcome.
// It returns false for phases without a defined transition, which leave the
// node group status as it is.
func OutcomeForPhase(phase Phase) (v1alpha1.Outcome, bool) {
	switch phase {
	case PhaseScalingUp, PhaseScalingDown:
		return v1alpha1.OutcomeInProgress, true
	case PhaseRunning:
		return v1alpha1.OutcomeComplete, true
	case PhaseFailed, PhaseUnknown:
		return v1alpha1.OutcomeFailed, true
	default:
		return "", false
	}
}

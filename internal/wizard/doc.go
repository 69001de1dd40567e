// Package wizard provides an interactive wizard that writes a cluster record.
//
// It uses charmbracelet/huh for form-based input collection. RunWizard
// collects a WizardResult, BuildRecord turns it into a cluster record and
// WriteRecord writes the YAML file consumed by "magnum-capi cluster create".
package wizard

// Package services defines the error taxonomy shared by the external
// collaborators (converter, thumbnailer) and the orchestrator.
//
// Collaborator failures are tagged with sentinel errors so callers can
// classify them with errors.Is: a failed or timed-out conversion is fatal for
// that derivative only, while configuration problems abort the invocation.
package services

package uploader

import "fmt"

// Status is the state of an upload task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusValidating Status = "validating"
	StatusUploading  Status = "uploading"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// StateTransition represents a valid task state transition.
type StateTransition struct {
	From Status
	To   Status
}

// validTransitions defines all valid transitions in the upload workflow.
// Succeeded is final. Failed is terminal for the batch; leaving it requires a
// new explicit submission of that task (RunSingle), modeled as failed->pending.
var validTransitions = map[StateTransition]bool{
	{StatusPending, StatusValidating}:   true,
	{StatusValidating, StatusUploading}: true,
	{StatusValidating, StatusFailed}:    true,
	{StatusUploading, StatusSucceeded}:  true,
	{StatusUploading, StatusFailed}:     true,
	{StatusPending, StatusFailed}:       true, // batch abandoned before the task started

	{StatusFailed, StatusPending}: true, // explicit re-submission
}

// ValidateTransition checks if a state transition is valid.
func ValidateTransition(from, to Status) error {
	if !validTransitions[StateTransition{From: from, To: to}] {
		return fmt.Errorf("invalid state transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal reports whether a status ends automatic processing for the
// current batch.
func IsTerminal(status Status) bool {
	return status == StatusSucceeded || status == StatusFailed
}

// CanRetry reports whether a task may be re-submitted from its current state.
func CanRetry(status Status) bool {
	return status == StatusFailed
}

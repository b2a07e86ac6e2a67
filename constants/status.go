package constants

// RunStatus is the canonical status for a pipeline run.
type RunStatus string

// Stable values (store these exact strings in DB). A run moves strictly
// forward through the stage statuses and ends in exactly one terminal state.
const (
	RunStatusPending     RunStatus = "PENDING"
	RunStatusClassifying RunStatus = "CLASSIFYING"
	RunStatusExtracting  RunStatus = "EXTRACTING"
	RunStatusValidating  RunStatus = "VALIDATING"
	RunStatusSucceeded   RunStatus = "SUCCEEDED"
	RunStatusFailed      RunStatus = "FAILED"
)

// Terminal reports whether the status ends a run.
func (s RunStatus) Terminal() bool {
	return s == RunStatusSucceeded || s == RunStatusFailed
}

// BookingType is the classification outcome for a request document.
type BookingType string

const (
	BookingSingle   BookingType = "single"
	BookingMultiple BookingType = "multiple"
)

package agent

import "errors"

var (
	// Run preconditions
	ErrModelClientRequired = errors.New("model client is required")
	ErrFlushRequired       = errors.New("flush func is required")

	// Execution errors
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")

	// Resume errors
	ErrResumeInFlight   = errors.New("a resume is already in flight for this conversation")
	ErrNoCheckpoint     = errors.New("no suspended checkpoint for this conversation")
	ErrDecisionRequired = errors.New("resume requires an approve or cancel decision")
)

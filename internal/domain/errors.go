package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by status queries against an unknown job id.
var ErrNotFound = errors.New("job not found")

// ValidationError rejects a malformed submission before any job record is
// created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a submission validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// JobError is the structured failure cause recorded on a failed job. Stage
// names one of the pipeline stages; Cause preserves the collaborator's
// failure text for diagnostics.
type JobError struct {
	Stage string `json:"stage"`
	Cause string `json:"cause"`
}

func (e *JobError) Error() string {
	return fmt.Sprintf("stage %s failed: %s", e.Stage, e.Cause)
}

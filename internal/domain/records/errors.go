package records

import (
	"errors"
	"fmt"
)

var (
	ErrVersionConflict               = errors.New("day version conflict")
	ErrIdempotencyKeyPayloadMismatch = errors.New("idempotency key payload mismatch")
	ErrBatchInProgress               = errors.New("daily batch in progress")
)

// BatchError reports the step a daily batch failed at. The batch runs in one
// transaction, so Committed is always empty: nothing from the batch persisted.
type BatchError struct {
	Step      Step
	Committed []Step
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("daily batch failed at %s: %v", e.Step, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// internal/types/errors.go
package types

import (
	"errors"
	"fmt"
)

// ValidationError is a caller-side input error. It is raised before any
// network call and is not retryable as-is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ChainSubmissionError wraps a network, signing or fee failure during a chain
// submission. Retryable with the same or re-derived instructions.
type ChainSubmissionError struct {
	Step string
	Err  error
}

func (e *ChainSubmissionError) Error() string {
	return fmt.Sprintf("chain submission failed at %s: %v", e.Step, e.Err)
}

func (e *ChainSubmissionError) Unwrap() error { return e.Err }

// AmbiguousConfirmationError means a transaction was broadcast but its fate is
// unknown. The caller must re-query chain state before retrying, otherwise a
// duplicate mint or burn is possible.
type AmbiguousConfirmationError struct {
	Signature string
	Err       error
}

func (e *AmbiguousConfirmationError) Error() string {
	return fmt.Sprintf("confirmation unknown for %s: %v", e.Signature, e.Err)
}

func (e *AmbiguousConfirmationError) Unwrap() error { return e.Err }

// MintError covers token mint failures. Stage identifies which step failed so
// the caller can decide between retry and abort.
type MintError struct {
	Stage string
	Err   error
}

func (e *MintError) Error() string {
	return fmt.Sprintf("mint failed at %s: %v", e.Stage, e.Err)
}

func (e *MintError) Unwrap() error { return e.Err }

// PoolCreationError covers pool creation failures. Either both pool and
// escrow are recorded, or neither; this error means neither.
type PoolCreationError struct {
	Stage string
	Err   error
}

func (e *PoolCreationError) Error() string {
	return fmt.Sprintf("pool creation failed at %s: %v", e.Stage, e.Err)
}

func (e *PoolCreationError) Unwrap() error { return e.Err }

// StaleObservationError rejects an oracle update that would lower a
// monotonic counter. The stored counters keep their previous values.
type StaleObservationError struct {
	PoolID   string
	Counter  string
	Previous float64
	Observed float64
}

func (e *StaleObservationError) Error() string {
	return fmt.Sprintf("stale observation for pool %s: %s went %v -> %v",
		e.PoolID, e.Counter, e.Previous, e.Observed)
}

// BurnExecutionError covers swap-and-burn failures. Funds are restored to the
// source bucket and no BurnEvent is appended.
type BurnExecutionError struct {
	Stage string
	Err   error
}

func (e *BurnExecutionError) Error() string {
	return fmt.Sprintf("burn execution failed at %s: %v", e.Stage, e.Err)
}

func (e *BurnExecutionError) Unwrap() error { return e.Err }

// ErrEscrowStillLocked is returned on withdrawal attempts before unlock.
var ErrEscrowStillLocked = errors.New("escrow is still locked")

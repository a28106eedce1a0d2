package txn

import (
	"fmt"

	"github.com/pkg/errors"
)

//ExecutionError reports a composite script rejected or failed by the engine.
//The batch that produced it keeps its statements so the caller can inspect
//them, fix the data and retry.
type ExecutionError struct {
	Script        string
	Err           error
	Indeterminate bool
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction script failed: %v", e.Err)
}

//IsIndeterminate reports whether the engine-side outcome is unknown
func (e *ExecutionError) IsIndeterminate() bool {
	return e.Indeterminate
}

//TxError reports a failed transaction boundary operation (begin, commit or
//rollback). Boundary failures are never retried here: retrying a commit could
//apply its effects twice.
type TxError struct {
	Op            string
	Err           error
	Indeterminate bool
}

func (e *TxError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

//IsIndeterminate reports whether the engine-side outcome is unknown
func (e *TxError) IsIndeterminate() bool {
	return e.Indeterminate
}

//StateError reports a transaction handle used outside its Open state. This is
//a caller contract violation, detected before anything reaches the engine.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s: transaction is %s, not open", e.Op, e.State)
}

//IsStateViolation marks the error as a caller contract violation
func (e *StateError) IsStateViolation() bool {
	return true
}

type indeterminate interface {
	IsIndeterminate() bool
}

//IsIndeterminate returns whether the error cause is an operation interrupted
//mid-flight, leaving the engine-side outcome unknown. Callers should re-query
//state before retrying such a unit of work.
func IsIndeterminate(err error) bool {
	e, ok := errors.Cause(err).(indeterminate)
	return ok && e.IsIndeterminate()
}

type stateViolation interface {
	IsStateViolation() bool
}

//IsStateViolation returns whether the error is a transaction handle misuse
func IsStateViolation(err error) bool {
	e, ok := errors.Cause(err).(stateViolation)
	return ok && e.IsStateViolation()
}

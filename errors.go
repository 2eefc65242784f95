package threadpool

import (
	"errors"
	"fmt"
)

// ErrDisconnected is reported by a Receiver whose job never produced a value,
// i.e. the job was still queued when the pool was closed, or it was submitted
// after Close, or the receiver was already consumed.
var ErrDisconnected = errors.New("job dropped without a result")

// PanicError is reported by a Receiver whose job panicked. The worker running
// the job recovers the panic and survives; the panic value is carried here so
// the caller doesn't lose the failure details.
type PanicError struct {
	Value any // the value passed to panic
}

// Error returns the string representation of the recovered panic.
func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}

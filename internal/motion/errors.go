package motion

import (
	"errors"
	"fmt"
)

// ErrMotionNotFound is returned when a motion name has no match in a Holder.
var ErrMotionNotFound = errors.New("motion: not found")

// PreconditionError is the panic value for caller contract violations:
// mismatched keyframe bone counts, empty repeat ranges, bad indices.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("motion: %s: %s", e.Op, e.Reason)
}

func precondition(op, format string, args ...any) {
	panic(&PreconditionError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

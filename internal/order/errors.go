package order

import (
	"fmt"
	"strings"
)

// CycleEdge is one constraint on a reported cycle
type CycleEdge struct {
	From     string
	To       string
	Category Category
	Reason   string
}

// CycleError is returned when the constraints admit no order. Cycle lists the instance
// keys of the changes on the loop in walking order: each key has a constraint to the
// next, and the last one has a constraint back to the first.
type CycleError struct {
	Cycle   []string
	Indices []int
	Edges   []CycleEdge
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return "dependency cycle detected"
	}
	return fmt.Sprintf("dependency cycle detected: %s -> %s", strings.Join(e.Cycle, " -> "), e.Cycle[0])
}

// UnexpectedError reports a broken invariant inside the ordering engine
type UnexpectedError struct {
	Message string
}

func (e *UnexpectedError) Error() string {
	return "unexpected ordering failure: " + e.Message
}

func unexpected(format string, args ...any) *UnexpectedError {
	return &UnexpectedError{Message: fmt.Sprintf(format, args...)}
}

// MalformedChangeError reports a change the engine cannot place, such as a nil change
// or one without a target identifier
type MalformedChangeError struct {
	Index  int
	Reason string
}

func (e *MalformedChangeError) Error() string {
	return fmt.Sprintf("malformed change at index %d: %s", e.Index, e.Reason)
}

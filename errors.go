package rpl

import "fmt"

// ContractViolationError is the panic value raised when a producer
// signals a [Consumer] that has already received a terminal signal,
// and the module was built with the rpldebug tag.
//
// Without the tag, the same misuse is silently ignored.
type ContractViolationError struct {
	// Signal is the name of the offending call, e.g. "PutNext".
	Signal string
}

func (e ContractViolationError) Error() string {
	return "rpl: " + e.Signal + " called on a consumer that already received a terminal signal"
}

// CleanupPanicError describes a cleanup action that panicked
// while its [Lifetime] was ending.
// It is logged, never re-raised.
type CleanupPanicError struct {
	Value any
	Stack []byte
}

func (e *CleanupPanicError) Error() string {
	return fmt.Sprintf("rpl: lifetime cleanup action panicked: %v", e.Value)
}

// Package status defines the closed outcome taxonomy every fallible
// operation in mantiskv returns, and the per-handle diagnostic string
// that accompanies non-trivial outcomes.
package status

import "fmt"

// Status is the result of a fallible engine or facade operation. The set
// is closed: no engine, iterator, or transaction may invent a new value.
type Status int

const (
	OK Status = iota
	UnknownError
	NotFound
	NotSupported
	InvalidArgument
	ConfigParsingError
	ConfigTypeError
	StoppedByCB
	OutOfMemory
	WrongEngineName
	TransactionScopeError
	DefragError
	ComparatorMismatch
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case UnknownError:
		return "UNKNOWN_ERROR"
	case NotFound:
		return "NOT_FOUND"
	case NotSupported:
		return "NOT_SUPPORTED"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case ConfigParsingError:
		return "CONFIG_PARSING_ERROR"
	case ConfigTypeError:
		return "CONFIG_TYPE_ERROR"
	case StoppedByCB:
		return "STOPPED_BY_CB"
	case OutOfMemory:
		return "OUT_OF_MEMORY"
	case WrongEngineName:
		return "WRONG_ENGINE_NAME"
	case TransactionScopeError:
		return "TRANSACTION_SCOPE_ERROR"
	case DefragError:
		return "DEFRAG_ERROR"
	case ComparatorMismatch:
		return "COMPARATOR_MISMATCH"
	default:
		return fmt.Sprintf("STATUS(%d)", int(s))
	}
}

// IsError reports whether s is a hard error rather than an ordinary,
// non-error outcome (OK, NotFound, StoppedByCB). errormsg() is cleared
// on the non-error outcomes.
func (s Status) IsError() bool {
	return s != OK && s != NotFound && s != StoppedByCB
}

// Error is the error value that carries a Status together with the
// failing operation and a diagnostic string. Every non-nil error the
// engines and the facade produce themselves is an *Error built by New.
type Error struct {
	Status  Status
	Op      string // operation that failed, e.g. "put", "open"
	Message string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Status, e.Message)
}

// New builds a status error for operation op with the given message.
func New(st Status, op, format string, args ...interface{}) *Error {
	return &Error{Status: st, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Of extracts the Status carried by err, defaulting to OK for a nil error
// and UnknownError for anything not produced by this package.
func Of(err error) Status {
	if err == nil {
		return OK
	}
	if se, ok := err.(*Error); ok {
		return se.Status
	}
	return UnknownError
}

// Package dberrors classifies errors the way errors/error_handler.go
// does (its ErrorContext/Severity/Category triple), adapted to wrap
// status.Error instead of its own WAL/corruption-specific categories.
package dberrors

import (
	"fmt"
	"time"

	"mantiskv/status"
)

// Severity mirrors errors.ErrorSeverity.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Category mirrors errors.ErrorCategory, narrowed to the sources of
// error this library actually produces.
type Category int

const (
	CategoryUsage Category = iota
	CategoryConfig
	CategoryStorage
	CategoryTransaction
	CategoryCorruption
)

func (c Category) String() string {
	switch c {
	case CategoryUsage:
		return "USAGE"
	case CategoryConfig:
		return "CONFIG"
	case CategoryStorage:
		return "STORAGE"
	case CategoryTransaction:
		return "TRANSACTION"
	case CategoryCorruption:
		return "CORRUPTION"
	default:
		return "UNKNOWN"
	}
}

// Context is the classification attached to an error at the point it
// crosses a package boundary, for logging and operator-facing display.
type Context struct {
	Operation string
	Severity  Severity
	Category  Category
	Timestamp time.Time
}

// DBError pairs a raw error with its Context, the same shape as
// MantisError.
type DBError struct {
	Err     error
	Context Context
}

func (e *DBError) Error() string {
	return fmt.Sprintf("[%s:%s] %s: %s", e.Context.Category, e.Context.Severity, e.Context.Operation, e.Err.Error())
}

func (e *DBError) Unwrap() error { return e.Err }

// Classify wraps err with a Context derived from its status.Status, when
// it carries one. Errors from outside this library default to
// CategoryStorage/SeverityHigh, a conservative default for unrecognized
// errors.
func Classify(op string, err error) *DBError {
	ctx := Context{Operation: op, Severity: SeverityHigh, Category: CategoryStorage}
	if _, ok := err.(*status.Error); err != nil && !ok {
		return &DBError{Err: err, Context: ctx}
	}

	switch status.Of(err) {
	case status.OK:
		ctx.Severity = SeverityLow
	case status.NotFound, status.StoppedByCB:
		ctx.Severity = SeverityLow
		ctx.Category = CategoryUsage
	case status.InvalidArgument, status.NotSupported, status.WrongEngineName:
		ctx.Severity = SeverityMedium
		ctx.Category = CategoryUsage
	case status.ConfigParsingError, status.ConfigTypeError, status.ComparatorMismatch:
		ctx.Severity = SeverityMedium
		ctx.Category = CategoryConfig
	case status.TransactionScopeError:
		ctx.Severity = SeverityHigh
		ctx.Category = CategoryTransaction
	case status.OutOfMemory, status.DefragError:
		ctx.Severity = SeverityCritical
		ctx.Category = CategoryStorage
	case status.UnknownError:
		ctx.Severity = SeverityCritical
		ctx.Category = CategoryCorruption
	}

	return &DBError{Err: err, Context: ctx}
}

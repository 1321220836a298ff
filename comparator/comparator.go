// Package comparator defines the total order sorted engines use over
// byte-string keys. mantiskv does not implement a pluggable custom
// comparator subsystem of its own; it defines only the small interface
// engines consume, plus the default bytewise order every sorted engine
// falls back to.
package comparator

import "bytes"

// Comparator is a total order over byte strings, identified by a stable
// name. Sorted persistent engines bind the name into their on-device
// manifest and refuse to reopen with a comparator registered under a
// different name.
type Comparator interface {
	// Compare returns the sign of a - b under this order.
	Compare(a, b []byte) int
	// Name returns the comparator's stable identity.
	Name() string
}

// Bytewise is the default comparator: plain lexicographic byte order.
type Bytewise struct{}

func (Bytewise) Compare(a, b []byte) int { return bytes.Compare(a, b) }
func (Bytewise) Name() string            { return "bytewise_comparator" }

// Default is the shared Bytewise instance used whenever a configuration
// does not supply an explicit comparator.
var Default Comparator = Bytewise{}

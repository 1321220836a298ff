// Package engine defines the polymorphic storage contract every concrete
// engine implements, the iterator and transaction contracts that ride
// on top of it, and the process-wide engine factory registry concrete
// engines self-register into.
//
// Go interfaces have no default methods, so the rule that an
// unsupported capability returns NOT_SUPPORTED by default is modeled by
// Base: every concrete engine embeds Base and overrides only the
// operations it actually implements, inheriting NotSupported stubs for
// the rest — a polymorphic-surface-with-defaults idea expressed with
// Go's embedding instead of virtual dispatch.
package engine

import "mantiskv/status"

// KVCallback is invoked once per record during a range scan. Returning a
// non-zero value aborts the scan early with status.StoppedByCB.
type KVCallback func(key, value []byte) int

// ValueCallback is invoked with the value of a successful point lookup.
type ValueCallback func(value []byte)

// Engine is the capability set a concrete storage engine implements.
// Required operations (Name, Get, Put, Remove, Close) have no default;
// every optional operation not overridden returns status.NotSupported
// via Base.
type Engine interface {
	// Name returns the engine's registered name.
	Name() string

	// Get invokes cb with the value if key is present; returns
	// status.NotFound otherwise.
	Get(key []byte, cb ValueCallback) error
	// Put inserts or fully overwrites key's value.
	Put(key, value []byte) error
	// Remove deletes key. Returns status.NotFound if key was absent and
	// leaves the store unchanged.
	Remove(key []byte) error

	// Exists is observably equivalent to Get with a no-op callback.
	Exists(key []byte) error

	// CountAll returns the total number of live records.
	CountAll() (uint64, error)
	// CountAbove counts records with key strictly greater than key.
	CountAbove(key []byte) (uint64, error)
	// CountEqualAbove counts records with key >= key.
	CountEqualAbove(key []byte) (uint64, error)
	// CountEqualBelow counts records with key <= key.
	CountEqualBelow(key []byte) (uint64, error)
	// CountBelow counts records with key strictly less than key.
	CountBelow(key []byte) (uint64, error)
	// CountBetween counts records in [lo, hi). Returns 0 without error
	// if compare(lo, hi) >= 0.
	CountBetween(lo, hi []byte) (uint64, error)

	// GetAll iterates every record in comparator order on sorted
	// engines, unspecified order otherwise.
	GetAll(cb KVCallback) error
	GetAbove(key []byte, cb KVCallback) error
	GetEqualAbove(key []byte, cb KVCallback) error
	GetEqualBelow(key []byte, cb KVCallback) error
	GetBelow(key []byte, cb KVCallback) error
	GetBetween(lo, hi []byte, cb KVCallback) error

	// Defrag is a compaction hint. Both percentages must be in [0,100]
	// and sum to at most 100.
	Defrag(startPercent, amountPercent int) error

	// BeginTx returns a new batched-write transaction handle.
	BeginTx() (Transaction, error)

	// NewIterator returns a read cursor; NewWriteIterator a cursor that
	// also supports buffered range modification + commit/abort.
	NewIterator() (Iterator, error)
	NewWriteIterator() (WriteIterator, error)

	// Close releases the engine's resources. Owned exclusively by the
	// Database that opened it.
	Close() error
}

// Base implements every optional Engine operation as status.NotSupported.
// Concrete engines embed Base and shadow the methods they implement.
type Base struct{ EngineName string }

func (Base) Exists(key []byte) error { return status.New(status.NotSupported, "exists", "not supported") }

func (Base) CountAll() (uint64, error) {
	return 0, status.New(status.NotSupported, "count_all", "not supported")
}
func (Base) CountAbove(key []byte) (uint64, error) {
	return 0, status.New(status.NotSupported, "count_above", "not supported")
}
func (Base) CountEqualAbove(key []byte) (uint64, error) {
	return 0, status.New(status.NotSupported, "count_equal_above", "not supported")
}
func (Base) CountEqualBelow(key []byte) (uint64, error) {
	return 0, status.New(status.NotSupported, "count_equal_below", "not supported")
}
func (Base) CountBelow(key []byte) (uint64, error) {
	return 0, status.New(status.NotSupported, "count_below", "not supported")
}
func (Base) CountBetween(lo, hi []byte) (uint64, error) {
	return 0, status.New(status.NotSupported, "count_between", "not supported")
}

func (Base) GetAll(cb KVCallback) error {
	return status.New(status.NotSupported, "get_all", "not supported")
}
func (Base) GetAbove(key []byte, cb KVCallback) error {
	return status.New(status.NotSupported, "get_above", "not supported")
}
func (Base) GetEqualAbove(key []byte, cb KVCallback) error {
	return status.New(status.NotSupported, "get_equal_above", "not supported")
}
func (Base) GetEqualBelow(key []byte, cb KVCallback) error {
	return status.New(status.NotSupported, "get_equal_below", "not supported")
}
func (Base) GetBelow(key []byte, cb KVCallback) error {
	return status.New(status.NotSupported, "get_below", "not supported")
}
func (Base) GetBetween(lo, hi []byte, cb KVCallback) error {
	return status.New(status.NotSupported, "get_between", "not supported")
}

func (Base) Defrag(startPercent, amountPercent int) error {
	return status.New(status.NotSupported, "defrag", "not supported")
}

func (Base) BeginTx() (Transaction, error) {
	return nil, status.New(status.NotSupported, "begin_tx", "not supported")
}

func (Base) NewIterator() (Iterator, error) {
	return nil, status.New(status.NotSupported, "new_iterator", "not supported")
}
func (Base) NewWriteIterator() (WriteIterator, error) {
	return nil, status.New(status.NotSupported, "new_write_iterator", "not supported")
}

// ValidateDefragArgs applies the range check every engine's Defrag
// requires before it delegates to the allocator.
func ValidateDefragArgs(startPercent, amountPercent int) error {
	if startPercent < 0 || startPercent > 100 || amountPercent < 0 || amountPercent > 100 {
		return status.New(status.InvalidArgument, "defrag", "percentages must be in [0,100]")
	}
	if startPercent+amountPercent > 100 {
		return status.New(status.InvalidArgument, "defrag", "start+amount must be <= 100")
	}
	return nil
}

package engine

import "mantiskv/status"

// CursorState is the tagged state of an iterator's cursor, encoded as a
// tagged state rather than a nullable pointer.
type CursorState int

const (
	// Undefined: no successful seek since creation. Engines move a
	// cursor to Invalidated after a failed seek or navigation. Reading a
	// key/range from either state is undefined; every read method below
	// instead returns status.NotFound defensively.
	Undefined CursorState = iota
	Positioned
	Invalidated
)

// Iterator is a read cursor over one engine's records. Iterators are
// exclusive under a single-cursor-per-thread discipline; Close releases
// any held locks.
type Iterator interface {
	Seek(key []byte) error
	SeekLower(key []byte) error
	SeekLowerEq(key []byte) error
	SeekHigher(key []byte) error
	SeekHigherEq(key []byte) error
	SeekToFirst() error
	SeekToLast() error

	Next() error
	Prev() error
	// IsNext probes whether Next would succeed without changing state.
	IsNext() bool

	// Key returns the current key. Requires Positioned state.
	Key() ([]byte, error)
	// ReadRange returns a borrowed slice into the current value, clamped
	// to [pos, min(pos+n, len)).
	ReadRange(pos, n int) ([]byte, error)

	Close() error
}

// WriteIterator extends Iterator with a buffered range-modification and
// commit/abort surface. Any seek/navigation call discards the side log.
type WriteIterator interface {
	Iterator

	// WriteRange returns a mutable buffer for [pos, pos+n) staged in a
	// side log; not visible until Commit.
	WriteRange(pos, n int) ([]byte, error)
	// Commit atomically applies every staged range of the
	// currently-positioned record.
	Commit() error
	// Abort discards the side log without applying it.
	Abort() error
}

// BaseIterator implements the reverse-navigation and bound-seeking
// methods engines without that capability leave unsupported, the same
// embed-and-shadow pattern Base uses for Engine.
type BaseIterator struct{}

func (BaseIterator) SeekLower(key []byte) error {
	return status.New(status.NotSupported, "seek_lower", "not supported")
}
func (BaseIterator) SeekLowerEq(key []byte) error {
	return status.New(status.NotSupported, "seek_lower_eq", "not supported")
}
func (BaseIterator) SeekHigher(key []byte) error {
	return status.New(status.NotSupported, "seek_higher", "not supported")
}
func (BaseIterator) SeekHigherEq(key []byte) error {
	return status.New(status.NotSupported, "seek_higher_eq", "not supported")
}
func (BaseIterator) SeekToLast() error {
	return status.New(status.NotSupported, "seek_to_last", "not supported")
}
func (BaseIterator) Prev() error {
	return status.New(status.NotSupported, "prev", "not supported")
}
func (BaseIterator) IsNext() bool { return false }

// ClampRange clamps to [pos, min(pos+n,len)), including overflow-safe
// handling of pos+n.
func ClampRange(valueLen, pos, n int) (start, end int) {
	if pos < 0 {
		pos = 0
	}
	if pos > valueLen {
		pos = valueLen
	}
	end = pos + n
	if end < pos || end > valueLen { // overflow or past the end
		end = valueLen
	}
	return pos, end
}

package sortedengine

import (
	"mantiskv/engine"
	"mantiskv/status"
)

// writeIterator adds a buffered side log of range writes on top of
// iterator, applied as one atomic Put through the owning engine's pool
// on Commit. Any seek/navigation call discards the pending side log,
// matching the base Iterator contract.
type writeIterator struct {
	iterator
	pending []byte // full-value scratch buffer, nil until first WriteRange
}

func (w *writeIterator) resetPending() {
	w.pending = nil
}

func (w *writeIterator) Seek(key []byte) error          { w.resetPending(); return w.iterator.Seek(key) }
func (w *writeIterator) SeekLower(key []byte) error     { w.resetPending(); return w.iterator.SeekLower(key) }
func (w *writeIterator) SeekLowerEq(key []byte) error   { w.resetPending(); return w.iterator.SeekLowerEq(key) }
func (w *writeIterator) SeekHigher(key []byte) error    { w.resetPending(); return w.iterator.SeekHigher(key) }
func (w *writeIterator) SeekHigherEq(key []byte) error  { w.resetPending(); return w.iterator.SeekHigherEq(key) }
func (w *writeIterator) SeekToFirst() error             { w.resetPending(); return w.iterator.SeekToFirst() }
func (w *writeIterator) SeekToLast() error              { w.resetPending(); return w.iterator.SeekToLast() }
func (w *writeIterator) Next() error                    { w.resetPending(); return w.iterator.Next() }
func (w *writeIterator) Prev() error                    { w.resetPending(); return w.iterator.Prev() }

// WriteRange returns a mutable slice over [pos, pos+n) of a scratch copy
// of the current value; the copy is staged until Commit.
func (w *writeIterator) WriteRange(pos, n int) ([]byte, error) {
	if w.state != engine.Positioned {
		return nil, status.New(status.NotFound, "write_range", "iterator not positioned")
	}
	if w.pending == nil {
		w.eng.mu.RLock()
		cur := w.eng.vals[w.keys[w.pos]]
		w.pending = append([]byte(nil), cur...)
		w.eng.mu.RUnlock()
	}
	start, end := engine.ClampRange(len(w.pending), pos, n)
	return w.pending[start:end], nil
}

func (w *writeIterator) Commit() error {
	if w.pending == nil {
		return nil
	}
	key := w.keys[w.pos]
	if err := w.eng.Put([]byte(key), w.pending); err != nil {
		return err
	}
	w.pending = nil
	return nil
}

func (w *writeIterator) Abort() error {
	w.pending = nil
	return nil
}

package sortedengine

import (
	"sort"

	"mantiskv/engine"
	"mantiskv/status"
)

// iterator walks a point-in-time snapshot of the key slice, the same
// copy-then-walk approach vsortedengine uses; a persistent engine's
// snapshot additionally has to survive the owning Engine's writes
// landing in the log concurrently, which it does since the snapshot
// never reads e.vals directly outside of ReadRange's locked lookup.
type iterator struct {
	eng   *Engine
	keys  []string
	pos   int
	state engine.CursorState
}

func (it *iterator) Seek(key []byte) error {
	idx := sort.Search(len(it.keys), func(i int) bool { return it.eng.cmp.Compare([]byte(it.keys[i]), key) >= 0 })
	if idx >= len(it.keys) || it.eng.cmp.Compare([]byte(it.keys[idx]), key) != 0 {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek", "key not found")
	}
	it.pos, it.state = idx, engine.Positioned
	return nil
}

// SeekLower reports the first key greater than or equal to key, not the
// last key strictly below it — the bound-seek is asymmetric on this
// engine; see DESIGN.md's Open Question entry for SeekLower.
func (it *iterator) SeekLower(key []byte) error {
	return it.SeekHigherEq(key)
}

func (it *iterator) SeekLowerEq(key []byte) error {
	idx := sort.Search(len(it.keys), func(i int) bool { return it.eng.cmp.Compare([]byte(it.keys[i]), key) > 0 }) - 1
	if idx < 0 {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek_lower_eq", "no key at or below")
	}
	it.pos, it.state = idx, engine.Positioned
	return nil
}

func (it *iterator) SeekHigher(key []byte) error {
	idx := sort.Search(len(it.keys), func(i int) bool { return it.eng.cmp.Compare([]byte(it.keys[i]), key) > 0 })
	if idx >= len(it.keys) {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek_higher", "no key above")
	}
	it.pos, it.state = idx, engine.Positioned
	return nil
}

func (it *iterator) SeekHigherEq(key []byte) error {
	idx := sort.Search(len(it.keys), func(i int) bool { return it.eng.cmp.Compare([]byte(it.keys[i]), key) >= 0 })
	if idx >= len(it.keys) {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek_higher_eq", "no key at or above")
	}
	it.pos, it.state = idx, engine.Positioned
	return nil
}

func (it *iterator) SeekToFirst() error {
	if len(it.keys) == 0 {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek_to_first", "empty engine")
	}
	it.pos, it.state = 0, engine.Positioned
	return nil
}

func (it *iterator) SeekToLast() error {
	if len(it.keys) == 0 {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek_to_last", "empty engine")
	}
	it.pos, it.state = len(it.keys)-1, engine.Positioned
	return nil
}

func (it *iterator) Next() error {
	if it.state != engine.Positioned || it.pos+1 >= len(it.keys) {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "next", "no next key")
	}
	it.pos++
	return nil
}

func (it *iterator) Prev() error {
	if it.state != engine.Positioned || it.pos <= 0 {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "prev", "no previous key")
	}
	it.pos--
	return nil
}

func (it *iterator) IsNext() bool { return it.state == engine.Positioned && it.pos+1 < len(it.keys) }

func (it *iterator) Key() ([]byte, error) {
	if it.state != engine.Positioned {
		return nil, status.New(status.NotFound, "key", "iterator not positioned")
	}
	return []byte(it.keys[it.pos]), nil
}

func (it *iterator) ReadRange(pos, n int) ([]byte, error) {
	if it.state != engine.Positioned {
		return nil, status.New(status.NotFound, "read_range", "iterator not positioned")
	}
	it.eng.mu.RLock()
	defer it.eng.mu.RUnlock()
	v := it.eng.vals[it.keys[it.pos]]
	start, end := engine.ClampRange(len(v), pos, n)
	return v[start:end], nil
}

func (it *iterator) Close() error { return nil }

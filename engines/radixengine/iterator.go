package radixengine

import (
	"sort"

	"mantiskv/engine"
	"mantiskv/status"
)

// iterator embeds engine.BaseIterator: radix's cache-fronted variant in
// original_source has no reverse cursor, so SeekToLast/Prev stay
// NotSupported here rather than being reimplemented (see DESIGN.md). The
// four bound-seek methods are still implemented below, ordered on raw
// key bytes the same way Seek already is.
type iterator struct {
	engine.BaseIterator
	eng   *Engine
	keys  []string
	pos   int
	state engine.CursorState
}

func (it *iterator) Seek(key []byte) error {
	idx := sort.SearchStrings(it.keys, string(key))
	if idx >= len(it.keys) || it.keys[idx] != string(key) {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek", "key not found")
	}
	it.pos, it.state = idx, engine.Positioned
	return nil
}

func (it *iterator) SeekLower(key []byte) error {
	idx := sort.SearchStrings(it.keys, string(key)) - 1
	if idx < 0 {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek_lower", "no key below")
	}
	it.pos, it.state = idx, engine.Positioned
	return nil
}

func (it *iterator) SeekLowerEq(key []byte) error {
	idx := sort.Search(len(it.keys), func(i int) bool { return it.keys[i] > string(key) }) - 1
	if idx < 0 {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek_lower_eq", "no key at or below")
	}
	it.pos, it.state = idx, engine.Positioned
	return nil
}

func (it *iterator) SeekHigher(key []byte) error {
	idx := sort.Search(len(it.keys), func(i int) bool { return it.keys[i] > string(key) })
	if idx >= len(it.keys) {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "seek_higher", "no key above")
	}
	it.pos, it.state = idx, engine.Positioned
	return nil
}

func (it *iterator) SeekHigherEq(key []byte) error {
	idx := sort.SearchStrings(it.keys, string(key))
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

func (it *iterator) Next() error {
	if it.state != engine.Positioned || it.pos+1 >= len(it.keys) {
		it.state = engine.Invalidated
		return status.New(status.NotFound, "next", "no next key")
	}
	it.pos++
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

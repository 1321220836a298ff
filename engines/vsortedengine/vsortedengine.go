// Package vsortedengine implements a volatile sorted engine alongside
// the persistent one: a comparator-ordered, non-durable map. Grounded
// in pmemkv's vsmap, which is itself backed by a
// std::map — the Go analogue kept here is a sorted key slice plus a
// value map, the same "index over an unordered store" split the
// persistent sorted engine in engines/sortedengine uses, minus the
// write-ahead log.
package vsortedengine

import (
	"sort"
	"sync"

	"mantiskv/comparator"
	"mantiskv/engine"
	"mantiskv/option"
	"mantiskv/status"
)

const Name = "vsorted"

func init() {
	engine.Register(Name, func(opts *option.Options) (engine.Engine, error) {
		cmp := comparator.Default
		if opts != nil {
			if obj, err := opts.GetObject("comparator"); err == nil {
				if c, ok := obj.(comparator.Comparator); ok {
					cmp = c
				}
			}
		}
		return New(cmp), nil
	})
}

type Engine struct {
	engine.Base
	mu   sync.RWMutex
	cmp  comparator.Comparator
	keys []string // kept sorted by cmp
	vals map[string][]byte
}

func New(cmp comparator.Comparator) *Engine {
	if cmp == nil {
		cmp = comparator.Default
	}
	return &Engine{Base: engine.Base{EngineName: Name}, cmp: cmp, vals: make(map[string][]byte)}
}

func (e *Engine) Name() string { return Name }

func (e *Engine) less(a, b string) bool { return e.cmp.Compare([]byte(a), []byte(b)) < 0 }

// searchKeys returns the index of the first key >= target.
func (e *Engine) searchKeys(target []byte) int {
	return sort.Search(len(e.keys), func(i int) bool {
		return e.cmp.Compare([]byte(e.keys[i]), target) >= 0
	})
}

func (e *Engine) Get(key []byte, cb engine.ValueCallback) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vals[string(key)]
	if !ok {
		return status.New(status.NotFound, "get", "key not found")
	}
	cb(v)
	return nil
}

func (e *Engine) Put(key, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)

	k := string(key)
	if _, exists := e.vals[k]; !exists {
		idx := e.searchKeys(key)
		e.keys = append(e.keys, "")
		copy(e.keys[idx+1:], e.keys[idx:])
		e.keys[idx] = k
	}
	e.vals[k] = cp
	return nil
}

func (e *Engine) Remove(key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	k := string(key)
	if _, exists := e.vals[k]; !exists {
		return status.New(status.NotFound, "remove", "key not found")
	}
	delete(e.vals, k)
	idx := e.searchKeys(key)
	e.keys = append(e.keys[:idx], e.keys[idx+1:]...)
	return nil
}

func (e *Engine) Exists(key []byte) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.vals[string(key)]; !ok {
		return status.New(status.NotFound, "exists", "key not found")
	}
	return nil
}

func (e *Engine) CountAll() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(len(e.keys)), nil
}

func (e *Engine) CountBetween(lo, hi []byte) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.cmp.Compare(lo, hi) >= 0 {
		return 0, nil
	}
	start := e.searchKeys(lo)
	end := e.searchKeys(hi)
	if end < start {
		return 0, nil
	}
	return uint64(end - start), nil
}

func (e *Engine) CountAbove(key []byte) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	start := e.searchKeys(key)
	for start < len(e.keys) && e.cmp.Compare([]byte(e.keys[start]), key) == 0 {
		start++
	}
	return uint64(len(e.keys) - start), nil
}

func (e *Engine) CountEqualAbove(key []byte) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(len(e.keys) - e.searchKeys(key)), nil
}

func (e *Engine) CountBelow(key []byte) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(e.searchKeys(key)), nil
}

func (e *Engine) CountEqualBelow(key []byte) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	end := e.searchKeys(key)
	if end < len(e.keys) && e.cmp.Compare([]byte(e.keys[end]), key) == 0 {
		end++
	}
	return uint64(end), nil
}

func (e *Engine) GetAll(cb engine.KVCallback) error {
	return e.scan(nil, nil, false, false, false, cb)
}

func (e *Engine) GetAbove(key []byte, cb engine.KVCallback) error {
	return e.scan(key, nil, true, false, false, cb)
}

func (e *Engine) GetEqualAbove(key []byte, cb engine.KVCallback) error {
	return e.scan(key, nil, false, false, false, cb)
}

func (e *Engine) GetBetween(lo, hi []byte, cb engine.KVCallback) error {
	return e.scan(lo, hi, false, true, false, cb)
}

func (e *Engine) GetBelow(key []byte, cb engine.KVCallback) error {
	return e.scan(nil, key, false, true, false, cb)
}

func (e *Engine) GetEqualBelow(key []byte, cb engine.KVCallback) error {
	return e.scan(nil, key, false, true, true, cb)
}

// scan walks keys in [lo, hi) order. If exclusiveLo, lo itself is
// skipped. hasHi false means unbounded above. inclusiveHi includes hi
// itself in the walk instead of stopping before it.
func (e *Engine) scan(lo, hi []byte, exclusiveLo, hasHi, inclusiveHi bool, cb engine.KVCallback) error {
	e.mu.RLock()
	snapKeys := append([]string(nil), e.keys...)
	snapVals := make(map[string][]byte, len(snapKeys))
	for _, k := range snapKeys {
		snapVals[k] = e.vals[k]
	}
	e.mu.RUnlock()

	start := 0
	if lo != nil {
		start = sort.Search(len(snapKeys), func(i int) bool {
			return e.cmp.Compare([]byte(snapKeys[i]), lo) >= 0
		})
		if exclusiveLo {
			for start < len(snapKeys) && e.cmp.Compare([]byte(snapKeys[start]), lo) == 0 {
				start++
			}
		}
	}

	for i := start; i < len(snapKeys); i++ {
		k := snapKeys[i]
		if hasHi {
			c := e.cmp.Compare([]byte(k), hi)
			if inclusiveHi && c > 0 {
				break
			}
			if !inclusiveHi && c >= 0 {
				break
			}
		}
		if cb([]byte(k), snapVals[k]) != 0 {
			return status.New(status.StoppedByCB, "scan", "callback stopped iteration")
		}
	}
	return nil
}

func (e *Engine) Defrag(startPercent, amountPercent int) error {
	return engine.ValidateDefragArgs(startPercent, amountPercent)
}

func (e *Engine) BeginTx() (engine.Transaction, error) { return newTxn(e), nil }

func (e *Engine) NewIterator() (engine.Iterator, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := append([]string(nil), e.keys...)
	return &iterator{eng: e, keys: keys, pos: -1}, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = nil
	e.vals = nil
	return nil
}

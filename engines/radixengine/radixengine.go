// Package radixengine implements a persistent radix engine:
// single-writer, multi-reader, byte-order keyed, no custom comparator
// (radix ordering is a property of the key bytes themselves, per
// original_source/src/engines-experimental — pmemkv's radix engine
// takes no comparator option). Grounded the same way engines/sortedengine
// is, minus comparator pluggability; its iterator drops reverse
// navigation, matching pmemkv's heterogeneous/cached radix variant (see
// DESIGN.md).
package radixengine

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"mantiskv/engine"
	"mantiskv/option"
	"mantiskv/persistence"
	"mantiskv/status"
)

const Name = "radix"

func init() {
	engine.Register(Name, func(opts *option.Options) (engine.Engine, error) {
		return Open(opts)
	})
}

type Engine struct {
	engine.Base
	pool persistence.Pool

	mu   sync.RWMutex
	keys []string
	vals map[string][]byte

	closed bool
}

func Open(opts *option.Options) (*Engine, error) {
	path, err := opts.GetString("path")
	if err != nil {
		return nil, status.New(status.ConfigParsingError, "open", "radixengine requires a \"path\" option: %v", err)
	}
	compression, _ := opts.GetString("compression")
	codec, err := persistence.NewCodec(compression)
	if err != nil {
		return nil, status.New(status.ConfigParsingError, "open", "%v", err)
	}

	manifestPath := path + ".manifest.yaml"
	var pool persistence.Pool
	if _, statErr := os.Stat(path); statErr == nil {
		m, merr := persistence.ReadManifest(manifestPath)
		if merr != nil {
			return nil, status.New(status.ConfigParsingError, "open", "%v", merr)
		}
		if verr := m.Verify(Name, ""); verr != nil {
			return nil, verr
		}
		wp, werr := persistence.OpenWALPool(path, persistence.SyncAlways, codec)
		if werr != nil {
			return nil, status.New(status.UnknownError, "open", "%v", werr)
		}
		pool = wp
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && filepath.Dir(path) != "." {
			return nil, status.New(status.UnknownError, "open", "%v", err)
		}
		wp, werr := persistence.CreateWALPool(path, persistence.SyncAlways, codec)
		if werr != nil {
			return nil, status.New(status.UnknownError, "open", "%v", werr)
		}
		if err := persistence.WriteManifest(manifestPath, persistence.Manifest{Engine: Name, Compression: compression}); err != nil {
			return nil, status.New(status.UnknownError, "open", "%v", err)
		}
		pool = wp
	}

	e := &Engine{Base: engine.Base{EngineName: Name}, pool: pool, vals: make(map[string][]byte)}
	if err := pool.Replay(func(key, val []byte) { e.insertLocked(string(key), val) }); err != nil {
		return nil, status.New(status.UnknownError, "open", "replay failed: %v", err)
	}
	return e, nil
}

func (e *Engine) Name() string { return Name }

func (e *Engine) searchLocked(target []byte) int {
	return sort.Search(len(e.keys), func(i int) bool { return bytes.Compare([]byte(e.keys[i]), target) >= 0 })
}

func (e *Engine) insertLocked(k string, val []byte) {
	if _, exists := e.vals[k]; !exists {
		idx := e.searchLocked([]byte(k))
		e.keys = append(e.keys, "")
		copy(e.keys[idx+1:], e.keys[idx:])
		e.keys[idx] = k
	}
	e.vals[k] = val
}

func (e *Engine) removeLocked(k string) {
	idx := e.searchLocked([]byte(k))
	if idx < len(e.keys) && e.keys[idx] == k {
		e.keys = append(e.keys[:idx], e.keys[idx+1:]...)
	}
	delete(e.vals, k)
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

// Put is radix's single writer path: the engine-wide mutex already
// serializes concurrent Put/Remove callers, matching the single-writer
// invariant without a separate writer token.
func (e *Engine) Put(key, value []byte) error {
	if err := e.pool.Put(key, value); err != nil {
		return status.New(status.UnknownError, "put", "%v", err)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	e.mu.Lock()
	e.insertLocked(string(key), cp)
	e.mu.Unlock()
	return nil
}

func (e *Engine) Remove(key []byte) error {
	e.mu.RLock()
	_, existed := e.vals[string(key)]
	e.mu.RUnlock()
	if !existed {
		return status.New(status.NotFound, "remove", "key not found")
	}
	if err := e.pool.Remove(key); err != nil {
		return status.New(status.UnknownError, "remove", "%v", err)
	}
	e.mu.Lock()
	e.removeLocked(string(key))
	e.mu.Unlock()
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
	if bytes.Compare(lo, hi) >= 0 {
		return 0, nil
	}
	start := e.searchLocked(lo)
	end := e.searchLocked(hi)
	if end < start {
		return 0, nil
	}
	return uint64(end - start), nil
}

func (e *Engine) CountAbove(key []byte) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	start := e.searchLocked(key)
	for start < len(e.keys) && e.keys[start] == string(key) {
		start++
	}
	return uint64(len(e.keys) - start), nil
}

func (e *Engine) CountEqualAbove(key []byte) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(len(e.keys) - e.searchLocked(key)), nil
}

func (e *Engine) CountBelow(key []byte) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(e.searchLocked(key)), nil
}

func (e *Engine) CountEqualBelow(key []byte) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	end := e.searchLocked(key)
	if end < len(e.keys) && e.keys[end] == string(key) {
		end++
	}
	return uint64(end), nil
}

func (e *Engine) GetAll(cb engine.KVCallback) error { return e.scan(nil, nil, false, false, false, cb) }

// GetAbove iterates keys sharing no ordering guarantee beyond byte
// order above key; radix has no custom comparator to generalize this
// with.
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

func (e *Engine) scan(lo, hi []byte, exclusiveLo, hasHi, inclusiveHi bool, cb engine.KVCallback) error {
	e.mu.RLock()
	keys := append([]string(nil), e.keys...)
	vals := make(map[string][]byte, len(keys))
	for _, k := range keys {
		vals[k] = e.vals[k]
	}
	e.mu.RUnlock()

	start := 0
	if lo != nil {
		start = sort.Search(len(keys), func(i int) bool { return bytes.Compare([]byte(keys[i]), lo) >= 0 })
		if exclusiveLo {
			for start < len(keys) && keys[start] == string(lo) {
				start++
			}
		}
	}
	for i := start; i < len(keys); i++ {
		if hasHi {
			c := bytes.Compare([]byte(keys[i]), hi)
			if inclusiveHi && c > 0 {
				break
			}
			if !inclusiveHi && c >= 0 {
				break
			}
		}
		if cb([]byte(keys[i]), vals[keys[i]]) != 0 {
			return status.New(status.StoppedByCB, "scan", "callback stopped iteration")
		}
	}
	return nil
}

func (e *Engine) Defrag(startPercent, amountPercent int) error {
	if err := engine.ValidateDefragArgs(startPercent, amountPercent); err != nil {
		return err
	}
	if err := e.pool.Defrag(startPercent, amountPercent); err != nil {
		return status.New(status.DefragError, "defrag", "%v", err)
	}
	return nil
}

func (e *Engine) NewIterator() (engine.Iterator, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &iterator{eng: e, keys: append([]string(nil), e.keys...), pos: -1}, nil
}

func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.pool.Close()
}

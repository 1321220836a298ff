// Package vhashengine implements a volatile concurrent hash engine: an
// unordered, non-persistent map, concurrency-safe for multiple
// readers/writers. Grounded in storage/storage_pure.go's pure-Go
// in-memory engine, generalized from its string-keyed map to []byte
// keys and the full Engine contract.
package vhashengine

import (
	"sync"

	"mantiskv/engine"
	"mantiskv/option"
	"mantiskv/status"
)

const Name = "vhashmap"

func init() {
	engine.Register(Name, func(opts *option.Options) (engine.Engine, error) {
		return New(), nil
	})
}

type Engine struct {
	engine.Base
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func New() *Engine {
	return &Engine{Base: engine.Base{EngineName: Name}, data: make(map[string][]byte)}
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Get(key []byte, cb engine.ValueCallback) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.data[string(key)]
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
	e.data[string(key)] = cp
	return nil
}

func (e *Engine) Remove(key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.data[string(key)]; !ok {
		return status.New(status.NotFound, "remove", "key not found")
	}
	delete(e.data, string(key))
	return nil
}

func (e *Engine) Exists(key []byte) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.data[string(key)]; !ok {
		return status.New(status.NotFound, "exists", "key not found")
	}
	return nil
}

func (e *Engine) CountAll() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(len(e.data)), nil
}

// GetAll iterates in Go's randomized map order; unordered engines make
// no iteration-order guarantee.
func (e *Engine) GetAll(cb engine.KVCallback) error {
	e.mu.RLock()
	snapshot := make(map[string][]byte, len(e.data))
	for k, v := range e.data {
		snapshot[k] = v
	}
	e.mu.RUnlock()

	for k, v := range snapshot {
		if cb([]byte(k), v) != 0 {
			return status.New(status.StoppedByCB, "get_all", "callback stopped iteration")
		}
	}
	return nil
}

func (e *Engine) Defrag(startPercent, amountPercent int) error {
	return engine.ValidateDefragArgs(startPercent, amountPercent)
}

func (e *Engine) BeginTx() (engine.Transaction, error) { return newTxn(e), nil }

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.data = nil
	return nil
}

// txn stages puts/removes against the engine's map and applies them all
// under one lock acquisition at Commit, so concurrent readers never see
// a partial batch.
type txn struct {
	eng    *Engine
	puts   map[string][]byte
	dels   map[string]bool
	done   bool
}

func newTxn(e *Engine) *txn {
	return &txn{eng: e, puts: make(map[string][]byte), dels: make(map[string]bool)}
}

func (t *txn) Put(key, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	delete(t.dels, string(key))
	t.puts[string(key)] = cp
	return nil
}

func (t *txn) Remove(key []byte) error {
	delete(t.puts, string(key))
	t.dels[string(key)] = true
	return nil
}

func (t *txn) Commit() error {
	if t.done {
		return status.New(status.TransactionScopeError, "commit", "transaction already finished")
	}
	t.eng.mu.Lock()
	for k := range t.dels {
		delete(t.eng.data, k)
	}
	for k, v := range t.puts {
		t.eng.data[k] = v
	}
	t.eng.mu.Unlock()
	t.reset()
	return nil
}

func (t *txn) Abort() error {
	t.reset()
	return nil
}

// reset restages the transaction so it can be reused for further work
// after a commit or abort.
func (t *txn) reset() {
	t.puts = make(map[string][]byte)
	t.dels = make(map[string]bool)
	t.done = false
}

// Package hashengine implements a persistent concurrent hash engine:
// an unordered, durable map sharded for concurrent access. Grounded in
// storage/storage_pure.go's pure-Go engine for the in-memory half and in
// wal/file_manager.go's single-writer-log model for the durable half,
// reached through the persistence.Pool collaborator rather than a direct
// file handle.
package hashengine

import (
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"mantiskv/engine"
	"mantiskv/option"
	"mantiskv/persistence"
	"mantiskv/status"
)

const Name = "chash"

const shardCount = 16

func init() {
	engine.Register(Name, func(opts *option.Options) (engine.Engine, error) {
		return Open(opts)
	})
}

type shard struct {
	mu   sync.RWMutex
	data map[string][]byte
}

type Engine struct {
	engine.Base
	pool   persistence.Pool
	shards [shardCount]*shard
	closed bool
}

func shardFor(key []byte) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % shardCount)
}

// Open builds the engine from opts, creating or reusing the on-disk pool
// at the "path" option, matching the path-based config every persistent
// pmemkv engine takes.
func Open(opts *option.Options) (*Engine, error) {
	path, err := opts.GetString("path")
	if err != nil {
		return nil, status.New(status.ConfigParsingError, "open", "hashengine requires a \"path\" option: %v", err)
	}
	compression, _ := opts.GetString("compression")
	codec, err := persistence.NewCodec(compression)
	if err != nil {
		return nil, status.New(status.ConfigParsingError, "open", "%v", err)
	}

	manifestPath := path + ".manifest.yaml"
	var pool persistence.Pool
	if _, statErr := os.Stat(path); statErr == nil {
		m, err := persistence.ReadManifest(manifestPath)
		if err != nil {
			return nil, status.New(status.ConfigParsingError, "open", "%v", err)
		}
		if err := m.Verify(Name, ""); err != nil {
			return nil, err
		}
		wp, err := persistence.OpenWALPool(path, persistence.SyncAlways, codec)
		if err != nil {
			return nil, status.New(status.UnknownError, "open", "%v", err)
		}
		pool = wp
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && filepath.Dir(path) != "." {
			return nil, status.New(status.UnknownError, "open", "%v", err)
		}
		wp, err := persistence.CreateWALPool(path, persistence.SyncAlways, codec)
		if err != nil {
			return nil, status.New(status.UnknownError, "open", "%v", err)
		}
		if err := persistence.WriteManifest(manifestPath, persistence.Manifest{Engine: Name, Compression: compression}); err != nil {
			return nil, status.New(status.UnknownError, "open", "%v", err)
		}
		pool = wp
	}

	e := &Engine{Base: engine.Base{EngineName: Name}, pool: pool}
	for i := range e.shards {
		e.shards[i] = &shard{data: make(map[string][]byte)}
	}
	if err := pool.Replay(func(key, val []byte) {
		s := e.shards[shardFor(key)]
		s.data[string(key)] = val
	}); err != nil {
		return nil, status.New(status.UnknownError, "open", "replay failed: %v", err)
	}
	return e, nil
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Get(key []byte, cb engine.ValueCallback) error {
	s := e.shards[shardFor(key)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(key)]
	if !ok {
		return status.New(status.NotFound, "get", "key not found")
	}
	cb(v)
	return nil
}

func (e *Engine) Put(key, value []byte) error {
	if err := e.pool.Put(key, value); err != nil {
		return status.New(status.UnknownError, "put", "%v", err)
	}
	s := e.shards[shardFor(key)]
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[string(key)] = cp
	return nil
}

func (e *Engine) Remove(key []byte) error {
	s := e.shards[shardFor(key)]
	s.mu.Lock()
	_, existed := s.data[string(key)]
	s.mu.Unlock()
	if !existed {
		return status.New(status.NotFound, "remove", "key not found")
	}
	if err := e.pool.Remove(key); err != nil {
		return status.New(status.UnknownError, "remove", "%v", err)
	}
	s.mu.Lock()
	delete(s.data, string(key))
	s.mu.Unlock()
	return nil
}

func (e *Engine) Exists(key []byte) error {
	s := e.shards[shardFor(key)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.data[string(key)]; !ok {
		return status.New(status.NotFound, "exists", "key not found")
	}
	return nil
}

func (e *Engine) CountAll() (uint64, error) {
	var n uint64
	for _, s := range e.shards {
		s.mu.RLock()
		n += uint64(len(s.data))
		s.mu.RUnlock()
	}
	return n, nil
}

func (e *Engine) GetAll(cb engine.KVCallback) error {
	for _, s := range e.shards {
		s.mu.RLock()
		snap := make(map[string][]byte, len(s.data))
		for k, v := range s.data {
			snap[k] = v
		}
		s.mu.RUnlock()

		for k, v := range snap {
			if cb([]byte(k), v) != 0 {
				return status.New(status.StoppedByCB, "get_all", "callback stopped iteration")
			}
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

func (e *Engine) BeginTx() (engine.Transaction, error) {
	return &txn{eng: e, ptxn: e.pool.Begin()}, nil
}

func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.pool.Close()
}

// txn wraps a persistence.Txn, applying the in-memory shard mutation
// only after the underlying log Commit returns nil — the
// apply-after-durable-commit discipline every transactional engine
// here follows.
type txn struct {
	eng  *Engine
	ptxn persistence.Txn
	puts map[string][]byte
	dels map[string]bool
	done bool
}

func (t *txn) ensureMaps() {
	if t.puts == nil {
		t.puts = make(map[string][]byte)
		t.dels = make(map[string]bool)
	}
}

func (t *txn) Put(key, value []byte) error {
	t.ensureMaps()
	if err := t.ptxn.Put(key, value); err != nil {
		return status.New(status.TransactionScopeError, "put", "%v", err)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	delete(t.dels, string(key))
	t.puts[string(key)] = cp
	return nil
}

func (t *txn) Remove(key []byte) error {
	t.ensureMaps()
	if err := t.ptxn.Remove(key); err != nil {
		return status.New(status.TransactionScopeError, "remove", "%v", err)
	}
	delete(t.puts, string(key))
	t.dels[string(key)] = true
	return nil
}

func (t *txn) Commit() error {
	if t.done {
		return status.New(status.TransactionScopeError, "commit", "transaction already finished")
	}
	if err := t.ptxn.Commit(); err != nil {
		return status.New(status.TransactionScopeError, "commit", "%v", err)
	}
	for k := range t.dels {
		s := t.eng.shards[shardFor([]byte(k))]
		s.mu.Lock()
		delete(s.data, k)
		s.mu.Unlock()
	}
	for k, v := range t.puts {
		s := t.eng.shards[shardFor([]byte(k))]
		s.mu.Lock()
		s.data[k] = v
		s.mu.Unlock()
	}
	t.reset()
	return nil
}

func (t *txn) Abort() error {
	if t.done {
		return nil
	}
	err := t.ptxn.Abort()
	t.reset()
	return err
}

// reset restages the transaction so it can be reused for further work
// after a commit or abort.
func (t *txn) reset() {
	t.puts = nil
	t.dels = nil
	t.ptxn = t.eng.pool.Begin()
	t.done = false
}

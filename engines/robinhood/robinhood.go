// Package robinhood implements a persistent Robin Hood hash engine:
// fixed-width 8-byte keys and values, open addressing with the classic
// Robin Hood displacement rule (a probing insert steals a slot from any
// resident whose probe distance is currently shorter), sharded for
// concurrent access the same way engines/hashengine shards its chained
// map. Grounded in storage_pure.go for the sharding/locking shape; the
// open-addressing table itself has no direct analogue elsewhere in this
// module and is built directly from the classic Robin Hood hashing
// algorithm.
package robinhood

import (
	"encoding/binary"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"mantiskv/engine"
	"mantiskv/option"
	"mantiskv/persistence"
	"mantiskv/status"
)

const Name = "robinhood"

const (
	keyWidth    = 8
	valWidth    = 8
	shardCount  = 16
	initialCap  = 16
	maxLoadPct  = 75
)

func init() {
	engine.Register(Name, func(opts *option.Options) (engine.Engine, error) {
		return Open(opts)
	})
}

type slot struct {
	occupied bool
	key      [keyWidth]byte
	val      [valWidth]byte
	probe    int
}

type shard struct {
	mu    sync.RWMutex
	slots []slot
	count int
}

type Engine struct {
	engine.Base
	pool   persistence.Pool
	shards [shardCount]*shard
	closed bool
}

func Open(opts *option.Options) (*Engine, error) {
	path, err := opts.GetString("path")
	if err != nil {
		return nil, status.New(status.ConfigParsingError, "open", "robinhood requires a \"path\" option: %v", err)
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

	e := &Engine{Base: engine.Base{EngineName: Name}, pool: pool}
	for i := range e.shards {
		e.shards[i] = &shard{slots: make([]slot, initialCap)}
	}
	if err := pool.Replay(func(key, val []byte) {
		s := e.shards[shardFor(key)]
		s.insert(key, val)
	}); err != nil {
		return nil, status.New(status.UnknownError, "open", "replay failed: %v", err)
	}
	return e, nil
}

func shardFor(key []byte) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % shardCount)
}

func checkWidth(key, val []byte) error {
	if len(key) != keyWidth {
		return status.New(status.InvalidArgument, "put", "robinhood keys must be exactly %d bytes", keyWidth)
	}
	if val != nil && len(val) != valWidth {
		return status.New(status.InvalidArgument, "put", "robinhood values must be exactly %d bytes", valWidth)
	}
	return nil
}

func slotHash(key [keyWidth]byte, tableLen int) int {
	return int(binary.LittleEndian.Uint64(key[:]) % uint64(tableLen))
}

// insert performs a Robin Hood displacement insert, growing the table
// first if the load factor would reach or exceed maxLoadPct.
func (s *shard) insert(key, val []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if (s.count+1)*100 >= len(s.slots)*maxLoadPct {
		s.grow()
	}

	var k [keyWidth]byte
	var v [valWidth]byte
	copy(k[:], key)
	copy(v[:], val)

	if idx := s.findLocked(k); idx >= 0 {
		s.slots[idx].val = v
		return
	}

	cur := slot{occupied: true, key: k, val: v, probe: 0}
	idx := slotHash(k, len(s.slots))
	for {
		if !s.slots[idx].occupied {
			s.slots[idx] = cur
			s.count++
			return
		}
		if s.slots[idx].probe < cur.probe {
			s.slots[idx], cur = cur, s.slots[idx]
		}
		cur.probe++
		idx = (idx + 1) % len(s.slots)
	}
}

func (s *shard) grow() {
	old := s.slots
	s.slots = make([]slot, len(old)*2)
	s.count = 0
	for _, sl := range old {
		if sl.occupied {
			s.insertRawLocked(sl.key, sl.val)
		}
	}
}

func (s *shard) insertRawLocked(k [keyWidth]byte, v [valWidth]byte) {
	cur := slot{occupied: true, key: k, val: v, probe: 0}
	idx := slotHash(k, len(s.slots))
	for {
		if !s.slots[idx].occupied {
			s.slots[idx] = cur
			s.count++
			return
		}
		if s.slots[idx].probe < cur.probe {
			s.slots[idx], cur = cur, s.slots[idx]
		}
		cur.probe++
		idx = (idx + 1) % len(s.slots)
	}
}

// findLocked returns the slot index holding k, or -1. Caller holds s.mu.
func (s *shard) findLocked(k [keyWidth]byte) int {
	idx := slotHash(k, len(s.slots))
	probe := 0
	for {
		sl := s.slots[idx]
		if !sl.occupied || probe > sl.probe {
			return -1
		}
		if sl.key == k {
			return idx
		}
		idx = (idx + 1) % len(s.slots)
		probe++
	}
}

// remove deletes k using backward-shift deletion, the standard Robin
// Hood removal that keeps probe distances valid without tombstones.
func (s *shard) remove(key []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var k [keyWidth]byte
	copy(k[:], key)
	idx := s.findLocked(k)
	if idx < 0 {
		return false
	}

	next := (idx + 1) % len(s.slots)
	for s.slots[next].occupied && s.slots[next].probe > 0 {
		s.slots[idx] = s.slots[next]
		s.slots[idx].probe--
		idx = next
		next = (next + 1) % len(s.slots)
	}
	s.slots[idx] = slot{}
	s.count--
	return true
}

func (s *shard) get(key []byte) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var k [keyWidth]byte
	copy(k[:], key)
	idx := s.findLocked(k)
	if idx < 0 {
		return nil, false
	}
	v := s.slots[idx].val
	return v[:], true
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Get(key []byte, cb engine.ValueCallback) error {
	if err := checkWidth(key, nil); err != nil {
		return err
	}
	v, ok := e.shards[shardFor(key)].get(key)
	if !ok {
		return status.New(status.NotFound, "get", "key not found")
	}
	cb(v)
	return nil
}

func (e *Engine) Put(key, value []byte) error {
	if err := checkWidth(key, value); err != nil {
		return err
	}
	if err := e.pool.Put(key, value); err != nil {
		return status.New(status.UnknownError, "put", "%v", err)
	}
	e.shards[shardFor(key)].insert(key, value)
	return nil
}

func (e *Engine) Remove(key []byte) error {
	if err := checkWidth(key, nil); err != nil {
		return err
	}
	s := e.shards[shardFor(key)]
	if _, ok := s.get(key); !ok {
		return status.New(status.NotFound, "remove", "key not found")
	}
	if err := e.pool.Remove(key); err != nil {
		return status.New(status.UnknownError, "remove", "%v", err)
	}
	s.remove(key)
	return nil
}

func (e *Engine) Exists(key []byte) error {
	if err := checkWidth(key, nil); err != nil {
		return err
	}
	if _, ok := e.shards[shardFor(key)].get(key); !ok {
		return status.New(status.NotFound, "exists", "key not found")
	}
	return nil
}

func (e *Engine) CountAll() (uint64, error) {
	var n uint64
	for _, s := range e.shards {
		s.mu.RLock()
		n += uint64(s.count)
		s.mu.RUnlock()
	}
	return n, nil
}

func (e *Engine) GetAll(cb engine.KVCallback) error {
	for _, s := range e.shards {
		s.mu.RLock()
		snap := make([]slot, len(s.slots))
		copy(snap, s.slots)
		s.mu.RUnlock()

		for _, sl := range snap {
			if !sl.occupied {
				continue
			}
			if cb(append([]byte(nil), sl.key[:]...), append([]byte(nil), sl.val[:]...)) != 0 {
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

func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.pool.Close()
}

// Package blackhole implements a volatile pass-through engine: every
// write reports success and is immediately discarded, every read
// reports not-found. Grounded in pmemkv's own
// blackhole engine, which exists to let callers exercise the facade and
// benchmark call overhead without storage underneath.
package blackhole

import (
	"mantiskv/engine"
	"mantiskv/option"
	"mantiskv/status"
)

const Name = "blackhole"

func init() {
	engine.Register(Name, func(opts *option.Options) (engine.Engine, error) {
		return New(), nil
	})
}

// Engine is the blackhole engine. It holds no state and needs no
// configuration; Options passed to Open are accepted but ignored.
type Engine struct {
	engine.Base
}

func New() *Engine { return &Engine{Base: engine.Base{EngineName: Name}} }

func (e *Engine) Name() string { return Name }

func (e *Engine) Get(key []byte, cb engine.ValueCallback) error {
	return status.New(status.NotFound, "get", "blackhole never stores anything")
}

func (e *Engine) Put(key, value []byte) error { return nil }

func (e *Engine) Remove(key []byte) error { return nil }

func (e *Engine) Exists(key []byte) error {
	return status.New(status.NotFound, "exists", "blackhole never stores anything")
}

func (e *Engine) CountAll() (uint64, error) { return 0, nil }

func (e *Engine) GetAll(cb engine.KVCallback) error { return nil }

func (e *Engine) Defrag(startPercent, amountPercent int) error {
	if err := engine.ValidateDefragArgs(startPercent, amountPercent); err != nil {
		return err
	}
	return nil
}

func (e *Engine) BeginTx() (engine.Transaction, error) { return &txn{}, nil }

func (e *Engine) NewIterator() (engine.Iterator, error) { return &iterator{}, nil }

func (e *Engine) NewWriteIterator() (engine.WriteIterator, error) { return &writeIterator{}, nil }

func (e *Engine) Close() error { return nil }

// iterator is blackhole's cursor: seek always reports success since
// there is nowhere to fail to reach, but nothing was ever stored, so
// reading a key or range always reports not-found. Every other
// navigation method is unsupported.
type iterator struct {
	engine.BaseIterator
}

func (iterator) Seek(key []byte) error { return nil }

func (iterator) SeekToFirst() error {
	return status.New(status.NotSupported, "seek_to_first", "not supported")
}

func (iterator) Next() error {
	return status.New(status.NotSupported, "next", "not supported")
}

func (iterator) Key() ([]byte, error) {
	return nil, status.New(status.NotFound, "key", "blackhole never stores anything")
}

func (iterator) ReadRange(pos, n int) ([]byte, error) {
	return nil, status.New(status.NotFound, "read_range", "blackhole never stores anything")
}

func (iterator) Close() error { return nil }

// writeIterator adds blackhole's degenerate range-modification surface:
// there is no buffer to write into or commit.
type writeIterator struct {
	iterator
}

func (writeIterator) WriteRange(pos, n int) ([]byte, error) {
	return nil, status.New(status.NotSupported, "write_range", "not supported")
}

func (writeIterator) Commit() error {
	return status.New(status.NotSupported, "commit", "not supported")
}

func (writeIterator) Abort() error { return nil }

// txn is the no-op transaction blackhole hands out: staged writes are
// discarded the same as direct Put calls, so Commit and Abort are
// indistinguishable from the caller's point of view.
type txn struct{}

func (txn) Put(key, value []byte) error { return nil }
func (txn) Remove(key []byte) error     { return nil }
func (txn) Commit() error               { return nil }
func (txn) Abort() error                { return nil }

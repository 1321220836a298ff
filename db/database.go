// Package db is the facade a caller opens and drives: the single
// external entry point, wiring the engine registry, the per-handle
// diagnostic slot, and structured logging together.
package db

import (
	"fmt"
	"sync"

	"mantiskv/engine"
	"mantiskv/internal/dberrors"
	"mantiskv/internal/telemetry"
	"mantiskv/option"
	"mantiskv/status"
)

// Database owns exactly one engine instance for its lifetime. It is
// safe for concurrent use by multiple goroutines, delegating the actual
// concurrency discipline to the underlying engine.
type Database struct {
	mu     sync.RWMutex
	eng    engine.Engine
	diag   status.DiagSlot
	log    *telemetry.Logger
	closed bool
}

// Open constructs the named engine from opts and wraps it in a Database
// handle. opts is consumed: reuse after Open is undefined (option.Options
// doc comment).
func Open(engineName string, opts *option.Options, log *telemetry.Logger) (*Database, error) {
	if log == nil {
		log = telemetry.Noop()
	}
	eng, err := engine.Open(engineName, opts)
	if opts != nil {
		opts.Close()
	}
	if err != nil {
		log.Errorw("open failed", "engine", engineName, "error", err)
		return nil, err
	}
	log.Infow("engine opened", "engine", engineName)
	return &Database{eng: eng, log: log}, nil
}

func (d *Database) record(op string, err error) error {
	d.diag.Record(err)
	if err != nil && status.Of(err).IsError() {
		d.log.Warnw("operation failed", "op", op, "status", status.Of(err).String())
		_ = dberrors.Classify(op, err) // classified for logging; caller still gets the raw status.Error
	}
	return err
}

func (d *Database) withEngine(op string, fn func(engine.Engine) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return d.record(op, status.New(status.InvalidArgument, op, "database is closed"))
	}
	return d.record(op, fn(d.eng))
}

// Errormsg returns the diagnostic string of the most recent operation
// on this handle if it ended in a hard error, or "" otherwise: every OK
// or soft (NotFound, StoppedByCB) outcome clears it.
func (d *Database) Errormsg() string { return d.diag.Message() }

func (d *Database) Get(key []byte, cb engine.ValueCallback) error {
	return d.withEngine("get", func(e engine.Engine) error { return e.Get(key, cb) })
}

// GetCopy returns an owned copy of key's value rather than handing the
// borrowed callback buffer to the caller. It takes no caller-supplied
// buffer, so it has no buffer-too-small (OutOfMemory) outcome and does
// not report a required size.
func (d *Database) GetCopy(key []byte) ([]byte, error) {
	var out []byte
	err := d.Get(key, func(v []byte) {
		out = make([]byte, len(v))
		copy(out, v)
	})
	return out, err
}

func (d *Database) Put(key, value []byte) error {
	return d.withEngine("put", func(e engine.Engine) error { return e.Put(key, value) })
}

func (d *Database) Remove(key []byte) error {
	return d.withEngine("remove", func(e engine.Engine) error { return e.Remove(key) })
}

func (d *Database) Exists(key []byte) error {
	return d.withEngine("exists", func(e engine.Engine) error { return e.Exists(key) })
}

func (d *Database) CountAll() (n uint64, err error) {
	err = d.withEngine("count_all", func(e engine.Engine) error {
		n, err = e.CountAll()
		return err
	})
	return n, err
}

func (d *Database) CountAbove(key []byte) (n uint64, err error) {
	err = d.withEngine("count_above", func(e engine.Engine) error {
		n, err = e.CountAbove(key)
		return err
	})
	return n, err
}

func (d *Database) CountEqualAbove(key []byte) (n uint64, err error) {
	err = d.withEngine("count_equal_above", func(e engine.Engine) error {
		n, err = e.CountEqualAbove(key)
		return err
	})
	return n, err
}

func (d *Database) CountBelow(key []byte) (n uint64, err error) {
	err = d.withEngine("count_below", func(e engine.Engine) error {
		n, err = e.CountBelow(key)
		return err
	})
	return n, err
}

func (d *Database) CountEqualBelow(key []byte) (n uint64, err error) {
	err = d.withEngine("count_equal_below", func(e engine.Engine) error {
		n, err = e.CountEqualBelow(key)
		return err
	})
	return n, err
}

func (d *Database) CountBetween(lo, hi []byte) (n uint64, err error) {
	err = d.withEngine("count_between", func(e engine.Engine) error {
		n, err = e.CountBetween(lo, hi)
		return err
	})
	return n, err
}

func (d *Database) GetAll(cb engine.KVCallback) error {
	return d.withEngine("get_all", func(e engine.Engine) error { return e.GetAll(cb) })
}

func (d *Database) GetAbove(key []byte, cb engine.KVCallback) error {
	return d.withEngine("get_above", func(e engine.Engine) error { return e.GetAbove(key, cb) })
}

func (d *Database) GetEqualAbove(key []byte, cb engine.KVCallback) error {
	return d.withEngine("get_equal_above", func(e engine.Engine) error { return e.GetEqualAbove(key, cb) })
}

func (d *Database) GetBelow(key []byte, cb engine.KVCallback) error {
	return d.withEngine("get_below", func(e engine.Engine) error { return e.GetBelow(key, cb) })
}

func (d *Database) GetEqualBelow(key []byte, cb engine.KVCallback) error {
	return d.withEngine("get_equal_below", func(e engine.Engine) error { return e.GetEqualBelow(key, cb) })
}

func (d *Database) GetBetween(lo, hi []byte, cb engine.KVCallback) error {
	return d.withEngine("get_between", func(e engine.Engine) error { return e.GetBetween(lo, hi, cb) })
}

func (d *Database) Defrag(startPercent, amountPercent int) error {
	return d.withEngine("defrag", func(e engine.Engine) error { return e.Defrag(startPercent, amountPercent) })
}

func (d *Database) BeginTx() (engine.Transaction, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, status.New(status.InvalidArgument, "begin_tx", "database is closed")
	}
	tx, err := d.eng.BeginTx()
	d.record("begin_tx", err)
	return tx, err
}

func (d *Database) NewIterator() (engine.Iterator, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, status.New(status.InvalidArgument, "new_iterator", "database is closed")
	}
	it, err := d.eng.NewIterator()
	d.record("new_iterator", err)
	return it, err
}

func (d *Database) NewWriteIterator() (engine.WriteIterator, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, status.New(status.InvalidArgument, "new_write_iterator", "database is closed")
	}
	it, err := d.eng.NewWriteIterator()
	d.record("new_write_iterator", err)
	return it, err
}

// Close releases the underlying engine. A Database handle is unusable
// after Close; further calls return an error rather than panicking.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.eng.Close()
	d.log.Infow("engine closed", "engine", d.eng.Name())
	_ = d.log.Sync()
	if err != nil {
		return fmt.Errorf("db: close: %w", err)
	}
	return nil
}

package sortedengine

import "mantiskv/status"

// txn wraps a persistence.Txn the same way engines/hashengine's does:
// the in-memory index is only mutated after the durable Commit succeeds.
type txn struct {
	eng  *Engine
	ptxn interface {
		Put(key, val []byte) error
		Remove(key []byte) error
		Commit() error
		Abort() error
	}
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
	t.eng.mu.Lock()
	for k := range t.dels {
		t.eng.removeLocked(k)
	}
	for k, v := range t.puts {
		t.eng.insertLocked(k, v)
	}
	t.eng.mu.Unlock()
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

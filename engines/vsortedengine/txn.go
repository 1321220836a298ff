package vsortedengine

import "mantiskv/status"

// txn mirrors vhashengine's batching strategy: stage under no lock,
// apply the whole batch under one write-lock acquisition at Commit.
type txn struct {
	eng  *Engine
	puts map[string][]byte
	dels map[string]bool
	done bool
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
	e := t.eng
	e.mu.Lock()
	for k := range t.dels {
		if _, exists := e.vals[k]; exists {
			delete(e.vals, k)
			idx := e.searchKeys([]byte(k))
			e.keys = append(e.keys[:idx], e.keys[idx+1:]...)
		}
	}
	for k, v := range t.puts {
		if _, exists := e.vals[k]; !exists {
			idx := e.searchKeys([]byte(k))
			e.keys = append(e.keys[:idx], append([]string{k}, e.keys[idx:]...)...)
		}
		e.vals[k] = v
	}
	e.mu.Unlock()
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

package vsortedengine

import (
	"testing"

	"mantiskv/status"
)

func TestSortedIterationOrder(t *testing.T) {
	e := New(nil)
	for _, k := range []string{"c", "a", "b"} {
		if err := e.Put([]byte(k), []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	var order []string
	err := e.GetAll(func(k, v []byte) int {
		order = append(order, string(k))
		return 0
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("GetAll order = %v, want %v", order, want)
		}
	}
}

func TestGetBetween(t *testing.T) {
	e := New(nil)
	for _, k := range []string{"a", "b", "c", "d"} {
		e.Put([]byte(k), []byte(k))
	}
	var got []string
	e.GetBetween([]byte("b"), []byte("d"), func(k, v []byte) int {
		got = append(got, string(k))
		return 0
	})
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("GetBetween(b,d) = %v, want [b c]", got)
	}
}

func TestIteratorBidirectional(t *testing.T) {
	e := New(nil)
	for _, k := range []string{"a", "b", "c"} {
		e.Put([]byte(k), []byte(k))
	}
	it, err := e.NewIterator()
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	if err := it.SeekToLast(); err != nil {
		t.Fatal(err)
	}
	key, _ := it.Key()
	if string(key) != "c" {
		t.Fatalf("SeekToLast key = %q, want c", key)
	}
	if err := it.Prev(); err != nil {
		t.Fatal(err)
	}
	key, _ = it.Key()
	if string(key) != "b" {
		t.Fatalf("Prev key = %q, want b", key)
	}
}

func TestStopCallbackReturnsStoppedByCB(t *testing.T) {
	e := New(nil)
	e.Put([]byte("a"), []byte("1"))
	e.Put([]byte("b"), []byte("2"))
	err := e.GetAll(func(k, v []byte) int { return 1 })
	if status.Of(err) != status.StoppedByCB {
		t.Fatalf("expected StoppedByCB, got %v", err)
	}
}

func TestTransactionStagingIsInvisibleUntilCommit(t *testing.T) {
	e := New(nil)
	tx, err := e.BeginTx()
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("a")); status.Of(err) != status.NotFound {
		t.Fatal("staged put must not be visible before Commit")
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("a")); err != nil {
		t.Fatal(err)
	}
}

func TestTransactionAbortDiscardsStagedWrites(t *testing.T) {
	e := New(nil)
	tx, err := e.BeginTx()
	if err != nil {
		t.Fatal(err)
	}
	tx.Put([]byte("a"), []byte("1"))
	if err := tx.Abort(); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("a")); status.Of(err) != status.NotFound {
		t.Fatal("aborted transaction must leave no trace")
	}
}

func TestTransactionIsReusableAfterAbort(t *testing.T) {
	e := New(nil)
	tx, err := e.BeginTx()
	if err != nil {
		t.Fatal(err)
	}
	tx.Put([]byte("a"), []byte("1"))
	if err := tx.Abort(); err != nil {
		t.Fatal(err)
	}
	if err := tx.Put([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("expected transaction to be reusable after abort, got %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("b")); err != nil {
		t.Fatal(err)
	}
}

func TestBelowDirectionRangeOperations(t *testing.T) {
	e := New(nil)
	for _, k := range []string{"a", "b", "c", "d"} {
		e.Put([]byte(k), []byte(k))
	}
	if n, err := e.CountBelow([]byte("c")); err != nil || n != 2 {
		t.Fatalf("CountBelow(c) = %d, %v, want 2", n, err)
	}
	if n, err := e.CountEqualBelow([]byte("c")); err != nil || n != 3 {
		t.Fatalf("CountEqualBelow(c) = %d, %v, want 3", n, err)
	}
	var order []string
	e.GetBelow([]byte("c"), func(k, v []byte) int { order = append(order, string(k)); return 0 })
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("GetBelow(c) = %v, want [a b]", order)
	}
}

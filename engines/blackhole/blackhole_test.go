package blackhole

import (
	"testing"

	"mantiskv/status"
)

func TestPutThenGetIsNotFound(t *testing.T) {
	e := New()
	if err := e.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	err := e.Get([]byte("k"), func([]byte) { t.Fatal("callback should never run") })
	if status.Of(err) != status.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCountAllIsAlwaysZero(t *testing.T) {
	e := New()
	e.Put([]byte("a"), []byte("b"))
	n, err := e.CountAll()
	if err != nil || n != 0 {
		t.Fatalf("CountAll = %d, %v", n, err)
	}
}

func TestIteratorSeekSucceedsButKeyIsNotFound(t *testing.T) {
	e := New()
	it, err := e.NewIterator()
	if err != nil {
		t.Fatal(err)
	}
	if err := it.Seek([]byte("abc")); err != nil {
		t.Fatalf("seek: expected OK, got %v", err)
	}
	if status.Of(it.SeekLower([]byte("abc"))) != status.NotSupported {
		t.Fatal("expected SeekLower to be unsupported")
	}
	if _, err := it.Key(); status.Of(err) != status.NotFound {
		t.Fatalf("expected NotFound from Key, got %v", err)
	}
	if _, err := it.ReadRange(0, 1); status.Of(err) != status.NotFound {
		t.Fatalf("expected NotFound from ReadRange, got %v", err)
	}
}

func TestWriteIteratorRangeOpsAreUnsupported(t *testing.T) {
	e := New()
	it, err := e.NewWriteIterator()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := it.WriteRange(0, 1); status.Of(err) != status.NotSupported {
		t.Fatalf("expected NotSupported from WriteRange, got %v", err)
	}
	if status.Of(it.Commit()) != status.NotSupported {
		t.Fatal("expected NotSupported from Commit")
	}
	if err := it.Abort(); err != nil {
		t.Fatalf("expected Abort to succeed, got %v", err)
	}
}

func TestTransactionIsAlsoDiscarding(t *testing.T) {
	e := New()
	tx, err := e.BeginTx()
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("k")); status.Of(err) != status.NotFound {
		t.Fatalf("expected NotFound after committed blackhole txn, got %v", err)
	}
}

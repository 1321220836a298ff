package hashengine

import (
	"path/filepath"
	"testing"

	"mantiskv/engines/sortedengine"
	"mantiskv/option"
	"mantiskv/status"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	opts := option.New()
	opts.PutString("path", filepath.Join(t.TempDir(), "pool.log"))
	e, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestPutGetRemove(t *testing.T) {
	e := openTestEngine(t)
	if err := e.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	var got []byte
	if err := e.Get([]byte("k"), func(v []byte) { got = append([]byte(nil), v...) }); err != nil {
		t.Fatal(err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q", got)
	}
	if err := e.Remove([]byte("k")); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("k")); status.Of(err) != status.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDurabilityAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.log")

	opts := option.New()
	opts.PutString("path", path)
	e, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Put([]byte("durable"), []byte("value")); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	opts2 := option.New()
	opts2.PutString("path", path)
	e2, err := Open(opts2)
	if err != nil {
		t.Fatal(err)
	}
	defer e2.Close()

	var got []byte
	if err := e2.Get([]byte("durable"), func(v []byte) { got = v }); err != nil {
		t.Fatal(err)
	}
	if string(got) != "value" {
		t.Fatalf("got %q after reopen, want value", got)
	}
}

func TestTransactionRollbackOnAbort(t *testing.T) {
	e := openTestEngine(t)
	tx, err := e.BeginTx()
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Abort(); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("a")); status.Of(err) != status.NotFound {
		t.Fatalf("aborted transaction must leave no trace, got %v", err)
	}
}

func TestTransactionIsReusableAfterCommitAndAbort(t *testing.T) {
	e := openTestEngine(t)
	tx, err := e.BeginTx()
	if err != nil {
		t.Fatal(err)
	}
	tx.Put([]byte("a"), []byte("1"))
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := tx.Put([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("expected transaction to accept writes after commit, got %v", err)
	}
	if err := tx.Abort(); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("b")); status.Of(err) != status.NotFound {
		t.Fatalf("staged write before abort must not apply, got %v", err)
	}
	if err := tx.Put([]byte("c"), []byte("3")); err != nil {
		t.Fatalf("expected transaction to accept writes after abort, got %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("c")); err != nil {
		t.Fatal(err)
	}
}

func TestWrongEngineNameOnManifestMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.log")
	opts := option.New()
	opts.PutString("path", path)
	e, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	e.Close()

	opts2 := option.New()
	opts2.PutString("path", path)
	_, err = sortedengine.Open(opts2)
	if status.Of(err) != status.WrongEngineName {
		t.Fatalf("opening a chash pool as csorted: got %v, want WRONG_ENGINE_NAME", err)
	}
}

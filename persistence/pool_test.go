package persistence

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWALPoolPutReplayRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.log")

	pool, err := CreateWALPool(path, SyncAlways, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := pool.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := pool.Put([]byte("b"), []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := pool.Remove([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := pool.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenWALPool(path, SyncAlways, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got := make(map[string]string)
	if err := reopened.Replay(func(key, val []byte) { got[string(key)] = string(val) }); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["a"]; ok {
		t.Error("expected removed key \"a\" to be absent after replay")
	}
	if got["b"] != "2" {
		t.Errorf("got[\"b\"] = %q, want \"2\"", got["b"])
	}
}

func TestWALPoolTxnAbortLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.log")
	pool, err := CreateWALPool(path, SyncAlways, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	txn := pool.Begin()
	if err := txn.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := txn.Abort(); err != nil {
		t.Fatal(err)
	}

	seen := false
	if err := pool.Replay(func(key, val []byte) { seen = true }); err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("aborted transaction should leave no live records")
	}
}

func TestWALPoolRootBlob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.log")
	pool, err := CreateWALPool(path, SyncAlways, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	if err := pool.SetRoot([]byte("checkpoint")); err != nil {
		t.Fatal(err)
	}
	if got := pool.Root(); string(got) != "checkpoint" {
		t.Fatalf("Root() = %q, want checkpoint", got)
	}
}

func TestManifestVerify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	if err := WriteManifest(path, Manifest{Engine: "csorted", Comparator: "bytewise"}); err != nil {
		t.Fatal(err)
	}
	m, err := ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Verify("csorted", "bytewise"); err != nil {
		t.Fatalf("expected matching manifest to verify, got %v", err)
	}
	if err := m.Verify("chash", "bytewise"); err == nil {
		t.Fatal("expected engine-name mismatch to fail verification")
	}
	if err := m.Verify("csorted", "custom"); err == nil {
		t.Fatal("expected comparator mismatch to fail verification")
	}
}

func TestWALPoolCompression(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.log")
	codec, err := NewCodec("snappy")
	if err != nil {
		t.Fatal(err)
	}
	pool, err := CreateWALPool(path, SyncAlways, codec)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	value := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	if err := pool.Put([]byte("k"), value); err != nil {
		t.Fatal(err)
	}

	got := make(map[string][]byte)
	if err := pool.Replay(func(key, val []byte) { got[string(key)] = val }); err != nil {
		t.Fatal(err)
	}
	if string(got["k"]) != string(value) {
		t.Fatalf("value round-trip through snappy codec failed: got %q", got["k"])
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

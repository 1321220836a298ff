package sortedengine

import (
	"path/filepath"
	"testing"

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

func TestSortedOrderAndDurability(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.log")

	opts := option.New()
	opts.PutString("path", path)
	e, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"z", "a", "m"} {
		if err := e.Put([]byte(k), []byte(k)); err != nil {
			t.Fatal(err)
		}
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

	var order []string
	e2.GetAll(func(k, v []byte) int { order = append(order, string(k)); return 0 })
	want := []string{"a", "m", "z"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order after reopen = %v, want %v", order, want)
		}
	}
}

func TestWriteIteratorCommit(t *testing.T) {
	e := openTestEngine(t)
	if err := e.Put([]byte("k"), []byte("0123456789")); err != nil {
		t.Fatal(err)
	}

	wit, err := e.NewWriteIterator()
	if err != nil {
		t.Fatal(err)
	}
	if err := wit.Seek([]byte("k")); err != nil {
		t.Fatal(err)
	}
	buf, err := wit.WriteRange(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	copy(buf, "XYZ")
	if err := wit.Commit(); err != nil {
		t.Fatal(err)
	}
	wit.Close()

	var got []byte
	e.Get([]byte("k"), func(v []byte) { got = append([]byte(nil), v...) })
	if string(got) != "01XYZ56789" {
		t.Fatalf("got %q, want 01XYZ56789", got)
	}
}

func TestWriteIteratorAbortDiscardsEdit(t *testing.T) {
	e := openTestEngine(t)
	e.Put([]byte("k"), []byte("hello"))

	wit, _ := e.NewWriteIterator()
	wit.Seek([]byte("k"))
	buf, _ := wit.WriteRange(0, 5)
	copy(buf, "XXXXX")
	wit.Abort()

	var got []byte
	e.Get([]byte("k"), func(v []byte) { got = append([]byte(nil), v...) })
	if string(got) != "hello" {
		t.Fatalf("aborted write iterator edit leaked through: got %q", got)
	}
}

func TestTransactionAtomicCommit(t *testing.T) {
	e := openTestEngine(t)
	tx, err := e.BeginTx()
	if err != nil {
		t.Fatal(err)
	}
	tx.Put([]byte("a"), []byte("1"))
	tx.Put([]byte("b"), []byte("2"))
	if err := e.Exists([]byte("a")); status.Of(err) != status.NotFound {
		t.Fatal("staged write must not be visible before Commit")
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("b")); err != nil {
		t.Fatal(err)
	}
}

func TestCountBetween(t *testing.T) {
	e := openTestEngine(t)
	for _, k := range []string{"a", "b", "c", "d"} {
		e.Put([]byte(k), []byte(k))
	}
	n, err := e.CountBetween([]byte("b"), []byte("d"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("CountBetween(b,d) = %d, want 2", n)
	}
}

func TestBelowDirectionOperations(t *testing.T) {
	e := openTestEngine(t)
	for _, k := range []string{"a", "b", "c", "d"} {
		e.Put([]byte(k), []byte(k))
	}

	if n, err := e.CountBelow([]byte("c")); err != nil || n != 2 {
		t.Fatalf("CountBelow(c) = %d, %v, want 2", n, err)
	}
	if n, err := e.CountEqualBelow([]byte("c")); err != nil || n != 3 {
		t.Fatalf("CountEqualBelow(c) = %d, %v, want 3", n, err)
	}
	if n, err := e.CountAbove([]byte("b")); err != nil || n != 2 {
		t.Fatalf("CountAbove(b) = %d, %v, want 2", n, err)
	}
	if n, err := e.CountEqualAbove([]byte("b")); err != nil || n != 3 {
		t.Fatalf("CountEqualAbove(b) = %d, %v, want 3", n, err)
	}

	var below []string
	e.GetBelow([]byte("c"), func(k, v []byte) int { below = append(below, string(k)); return 0 })
	if len(below) != 2 || below[0] != "a" || below[1] != "b" {
		t.Fatalf("GetBelow(c) = %v, want [a b]", below)
	}

	var equalBelow []string
	e.GetEqualBelow([]byte("c"), func(k, v []byte) int { equalBelow = append(equalBelow, string(k)); return 0 })
	if len(equalBelow) != 3 || equalBelow[2] != "c" {
		t.Fatalf("GetEqualBelow(c) = %v, want [a b c]", equalBelow)
	}
}

func TestSeekLowerReportsFirstKeyAtOrAboveTarget(t *testing.T) {
	e := openTestEngine(t)
	for _, k := range []string{"a", "c", "e"} {
		e.Put([]byte(k), []byte(k))
	}
	it, err := e.NewIterator()
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	if err := it.SeekLower([]byte("c")); err != nil {
		t.Fatal(err)
	}
	if k, _ := it.Key(); string(k) != "c" {
		t.Fatalf("SeekLower(c) landed on %q, want c (not the strictly-less-than key a)", k)
	}
}

func TestTransactionIsReusableAfterCommit(t *testing.T) {
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
		t.Fatalf("expected transaction to be reusable after commit, got %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("expected second commit to succeed, got %v", err)
	}
	if err := e.Exists([]byte("b")); err != nil {
		t.Fatal(err)
	}
}

package radixengine

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
		t.Fatalf("got %q, want v", got)
	}
	if err := e.Remove([]byte("k")); err != nil {
		t.Fatal(err)
	}
	if err := e.Exists([]byte("k")); status.Of(err) != status.NotFound {
		t.Fatalf("expected NotFound after remove, got %v", err)
	}
}

func TestByteOrderIteration(t *testing.T) {
	e := openTestEngine(t)
	for _, k := range []string{"zeta", "alpha", "mu"} {
		if err := e.Put([]byte(k), []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	var order []string
	e.GetAll(func(k, v []byte) int { order = append(order, string(k)); return 0 })
	want := []string{"alpha", "mu", "zeta"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestIteratorHasNoReverseNavigation(t *testing.T) {
	e := openTestEngine(t)
	e.Put([]byte("a"), []byte("1"))
	it, err := e.NewIterator()
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	if err := it.SeekToFirst(); err != nil {
		t.Fatal(err)
	}
	if status.Of(it.Prev()) != status.NotSupported {
		t.Fatal("expected radix's iterator to leave Prev unsupported")
	}
	if status.Of(it.SeekToLast()) != status.NotSupported {
		t.Fatal("expected radix's iterator to leave SeekToLast unsupported")
	}
}

func TestIteratorBoundSeeksAreImplemented(t *testing.T) {
	e := openTestEngine(t)
	for _, k := range []string{"alpha", "mu", "zeta"} {
		e.Put([]byte(k), []byte(k))
	}
	it, err := e.NewIterator()
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	if err := it.SeekHigherEq([]byte("mu")); err != nil {
		t.Fatal(err)
	}
	if k, _ := it.Key(); string(k) != "mu" {
		t.Fatalf("SeekHigherEq(mu) landed on %q", k)
	}
	if err := it.SeekHigher([]byte("mu")); err != nil {
		t.Fatal(err)
	}
	if k, _ := it.Key(); string(k) != "zeta" {
		t.Fatalf("SeekHigher(mu) landed on %q", k)
	}
	if err := it.SeekLowerEq([]byte("mu")); err != nil {
		t.Fatal(err)
	}
	if k, _ := it.Key(); string(k) != "mu" {
		t.Fatalf("SeekLowerEq(mu) landed on %q", k)
	}
	if err := it.SeekLower([]byte("mu")); err != nil {
		t.Fatal(err)
	}
	if k, _ := it.Key(); string(k) != "alpha" {
		t.Fatalf("SeekLower(mu) landed on %q", k)
	}
}

func TestBelowRangeOperations(t *testing.T) {
	e := openTestEngine(t)
	for _, k := range []string{"alpha", "mu", "zeta"} {
		e.Put([]byte(k), []byte(k))
	}
	n, err := e.CountBelow([]byte("mu"))
	if err != nil || n != 1 {
		t.Fatalf("CountBelow(mu) = %d, %v, want 1", n, err)
	}
	n, err = e.CountEqualBelow([]byte("mu"))
	if err != nil || n != 2 {
		t.Fatalf("CountEqualBelow(mu) = %d, %v, want 2", n, err)
	}
	var order []string
	if err := e.GetBelow([]byte("zeta"), func(k, v []byte) int { order = append(order, string(k)); return 0 }); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "alpha" || order[1] != "mu" {
		t.Fatalf("GetBelow(zeta) = %v", order)
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
	e.Put([]byte("durable"), []byte("value"))
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
		t.Fatalf("got %q, want value", got)
	}
}

func TestNoTransactionSupport(t *testing.T) {
	e := openTestEngine(t)
	if _, err := e.BeginTx(); status.Of(err) != status.NotSupported {
		t.Fatalf("expected NotSupported, got %v", err)
	}
}

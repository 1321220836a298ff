package comparator

import "testing"

func TestDefaultOrdersBytewise(t *testing.T) {
	c := Default
	if c.Compare([]byte("a"), []byte("b")) >= 0 {
		t.Fatal("expected a < b")
	}
	if c.Compare([]byte("b"), []byte("a")) <= 0 {
		t.Fatal("expected b > a")
	}
	if c.Compare([]byte("a"), []byte("a")) != 0 {
		t.Fatal("expected a == a")
	}
}

func TestDefaultName(t *testing.T) {
	if Default.Name() == "" {
		t.Fatal("expected a non-empty stable name")
	}
}

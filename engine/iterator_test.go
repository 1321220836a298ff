package engine

import (
	"testing"

	"mantiskv/status"
)

func TestClampRange(t *testing.T) {
	cases := []struct {
		valueLen, pos, n   int
		wantStart, wantEnd int
	}{
		{10, 0, 5, 0, 5},
		{10, 8, 5, 8, 10},
		{10, -1, 5, 0, 5},
		{10, 20, 5, 10, 10},
		{10, 2, 1 << 30, 2, 10},
	}
	for _, c := range cases {
		start, end := ClampRange(c.valueLen, c.pos, c.n)
		if start != c.wantStart || end != c.wantEnd {
			t.Errorf("ClampRange(%d,%d,%d) = (%d,%d), want (%d,%d)",
				c.valueLen, c.pos, c.n, start, end, c.wantStart, c.wantEnd)
		}
	}
}

func TestBaseIteratorDefaults(t *testing.T) {
	var b BaseIterator
	if err := b.Prev(); status.Of(err) != status.NotSupported {
		t.Errorf("Prev: got %v", err)
	}
	if b.IsNext() {
		t.Error("IsNext should default to false")
	}
}

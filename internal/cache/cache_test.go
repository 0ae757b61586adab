package cache

import (
	"testing"
	"time"
)

func TestKeyOfDistinguishesSeparator(t *testing.T) {
	a := KeyOf("ab", "c", "")
	b := KeyOf("a", "bc", "")
	if a == b {
		t.Errorf("KeyOf(%q,%q) collided with KeyOf(%q,%q)", "ab", "c", "a", "bc")
	}
}

func TestKeyOfStable(t *testing.T) {
	a := KeyOf("grammar", "expr", "lisp")
	b := KeyOf("grammar", "expr", "lisp")
	if a != b {
		t.Errorf("KeyOf not stable across calls: %q != %q", a, b)
	}
}

func TestNamespaceGetPutHitMiss(t *testing.T) {
	ns := NewNamespace[int](0, 0)
	k := KeyOf("g", "", "")

	if _, ok := ns.Get(k); ok {
		t.Fatal("expected miss on empty namespace")
	}

	ns.Put(k, 42)
	v, ok := ns.Get(k)
	if !ok || v != 42 {
		t.Fatalf("Get = (%v, %v), want (42, true)", v, ok)
	}

	stats := ns.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss", stats)
	}
}

func TestNamespaceEvictsLRU(t *testing.T) {
	ns := NewNamespace[int](2, 0)
	k1, k2, k3 := KeyOf("1", "", ""), KeyOf("2", "", ""), KeyOf("3", "", "")

	ns.Put(k1, 1)
	ns.Put(k2, 2)
	// Touch k1 so k2 becomes the least-recently-used entry.
	ns.Get(k1)
	ns.Put(k3, 3)

	if _, ok := ns.Get(k2); ok {
		t.Error("expected k2 to be evicted as LRU")
	}
	if _, ok := ns.Get(k1); !ok {
		t.Error("expected k1 to survive eviction")
	}
	if _, ok := ns.Get(k3); !ok {
		t.Error("expected k3 to survive as most recently inserted")
	}

	if ns.Stats().Evictions != 1 {
		t.Errorf("evictions = %d, want 1", ns.Stats().Evictions)
	}
}

func TestNamespaceTTLExpiry(t *testing.T) {
	ns := NewNamespace[int](0, time.Millisecond)
	k := KeyOf("g", "", "")
	ns.Put(k, 1)

	time.Sleep(5 * time.Millisecond)

	if _, ok := ns.Get(k); ok {
		t.Error("expected entry to have expired")
	}
	if ns.Len() != 0 {
		t.Errorf("Len = %d, want 0 after expired entry pruned", ns.Len())
	}
}

func TestNamespacePutOverwritesInPlace(t *testing.T) {
	ns := NewNamespace[string](0, 0)
	k := KeyOf("g", "", "")
	ns.Put(k, "first")
	ns.Put(k, "second")

	v, ok := ns.Get(k)
	if !ok || v != "second" {
		t.Fatalf("Get = (%q, %v), want (%q, true)", v, ok, "second")
	}
	if ns.Len() != 1 {
		t.Errorf("Len = %d, want 1 (overwrite must not grow the namespace)", ns.Len())
	}
}

func TestNormalizeLabel(t *testing.T) {
	cases := map[string]string{
		"Expr":   "expr",
		" Expr ": "expr",
		"EXPR":   "expr",
	}
	for in, want := range cases {
		if got := NormalizeLabel(in); got != want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

package cache

import "testing"

func TestCacheWholesaleInvalidation(t *testing.T) {
	c := New[int]()
	c.Set("fp1", "k", 1)
	if v, ok := c.Get("fp1", "k"); !ok || v != 1 {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}
	if _, ok := c.Get("fp2", "k"); ok {
		t.Fatalf("expected miss after fingerprint change")
	}
	c.Set("fp2", "k", 2)
	if v, ok := c.Get("fp2", "k"); !ok || v != 2 {
		t.Fatalf("expected hit for new generation, got %v %v", v, ok)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint([]byte("var a = 1;"))
	b := Fingerprint([]byte("var a = 1;"))
	c := Fingerprint([]byte("var a = 2;"))
	if a != b {
		t.Fatalf("expected identical source to hash identically")
	}
	if a == c {
		t.Fatalf("expected different source to hash differently")
	}
}

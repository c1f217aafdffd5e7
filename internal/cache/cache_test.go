package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestKey_PrefixesNamespace(t *testing.T) {
	if got := Key(CreditText, "by Jo"); got != "credit:by Jo" {
		t.Fatalf("unexpected key %q", got)
	}
	if Key(CreditText, "x") == Key(HintText, "x") {
		t.Fatalf("namespaces must not collide")
	}
}

func TestNoop_AlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	c.Put("k", []byte("1"))
	if _, ok := c.Get("k"); ok {
		t.Fatalf("noop cache must never hit")
	}
}

func TestMemory_StoresNullDistinctFromMiss(t *testing.T) {
	m := NewMemory()
	if _, ok := m.Get("gps:x"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	m.Put("gps:x", []byte("null"))
	v, ok := m.Get("gps:x")
	if !ok || string(v) != "null" {
		t.Fatalf("expected cached null, got %q ok=%v", v, ok)
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	m.Put("k", buf)
	buf[0] = 'z'
	v, _ := m.Get("k")
	if string(v) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", v)
	}
}

func TestMemory_ConcurrentWriters(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Put(fmt.Sprintf("k%d", j), []byte(`"same"`))
				_, _ = m.Get(fmt.Sprintf("k%d", (j+i)%100))
			}
		}(i)
	}
	wg.Wait()
	if m.Len() != 100 {
		t.Fatalf("expected 100 entries, got %d", m.Len())
	}
}

func TestCounting_TracksHitsAndMisses(t *testing.T) {
	c := &Counting{Inner: NewMemory()}
	c.Get("a")
	c.Put("a", []byte("1"))
	c.Get("a")
	c.Get("a")
	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
}

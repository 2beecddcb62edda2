package names

import (
	"strconv"
	"sync"
	"testing"
	"unsafe"
)

func TestInternIdempotent(t *testing.T) {
	c := New()
	a := c.Intern("Pair")
	b := c.Intern("Pair")
	if a != b {
		t.Errorf("Intern not idempotent: %d != %d", a, b)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if got := c.Lookup(a); got != "Pair" {
		t.Errorf("Lookup = %q, want Pair", got)
	}
}

func TestEmptyNameIsZero(t *testing.T) {
	c := New()
	if h := c.Intern(""); h != 0 {
		t.Errorf("Intern(\"\") = %d, want 0", h)
	}
	if got := c.Lookup(Handle(99)); got != "" {
		t.Errorf("Lookup(unknown) = %q, want empty", got)
	}
}

func TestStringSharesStorage(t *testing.T) {
	c := New()
	buf := []byte("field")
	first := c.String(string(buf))
	second := c.String("field")
	if unsafe.StringData(first) != unsafe.StringData(second) {
		t.Error("String should return the same backing storage")
	}
}

func TestStrings(t *testing.T) {
	c := New()
	got := c.Strings([]string{"a", "b", "a"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "a" {
		t.Errorf("Strings = %v", got)
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
	if c.Strings(nil) != nil {
		t.Error("Strings(nil) should be nil")
	}
}

func TestConcurrentIntern(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	handles := make([][]Handle, 8)
	for g := range handles {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				handles[g] = append(handles[g], c.Intern("n"+strconv.Itoa(i)))
			}
		}(g)
	}
	wg.Wait()

	for g := 1; g < len(handles); g++ {
		for i := range handles[g] {
			if handles[g][i] != handles[0][i] {
				t.Fatalf("goroutine %d got handle %d for n%d, want %d", g, handles[g][i], i, handles[0][i])
			}
		}
	}
	if c.Len() != 101 {
		t.Errorf("Len = %d, want 101", c.Len())
	}
}

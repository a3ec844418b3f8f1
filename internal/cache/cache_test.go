package cache

import (
	"slices"
	"testing"
)

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	var evicted []string
	c.OnEvict(func(k string, _ int) { evicted = append(evicted, k) })

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b survived eviction")
	}
	if !slices.Equal(evicted, []string{"b"}) {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[int, string](0)
	calls := 0
	create := func() string { calls++; return "v" }
	for range 3 {
		if got := c.GetOrCreate(1, create); got != "v" {
			t.Errorf("GetOrCreate() = %q, want v", got)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestReplaceEvictsOldValue(t *testing.T) {
	c := New[int, int](0)
	var old []int
	c.OnEvict(func(_ int, v int) { old = append(old, v) })
	c.Set(1, 10)
	c.Set(1, 11)
	if v, _ := c.Get(1); v != 11 {
		t.Errorf("Get(1) = %d, want 11", v)
	}
	if !slices.Equal(old, []int{10}) {
		t.Errorf("evicted = %v, want [10]", old)
	}
}

func TestDeleteFuncAndClear(t *testing.T) {
	c := New[int, int](0)
	n := 0
	c.OnEvict(func(int, int) { n++ })
	for i := range 6 {
		c.Set(i, i)
	}
	c.DeleteFunc(func(k, _ int) bool { return k%2 == 0 })
	if c.Len() != 3 {
		t.Errorf("Len() after DeleteFunc = %d, want 3", c.Len())
	}
	if !c.Delete(1) || c.Delete(1) {
		t.Error("Delete(1) did not report presence correctly")
	}
	c.Clear()
	if c.Len() != 0 || n != 6 {
		t.Errorf("Len() = %d, evictions = %d, want 0 and 6", c.Len(), n)
	}
}

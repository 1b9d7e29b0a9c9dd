package cache

import "testing"

func TestLRUListPushFront(t *testing.T) {
	l := NewLRUList()
	a := l.PushFront("a", 1)
	if l.Len() != 1 || l.head != a || l.tail != a {
		t.Fatalf("single node should be head and tail")
	}
	b := l.PushFront("b", 2)
	if l.head != b || l.tail != a {
		t.Fatalf("expected b at head and a at tail")
	}
	if b.next != a || a.prev != b {
		t.Fatalf("nodes not linked")
	}
}

func TestLRUListTouchAndEvict(t *testing.T) {
	l := NewLRUList()
	nodes := make(map[string]*LRUNode)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		nodes[k] = l.PushFront(k, k)
	}
	l.Touch(nodes["a"])
	l.Touch(nodes["c"])
	l.Touch(nodes["c"])

	// order is now c, a, e, d, b
	if n := l.Evict(); n.key != "b" {
		t.Fatalf("expected to evict b, got %s", n.key)
	}
	if n := l.Evict(); n.key != "d" {
		t.Fatalf("expected to evict d, got %s", n.key)
	}
	if l.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", l.Len())
	}
	if l.head != nodes["c"] || l.tail != nodes["e"] {
		t.Fatalf("unexpected head or tail after eviction")
	}
}

func TestLRUListRemove(t *testing.T) {
	l := NewLRUList()
	a := l.PushFront("a", nil)
	b := l.PushFront("b", nil)
	c := l.PushFront("c", nil)
	l.Remove(b)
	if c.next != a || a.prev != c {
		t.Fatalf("remove of middle node broke links")
	}
	l.Remove(c)
	l.Remove(a)
	if l.head != nil || l.tail != nil || l.Len() != 0 {
		t.Fatalf("expected empty list")
	}
	if l.Evict() != nil {
		t.Fatalf("evict on empty list should return nil")
	}
}

func TestLRUListClear(t *testing.T) {
	l := NewLRUList()
	l.PushFront("a", nil)
	l.PushFront("b", nil)
	l.Clear()
	if l.Len() != 0 || l.head != nil || l.tail != nil {
		t.Fatalf("expected cleared list")
	}
}

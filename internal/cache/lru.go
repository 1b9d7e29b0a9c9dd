package cache

// LRUList is a doubly-linked recency list. The head is the most recently
// used entry and the tail is the next one to evict.
type LRUList struct {
	head *LRUNode
	tail *LRUNode
	size int
}

// LRUNode holds one cached entry.
type LRUNode struct {
	key   string
	value interface{}
	prev  *LRUNode
	next  *LRUNode
}

func NewLRUList() *LRUList {
	return &LRUList{}
}

// PushFront inserts a new entry as the most recently used one.
func (l *LRUList) PushFront(key string, value interface{}) *LRUNode {
	node := &LRUNode{key: key, value: value, next: l.head}
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.size++
	return node
}

func (l *LRUList) unlink(node *LRUNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
}

func (l *LRUList) Remove(node *LRUNode) {
	if node == nil {
		return
	}
	l.unlink(node)
	l.size--
}

// Touch marks node as the most recently used entry.
func (l *LRUList) Touch(node *LRUNode) {
	if node == nil || node == l.head {
		return
	}
	l.unlink(node)
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
}

// Evict removes and returns the least recently used entry, or nil.
func (l *LRUList) Evict() *LRUNode {
	node := l.tail
	if node == nil {
		return nil
	}
	l.Remove(node)
	return node
}

func (l *LRUList) Len() int {
	return l.size
}

func (l *LRUList) Clear() {
	l.head = nil
	l.tail = nil
	l.size = 0
}

package namespace

import "sort"

// Tree groups items by namespace path. Entries at each level keep input order;
// children are keyed by the next path segment and iterated lexicographically.
type Tree[T any] struct {
	entries  []T
	children map[string]*Tree[T]
}

// Build places every item at the node addressed by its namespace path.
func Build[T any](items []T, path func(T) []string) *Tree[T] {
	root := &Tree[T]{}
	for _, item := range items {
		node := root
		for _, seg := range path(item) {
			node = node.child(seg)
		}
		node.entries = append(node.entries, item)
	}
	return root
}

func (t *Tree[T]) child(seg string) *Tree[T] {
	if t.children == nil {
		t.children = make(map[string]*Tree[T])
	}
	c, ok := t.children[seg]
	if !ok {
		c = &Tree[T]{}
		t.children[seg] = c
	}
	return c
}

// Entries returns the items placed directly at this node, in input order.
func (t *Tree[T]) Entries() []T { return t.entries }

// ChildNames returns the child segments in lexicographic order.
func (t *Tree[T]) ChildNames() []string {
	names := make([]string, 0, len(t.children))
	for n := range t.children {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Child returns the subtree for seg.
func (t *Tree[T]) Child(seg string) (*Tree[T], bool) {
	c, ok := t.children[seg]
	return c, ok
}

// IsEmpty reports whether neither this node nor any descendant holds entries.
func (t *Tree[T]) IsEmpty() bool {
	if len(t.entries) > 0 {
		return false
	}
	for _, c := range t.children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Len counts entries in the whole subtree.
func (t *Tree[T]) Len() int {
	n := len(t.entries)
	for _, c := range t.children {
		n += c.Len()
	}
	return n
}

// Walk visits every node depth-first, entries before children, children in key order.
// Returning false from fn skips the node's children.
func (t *Tree[T]) Walk(fn func(path []string, node *Tree[T]) bool) {
	t.walk(nil, fn)
}

func (t *Tree[T]) walk(path []string, fn func([]string, *Tree[T]) bool) {
	if !fn(path, t) {
		return
	}
	for _, name := range t.ChildNames() {
		next := append(append([]string(nil), path...), name)
		t.children[name].walk(next, fn)
	}
}

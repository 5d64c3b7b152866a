package api

import (
	"sort"
	"strings"
)

// Separator joins namespace segments and identifiers in a QualifiedName.
const Separator = "::"

// QualifiedName is a namespace path plus identifier, e.g. "geom::Point".
// Cross references between declarations are always stored as names, never pointers.
type QualifiedName string

func NewQualifiedName(namespace []string, ident string) QualifiedName {
	if len(namespace) == 0 {
		return QualifiedName(ident)
	}
	return QualifiedName(strings.Join(namespace, Separator) + Separator + ident)
}

// ParseNamespace splits "a::b" into its segments. An empty string is the root namespace.
func ParseNamespace(ns string) []string {
	ns = strings.TrimPrefix(strings.TrimSpace(ns), Separator)
	if ns == "" {
		return nil
	}
	return strings.Split(ns, Separator)
}

func (n QualifiedName) String() string { return string(n) }

// Segments returns every path segment including the final identifier.
func (n QualifiedName) Segments() []string {
	if n == "" {
		return nil
	}
	return strings.Split(string(n), Separator)
}

// Namespace returns the enclosing namespace segments.
func (n QualifiedName) Namespace() []string {
	segs := n.Segments()
	if len(segs) <= 1 {
		return nil
	}
	return segs[:len(segs)-1]
}

// Final returns the last path segment.
func (n QualifiedName) Final() string {
	s := string(n)
	if i := strings.LastIndex(s, Separator); i >= 0 {
		return s[i+len(Separator):]
	}
	return s
}

// Parent drops the final segment.
func (n QualifiedName) Parent() QualifiedName {
	s := string(n)
	if i := strings.LastIndex(s, Separator); i >= 0 {
		return QualifiedName(s[:i])
	}
	return ""
}

// Child appends ident to n.
func (n QualifiedName) Child(ident string) QualifiedName {
	if n == "" {
		return QualifiedName(ident)
	}
	return n + Separator + QualifiedName(ident)
}

// Sibling returns a name in the same namespace as n.
func (n QualifiedName) Sibling(ident string) QualifiedName {
	return n.Parent().Child(ident)
}

// NameSet is an unordered set of names with deterministic iteration via Sorted.
type NameSet map[QualifiedName]struct{}

func NewNameSet(names ...QualifiedName) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s NameSet) Add(n QualifiedName) {
	if n == "" {
		return
	}
	s[n] = struct{}{}
}

func (s NameSet) Has(n QualifiedName) bool {
	_, ok := s[n]
	return ok
}

func (s NameSet) Union(other NameSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

func (s NameSet) Clone() NameSet {
	out := make(NameSet, len(s))
	out.Union(s)
	return out
}

func (s NameSet) Sorted() []QualifiedName {
	out := make([]QualifiedName, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the sorted names as plain strings.
func (s NameSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, n := range sorted {
		out[i] = string(n)
	}
	return out
}

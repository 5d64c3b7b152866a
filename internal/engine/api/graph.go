package api

import "fmt"

// Phase markers tag a Graph with the last stage that produced it.
type Phase interface {
	phaseName() string
}

type (
	Parsed      struct{}
	Classified  struct{}
	Synthesized struct{}
	Linked      struct{}
	Collected   struct{}
	Isolated    struct{}
	Ordered     struct{}
	Named       struct{}
)

func (Parsed) phaseName() string      { return "parsed" }
func (Classified) phaseName() string  { return "classified" }
func (Synthesized) phaseName() string { return "synthesized" }
func (Linked) phaseName() string      { return "linked" }
func (Collected) phaseName() string   { return "collected" }
func (Isolated) phaseName() string    { return "isolated" }
func (Ordered) phaseName() string     { return "ordered" }
func (Named) phaseName() string       { return "named" }

// PhaseName returns the marker name of P.
func PhaseName[P Phase]() string {
	var p P
	return p.phaseName()
}

type arena struct {
	order []QualifiedName
	decls map[QualifiedName]*Declaration
}

// Graph is the ordered arena of declarations for phase P. Names are unique.
// A graph handed to Advance is consumed and panics on further use.
type Graph[P Phase] struct {
	a          *arena
	consumedBy string
}

func NewGraph[P Phase]() *Graph[P] {
	return &Graph[P]{a: &arena{decls: make(map[QualifiedName]*Declaration)}}
}

// Advance moves the declarations of g into a graph tagged with phase To.
func Advance[To Phase, From Phase](g *Graph[From]) *Graph[To] {
	a := g.live()
	g.a = nil
	g.consumedBy = PhaseName[To]()
	return &Graph[To]{a: a}
}

func (g *Graph[P]) live() *arena {
	if g.a == nil {
		panic(fmt.Sprintf("api: %s graph used after it was advanced to %s", PhaseName[P](), g.consumedBy))
	}
	return g.a
}

// Phase returns the marker name of g.
func (g *Graph[P]) Phase() string { return PhaseName[P]() }

func (g *Graph[P]) Len() int { return len(g.live().order) }

func (g *Graph[P]) Get(name QualifiedName) (*Declaration, bool) {
	d, ok := g.live().decls[name]
	return d, ok
}

func (g *Graph[P]) Has(name QualifiedName) bool {
	_, ok := g.live().decls[name]
	return ok
}

// Decls returns the declarations in graph order.
func (g *Graph[P]) Decls() []*Declaration {
	a := g.live()
	out := make([]*Declaration, len(a.order))
	for i, n := range a.order {
		out[i] = a.decls[n]
	}
	return out
}

// Names returns the set of declared names.
func (g *Graph[P]) Names() NameSet {
	a := g.live()
	out := make(NameSet, len(a.order))
	for _, n := range a.order {
		out[n] = struct{}{}
	}
	return out
}

// Supersedes reports whether next may overwrite prev under the same name:
// a definition replaces a forward declaration and an ErrorMarker replaces anything.
func Supersedes(prev, next *Declaration) bool {
	if next.Kind == KindErrorMarker {
		return true
	}
	return prev.Kind == KindForward && next.Kind != KindForward
}

// Insert appends d, or overwrites an existing declaration that d supersedes in place.
// Any other clash returns *DuplicateNameError and leaves the graph unchanged.
func (g *Graph[P]) Insert(d *Declaration) error {
	a := g.live()
	if d.Deps == nil {
		d.Deps = NewNameSet()
	}
	if prev, ok := a.decls[d.Name]; ok {
		if !Supersedes(prev, d) {
			return &DuplicateNameError{Name: d.Name}
		}
		a.decls[d.Name] = d
		return nil
	}
	a.decls[d.Name] = d
	a.order = append(a.order, d.Name)
	return nil
}

// Replace swaps the declaration stored under d.Name, keeping its position.
func (g *Graph[P]) Replace(d *Declaration) {
	a := g.live()
	if _, ok := a.decls[d.Name]; !ok {
		panic(fmt.Sprintf("api: replace of missing declaration %s", d.Name))
	}
	if d.Deps == nil {
		d.Deps = NewNameSet()
	}
	a.decls[d.Name] = d
}

// Retain keeps only declarations for which keep returns true, preserving order.
func (g *Graph[P]) Retain(keep func(*Declaration) bool) int {
	a := g.live()
	kept := a.order[:0]
	removed := 0
	for _, n := range a.order {
		if keep(a.decls[n]) {
			kept = append(kept, n)
			continue
		}
		delete(a.decls, n)
		removed++
	}
	a.order = kept
	return removed
}

// Reorder installs a new order. names must be a permutation of the current names.
func (g *Graph[P]) Reorder(names []QualifiedName) {
	a := g.live()
	if len(names) != len(a.order) {
		panic(fmt.Sprintf("api: reorder with %d names, graph has %d", len(names), len(a.order)))
	}
	seen := make(NameSet, len(names))
	for _, n := range names {
		if _, ok := a.decls[n]; !ok || seen.Has(n) {
			panic(fmt.Sprintf("api: reorder is not a permutation at %s", n))
		}
		seen.Add(n)
	}
	a.order = append(a.order[:0], names...)
}

// EdgeCount sums the dependency edges of every declaration.
func (g *Graph[P]) EdgeCount() int {
	total := 0
	for _, d := range g.live().decls {
		total += len(d.Deps)
	}
	return total
}

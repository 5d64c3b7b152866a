package special

import (
	"log/slog"

	"cxxbind/internal/engine/api"
)

// Analyzer evaluates special members and abstractness for every class, bases and
// fields first. Each class is evaluated once.
type Analyzer struct {
	lookup   func(api.QualifiedName) (*api.Declaration, bool)
	known    *api.KnownTypes
	pure     api.NameSet
	ctors    api.NameSet
	sets     map[api.QualifiedName]api.SpecialMemberSet
	abstract map[api.QualifiedName]bool
	visiting api.NameSet
}

func NewAnalyzer(decls []*api.Declaration, lookup func(api.QualifiedName) (*api.Declaration, bool), known *api.KnownTypes) *Analyzer {
	if known == nil {
		known = api.DefaultKnownTypes()
	}
	a := &Analyzer{
		lookup:   lookup,
		known:    known,
		pure:     api.NewNameSet(),
		ctors:    api.NewNameSet(),
		sets:     make(map[api.QualifiedName]api.SpecialMemberSet),
		abstract: make(map[api.QualifiedName]bool),
		visiting: api.NewNameSet(),
	}
	for _, d := range decls {
		if d.Kind != api.KindMethod || d.Function == nil {
			continue
		}
		if d.Function.Virtual == api.PureVirtual {
			a.pure.Add(d.Function.Self)
		}
		if d.Function.Constructor {
			a.ctors.Add(d.Function.Self)
		}
	}
	return a
}

// Analyze attaches the special-member set and abstractness of every class in g.
func Analyze(g *api.Graph[api.Classified], known *api.KnownTypes) *Analyzer {
	decls := g.Decls()
	a := NewAnalyzer(decls, g.Get, known)
	for _, d := range decls {
		if !d.IsClass() {
			continue
		}
		m := a.Members(d.Name)
		d.Analysis.Members = &m
		d.Analysis.Abstract = a.Abstract(d.Name)
		slog.Debug("special members", "decl", d.Name,
			"default", m.DefaultConstructor, "dtor", m.Destructor,
			"copy", m.ConstCopyConstructor, "move", m.MoveConstructor,
			"abstract", d.Analysis.Abstract)
	}
	return a
}

// Explicit returns the declared members of a class, counting front-end constructor
// methods as "other" constructors.
func (a *Analyzer) Explicit(d *api.Declaration) ExplicitItems {
	var decls []api.MemberDecl
	if d.Struct != nil {
		decls = append(decls, d.Struct.Declared...)
	}
	e := ExplicitFrom(decls)
	if a.ctors.Has(d.Name) && !e.DeclaresConstructor() {
		e.declared[api.OtherCtor] = api.MemberDecl{Kind: api.OtherCtor}
	}
	return e
}

// Members returns the special-member set of any type name.
func (a *Analyzer) Members(name api.QualifiedName) api.SpecialMemberSet {
	if m, ok := a.sets[name]; ok {
		return m
	}
	if a.visiting.Has(name) {
		return api.SpecialMemberSet{}
	}
	a.visiting.Add(name)
	m := a.compute(name)
	delete(a.visiting, name)
	a.sets[name] = m
	return m
}

func (a *Analyzer) compute(name api.QualifiedName) api.SpecialMemberSet {
	d, ok := a.lookup(name)
	if !ok {
		if k, ok := a.known.Lookup(name); ok {
			return k.Members()
		}
		return api.SpecialMemberSet{}
	}
	switch d.Kind {
	case api.KindEnum, api.KindCType:
		return Scalar
	case api.KindTypedef:
		held := d.Typedef.Target.Contained()
		if held == "" {
			return Scalar
		}
		return a.Members(held)
	case api.KindStruct, api.KindSubclass:
		parts := make([]api.SpecialMemberSet, 0)
		for _, p := range Parts(d) {
			parts = append(parts, a.Members(p))
		}
		return Determine(a.Explicit(d), parts)
	}
	return api.SpecialMemberSet{}
}

// Parts lists the direct bases and by-value field types of a class.
func Parts(d *api.Declaration) []api.QualifiedName {
	out := append([]api.QualifiedName(nil), d.Bases()...)
	if d.Struct != nil {
		for _, f := range d.Struct.Fields {
			if held := f.Type.Contained(); held != "" {
				out = append(out, held)
			}
		}
	}
	return out
}

// Abstract reports whether a class cannot be instantiated: it declares a pure virtual
// method, or some base is abstract or undeclared.
func (a *Analyzer) Abstract(name api.QualifiedName) bool {
	if v, ok := a.abstract[name]; ok {
		return v
	}
	a.abstract[name] = false
	v := a.computeAbstract(name)
	a.abstract[name] = v
	return v
}

func (a *Analyzer) computeAbstract(name api.QualifiedName) bool {
	d, ok := a.lookup(name)
	if !ok || d.Kind == api.KindForward || d.Kind == api.KindErrorMarker {
		return true
	}
	if d.Kind == api.KindSubclass {
		return false
	}
	if d.Kind != api.KindStruct {
		return false
	}
	if a.pure.Has(name) {
		return true
	}
	for _, b := range d.Struct.Bases {
		if a.Abstract(b) {
			return true
		}
	}
	return false
}

package synth

import (
	"log/slog"

	"cxxbind/internal/engine/allowlist"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/special"
)

type Options struct {
	Known     *api.KnownTypes
	Allowlist *allowlist.Matcher
}

// Stats counts what each generator produced.
type Stats struct {
	Constructors int
	Destructors  int
	Factories    int
	Casts        int
	Allocators   int
	Collisions   int
}

func (s Stats) Total() int {
	return s.Constructors + s.Destructors + s.Factories + s.Casts + s.Allocators
}

type generator struct {
	g       *api.Graph[api.Classified]
	allow   *allowlist.Matcher
	stats   Stats
	pending []*api.Declaration
}

// Synthesize evaluates special members, then appends explicit declarations for implicit
// constructors and destructors, default factories, const upcasts and allocation pairs.
// Existing declarations are never rewritten; a generated name that is already taken turns
// the existing declaration into a DuplicateName marker.
func Synthesize(g *api.Graph[api.Classified], opts Options) (*api.Graph[api.Synthesized], Stats) {
	analyzer := special.Analyze(g, opts.Known)
	gen := &generator{g: g, allow: opts.Allowlist}

	for _, d := range g.Decls() {
		switch d.Kind {
		case api.KindStruct:
			gen.members(d, analyzer)
			gen.upcasts(d)
			gen.allocators(d)
		case api.KindSubclass:
			gen.allocators(d)
		}
	}
	for _, d := range gen.pending {
		gen.insert(d)
	}

	slog.Debug("synthesized declarations",
		"constructors", gen.stats.Constructors,
		"destructors", gen.stats.Destructors,
		"factories", gen.stats.Factories,
		"casts", gen.stats.Casts,
		"allocators", gen.stats.Allocators)
	return api.Advance[api.Synthesized](g), gen.stats
}

func (gen *generator) add(d *api.Declaration) {
	gen.pending = append(gen.pending, d)
}

func (gen *generator) insert(d *api.Declaration) {
	if err := gen.g.Insert(d); err != nil {
		prev, _ := gen.g.Get(d.Name)
		slog.Warn("synthesized name already taken", "decl", d.Name, "existing", prev.Kind)
		gen.g.Replace(api.NewErrorMarker(prev, api.Fault{Kind: api.FaultDuplicateName}))
		gen.stats.Collisions++
	}
}

func newSynthetic(name api.QualifiedName, fd *api.FunctionDetail, deps ...api.QualifiedName) *api.Declaration {
	return &api.Declaration{
		Name:       name,
		Kind:       api.KindSynthetic,
		Provenance: api.ProvenanceSynthesized,
		Deps:       api.NewNameSet(deps...),
		Function:   fd,
	}
}

func constRef(name api.QualifiedName) api.TypeRef {
	inner := api.NamedType(name)
	inner.Const = true
	return api.TypeRef{Form: api.FormLValueRef, Elem: &inner}
}

func mutRef(name api.QualifiedName) api.TypeRef {
	inner := api.NamedType(name)
	return api.TypeRef{Form: api.FormLValueRef, Elem: &inner}
}

func pointerTo(name api.QualifiedName) api.TypeRef {
	inner := api.NamedType(name)
	return api.TypeRef{Form: api.FormPointer, Elem: &inner}
}

func (gen *generator) members(d *api.Declaration, a *special.Analyzer) {
	if d.Analysis.Members == nil {
		return
	}
	m := *d.Analysis.Members
	class := d.Name
	self := api.NamedType(class)

	if m.ImplicitDestructorNeeded() {
		gen.add(newSynthetic(MemberName(class, api.Dtor), &api.FunctionDetail{
			Ident:   DestructorIdent,
			Self:    class,
			Payload: api.Payload{Kind: api.PayloadDestructor, Member: api.Dtor},
		}, class))
		gen.stats.Destructors++
	}

	if d.Analysis.Abstract {
		return
	}

	ctor := func(k api.MemberKind, params ...api.Field) {
		gen.add(newSynthetic(MemberName(class, k), &api.FunctionDetail{
			Ident:   ConstructorIdent,
			Params:  params,
			Return:  &self,
			Self:    class,
			Payload: api.Payload{Kind: api.PayloadConstructor, Member: k},
		}, class))
		gen.stats.Constructors++
	}
	if m.ImplicitDefaultConstructorNeeded() {
		ctor(api.DefaultCtor)
	}
	if m.ConstCopyConstructor.Kind == api.StateImplicit {
		ctor(api.ConstCopyCtor, api.Field{Name: "other", Type: constRef(class)})
	}
	if m.CopyConstructor.Kind == api.StateImplicit {
		ctor(api.CopyCtor, api.Field{Name: "other", Type: mutRef(class)})
	}
	if m.ImplicitMoveConstructorNeeded() {
		inner := api.NamedType(class)
		ctor(api.MoveCtor, api.Field{Name: "other", Type: api.TypeRef{Form: api.FormRValueRef, Elem: &inner}})
	}

	if !special.HasAnyConstructor(a.Explicit(d), m) && m.Destructor.Exists() {
		gen.add(newSynthetic(FactoryName(class), &api.FunctionDetail{
			Ident:   FactoryIdent,
			Return:  &self,
			Self:    class,
			Static:  true,
			Payload: api.Payload{Kind: api.PayloadDefaultFactory},
		}, class))
		gen.stats.Factories++
	}
}

// upcasts generates one const-to-const cast per ancestor on the allow-list. Casts belong
// to the derived type, so they are kept whenever it is allow-listed. Mutable casts are
// not generated.
func (gen *generator) upcasts(d *api.Declaration) {
	for _, base := range gen.ancestors(d) {
		if !gen.allowed(base) {
			continue
		}
		ret := constRef(base)
		gen.add(newSynthetic(CastName(d.Name, base), &api.FunctionDetail{
			Ident:   CastName(d.Name, base).Final(),
			Params:  []api.Field{{Name: "self", Type: constRef(d.Name)}},
			Return:  &ret,
			Self:    d.Name,
			Payload: api.Payload{Kind: api.PayloadCast, From: d.Name, To: base},
		}, d.Name, base))
		gen.stats.Casts++
	}
}

func (gen *generator) allowed(name api.QualifiedName) bool {
	if b, ok := gen.g.Get(name); ok {
		return gen.allow.Match(b.AllowlistName())
	}
	return gen.allow.Match(string(name))
}

// ancestors returns every transitive base, nearest first, without repeats.
func (gen *generator) ancestors(d *api.Declaration) []api.QualifiedName {
	seen := api.NewNameSet(d.Name)
	var out []api.QualifiedName
	queue := append([]api.QualifiedName(nil), d.Bases()...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen.Has(next) {
			continue
		}
		seen.Add(next)
		out = append(out, next)
		if b, ok := gen.g.Get(next); ok {
			queue = append(queue, b.Bases()...)
		}
	}
	return out
}

func (gen *generator) allocators(d *api.Declaration) {
	ptr := pointerTo(d.Name)
	gen.add(newSynthetic(AllocName(d.Name), &api.FunctionDetail{
		Ident:   AllocName(d.Name).Final(),
		Return:  &ptr,
		Payload: api.Payload{Kind: api.PayloadAlloc},
	}, d.Name))
	gen.add(newSynthetic(FreeName(d.Name), &api.FunctionDetail{
		Ident:   FreeName(d.Name).Final(),
		Params:  []api.Field{{Name: "ptr", Type: pointerTo(d.Name)}},
		Payload: api.Payload{Kind: api.PayloadFree},
	}, d.Name))
	gen.stats.Allocators += 2
}

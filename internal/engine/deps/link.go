package deps

import (
	"log/slog"

	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/synth"
)

// Link fills in every declaration's dependency set and appends a CType declaration
// for each variable-length C integer type that some declaration refers to.
//
//   - functions and methods need every type in their signature and their owning type;
//   - structs need their bases, their field types when they are safe by value (an
//     unsafe type is held opaquely), and their own important synthesized members;
//   - typedefs need their target, subclasses their superclass.
func Link(g *api.Graph[api.Synthesized], known *api.KnownTypes) *api.Graph[api.Linked] {
	if known == nil {
		known = api.DefaultKnownTypes()
	}
	for _, d := range g.Decls() {
		d.Deps = dependencies(d, g.Has)
	}

	ctypes := api.NewNameSet()
	for _, d := range g.Decls() {
		for n := range d.Deps {
			if known.IsCType(n) && !g.Has(n) {
				ctypes.Add(n)
			}
		}
	}
	for _, n := range ctypes.Sorted() {
		if err := g.Insert(&api.Declaration{
			Name:       n,
			Kind:       api.KindCType,
			Provenance: api.ProvenanceSynthesized,
			CType:      &api.CTypeDetail{Spelling: string(n)},
			Analysis:   api.Analysis{Safety: api.SafeByValue},
		}); err != nil {
			slog.Warn("could not add ctype", "decl", n, "error", err)
		}
	}

	slog.Debug("dependency edges built", "decls", g.Len(), "edges", g.EdgeCount(), "ctypes", len(ctypes))
	return api.Advance[api.Linked](g)
}

func dependencies(d *api.Declaration, has func(api.QualifiedName) bool) api.NameSet {
	out := api.NewNameSet()
	switch {
	case d.Kind == api.KindErrorMarker:
		return out
	case d.Function != nil:
		out.Union(d.Deps)
		out.Union(d.Function.References())
		out.Add(d.Function.Self)
	case d.Kind == api.KindStruct:
		for _, b := range d.Struct.Bases {
			out.Add(b)
		}
		if d.Analysis.Safety == api.SafeByValue {
			for _, f := range d.Struct.Fields {
				out.Union(f.Type.References())
			}
		}
		addMembers(out, d.Name, has)
	case d.Kind == api.KindSubclass:
		out.Add(d.Subclass.Superclass)
		addMembers(out, d.Name, has)
	case d.Kind == api.KindTypedef:
		out.Union(d.Typedef.Target.References())
	}
	delete(out, d.Name)
	return out
}

func addMembers(out api.NameSet, class api.QualifiedName, has func(api.QualifiedName) bool) {
	for _, m := range synth.ImportantMembers(class) {
		if has(m) {
			out.Add(m)
		}
	}
}

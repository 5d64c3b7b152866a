package order

import (
	"fmt"
	"log/slog"
	"strings"

	coreerrors "cxxbind/internal/core/errors"
	"cxxbind/internal/engine/api"
)

// Containment returns the types a class holds inline: its bases and the types of its
// by-value fields, with typedef chains resolved. Only names accepted by keep are returned.
func Containment(d *api.Declaration, lookup func(api.QualifiedName) (*api.Declaration, bool), keep func(api.QualifiedName) bool) api.NameSet {
	out := api.NewNameSet()
	add := func(name api.QualifiedName) {
		if name = resolveTypedef(name, lookup); name != "" && keep(name) {
			out.Add(name)
		}
	}
	for _, b := range d.Bases() {
		add(b)
	}
	if d.Struct != nil {
		for _, f := range d.Struct.Fields {
			if held := f.Type.Contained(); held != "" {
				add(held)
			}
		}
	}
	return out
}

func resolveTypedef(name api.QualifiedName, lookup func(api.QualifiedName) (*api.Declaration, bool)) api.QualifiedName {
	seen := api.NewNameSet()
	for !seen.Has(name) {
		seen.Add(name)
		d, ok := lookup(name)
		if !ok || d.Kind != api.KindTypedef {
			return name
		}
		held := d.Typedef.Target.Contained()
		if held == "" {
			return ""
		}
		name = held
	}
	return ""
}

// Sort reorders g so that every class follows the classes it contains by value. It scans a
// worklist repeatedly, emitting each declaration whose containment is already emitted.
// A pass that emits nothing means the rest form a containment cycle, which is fatal.
func Sort(g *api.Graph[api.Isolated]) (*api.Graph[api.Ordered], error) {
	decls := g.Decls()
	classes := api.NewNameSet()
	for _, d := range decls {
		if d.IsClass() {
			classes.Add(d.Name)
		}
	}

	needs := make(map[api.QualifiedName]api.NameSet, len(decls))
	for _, d := range decls {
		if d.IsClass() {
			needs[d.Name] = Containment(d, g.Get, classes.Has)
		}
	}

	emitted := api.NewNameSet()
	out := make([]api.QualifiedName, 0, len(decls))
	work := decls
	passes := 0
	for len(work) > 0 {
		passes++
		var requeue []*api.Declaration
		for _, d := range work {
			if ready(needs[d.Name], emitted) {
				emitted.Add(d.Name)
				out = append(out, d.Name)
				continue
			}
			requeue = append(requeue, d)
		}
		if len(requeue) == len(work) {
			stuck := api.NewNameSet()
			for _, d := range requeue {
				stuck.Add(d.Name)
			}
			names := stuck.Strings()
			return nil, coreerrors.Newf(coreerrors.CodeStructuralCycle,
				"types contain each other by value: %s", strings.Join(names, ", ")).
				WithContext(coreerrors.CtxTypes, fmt.Sprint(names))
		}
		work = requeue
	}

	g.Reorder(out)
	slog.Debug("declarations ordered", "decls", len(out), "passes", passes)
	return api.Advance[api.Ordered](g), nil
}

func ready(needs, emitted api.NameSet) bool {
	for n := range needs {
		if !emitted.Has(n) {
			return false
		}
	}
	return true
}

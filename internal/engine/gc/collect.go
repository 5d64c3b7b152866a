package gc

import (
	"log/slog"

	"cxxbind/internal/engine/allowlist"
	"cxxbind/internal/engine/api"
)

// Result reports what collection kept and why.
type Result struct {
	Roots       int
	Kept        int
	Removed     int
	Diagnostics []api.Diagnostic
}

// Collect keeps the declarations reachable from the allow-list through dependency edges
// and discards the rest. Names with no declaration (intrinsics, unknown types) leave the
// frontier silently. Allow-list entries that selected nothing are reported.
func Collect(g *api.Graph[api.Linked], allow *allowlist.Matcher) (*api.Graph[api.Collected], Result) {
	var res Result
	hit := make(map[string]bool)
	reached := api.NewNameSet()
	var queue []api.QualifiedName

	for _, d := range g.Decls() {
		if allow.MatchesAll() {
			queue = append(queue, d.Name)
			continue
		}
		if entry, ok := allow.MatchEntry(d.AllowlistName()); ok {
			hit[entry] = true
			queue = append(queue, d.Name)
		}
	}
	res.Roots = len(queue)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if reached.Has(name) {
			continue
		}
		d, ok := g.Get(name)
		if !ok {
			continue
		}
		reached.Add(name)
		for _, dep := range d.Deps.Sorted() {
			if !reached.Has(dep) {
				queue = append(queue, dep)
			}
		}
	}

	res.Removed = g.Retain(func(d *api.Declaration) bool { return reached.Has(d.Name) })
	res.Kept = g.Len()

	for _, entry := range allow.Entries() {
		if hit[entry] {
			continue
		}
		res.Diagnostics = append(res.Diagnostics, api.Diagnostic{
			Name:    api.QualifiedName(entry),
			Kind:    api.FaultDidNotGenerateAnything,
			Message: api.Fault{Kind: api.FaultDidNotGenerateAnything, Detail: entry}.Message(),
		})
	}

	slog.Debug("garbage collection complete", "roots", res.Roots, "kept", res.Kept, "removed", res.Removed)
	return api.Advance[api.Collected](g), res
}

package ignored

import (
	"log/slog"

	"cxxbind/internal/engine/allowlist"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/names"
)

type Options struct {
	Known     *api.KnownTypes
	Blocklist *allowlist.Matcher
	Names     *names.Validator
}

// Result summarizes one isolation run.
type Result struct {
	Seeded   int
	Cascaded int
	Passes   int
}

// Isolate replaces every declaration that cannot be generated with an ErrorMarker of the
// same name. Block-listed declarations, declarations in an unrepresentable namespace and
// types with unrepresentable identifiers are marked first; then, until a full pass changes nothing, anything depending on a marker
// becomes IgnoredDependent and anything depending on a name that is neither declared nor
// intrinsic becomes UnknownDependentType.
func Isolate(g *api.Graph[api.Collected], opts Options) (*api.Graph[api.Isolated], Result) {
	known := opts.Known
	if known == nil {
		known = api.DefaultKnownTypes()
	}
	validator := opts.Names
	if validator == nil {
		validator = names.NewValidator(nil)
	}

	var res Result
	for _, d := range g.Decls() {
		if d.Kind == api.KindErrorMarker {
			continue
		}
		if opts.Blocklist.Match(d.ForeignName()) {
			g.Replace(api.NewErrorMarker(d, api.Fault{Kind: api.FaultBlocked}))
			res.Seeded++
			continue
		}
		if d.Provenance == api.FromFrontEnd {
			if err := checkName(d, validator); err != nil {
				g.Replace(api.NewErrorMarker(d, api.Fault{Kind: api.FaultUnrepresentableName, Detail: err.Error()}))
				res.Seeded++
			}
		}
	}

	// Each productive pass marks at least one declaration, so n+1 passes always suffice.
	limit := g.Len() + 1
	converged := false
	for !converged && res.Passes < limit {
		res.Passes++
		changed := cascade(g, known)
		res.Cascaded += changed
		converged = changed == 0
	}
	if !converged {
		slog.Error("fault isolation did not converge", "passes", res.Passes)
	}

	slog.Debug("fault isolation complete", "seeded", res.Seeded, "cascaded", res.Cascaded, "passes", res.Passes)
	return api.Advance[api.Isolated](g), res
}

// checkName validates the namespace a declaration is emitted into and, for types, the
// type's own identifier. Callable identifiers are checked when bridge names are assigned.
func checkName(d *api.Declaration, v *names.Validator) error {
	if err := v.ValidatePath(d.Namespace()); err != nil {
		return err
	}
	if d.Kind.IsType() {
		return v.Validate(d.Name.Final())
	}
	return nil
}

func cascade(g *api.Graph[api.Collected], known *api.KnownTypes) int {
	changed := 0
	for _, d := range g.Decls() {
		if d.Kind == api.KindErrorMarker {
			continue
		}
		if f, bad := firstFault(d, g, known); bad {
			g.Replace(api.NewErrorMarker(d, f))
			slog.Debug("declaration ignored", "decl", d.Name, "fault", f.Kind, "dep", f.Dep)
			changed++
		}
	}
	return changed
}

func firstFault(d *api.Declaration, g *api.Graph[api.Collected], known *api.KnownTypes) (api.Fault, bool) {
	for _, dep := range d.Deps.Sorted() {
		target, ok := g.Get(dep)
		switch {
		case ok && target.Kind == api.KindErrorMarker:
			return api.Fault{Kind: api.FaultIgnoredDependent, Dep: dep}, true
		case !ok && !known.Has(dep):
			return api.Fault{Kind: api.FaultUnknownDependentType, Dep: dep}, true
		}
	}
	return api.Fault{}, false
}

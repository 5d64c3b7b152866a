package overload

import (
	"log/slog"
	"strings"

	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/names"
	"cxxbind/internal/engine/synth"
)

type Result struct {
	Renamed         int
	Collisions      int
	Unrepresentable int
}

// BridgeIdent is the identifier a callable starts from before disambiguation.
// Constructors are spelled like synthesized ones.
func BridgeIdent(d *api.Declaration) string {
	if d.Function != nil && d.Function.Constructor {
		return synth.ConstructorIdent
	}
	return d.Ident()
}

// Disambiguate assigns every declaration a bridge name. Callables are numbered in graph
// order with one Tracker per namespace. A reserved identifier gets a trailing underscore;
// one that cannot be spelled at all (an operator, say) becomes an UnrepresentableName
// marker. A bridge name already claimed in the same scope (a real function literally named
// like a generated suffix) turns the later claimant into a DuplicateName marker.
func Disambiguate(g *api.Graph[api.Ordered], v *names.Validator) (*api.Graph[api.Named], Result) {
	if v == nil {
		v = names.NewValidator(nil)
	}
	var res Result
	trackers := make(map[string]*Tracker)
	claimed := make(map[string]api.QualifiedName)

	for _, d := range g.Decls() {
		if d.Kind == api.KindErrorMarker {
			d.Analysis.BridgeName = d.Name.Final()
			continue
		}
		if !d.Kind.IsCallable() {
			d.Analysis.BridgeName = d.Name.Final()
			continue
		}

		scope := strings.Join(d.Namespace(), api.Separator)
		tr, ok := trackers[scope]
		if !ok {
			tr = NewTracker()
			trackers[scope] = tr
		}

		ident, err := v.BridgeIdent(BridgeIdent(d))
		if err != nil {
			slog.Debug("callable name not representable", "decl", d.Name, "error", err)
			marker := api.NewErrorMarker(d, api.Fault{Kind: api.FaultUnrepresentableName, Detail: err.Error()})
			marker.Analysis.BridgeName = d.Name.Final()
			g.Replace(marker)
			res.Unrepresentable++
			continue
		}
		var bridge string
		if self := d.SelfType(); self != "" {
			bridge = tr.MethodName(self, ident)
		} else {
			bridge = tr.FunctionName(ident)
		}

		key := scope + "|" + string(d.SelfType()) + "|" + bridge
		if prev, taken := claimed[key]; taken {
			slog.Warn("bridge name collision", "decl", d.Name, "bridge", bridge, "claimed_by", prev)
			marker := api.NewErrorMarker(d, api.Fault{Kind: api.FaultDuplicateName, Detail: bridge})
			marker.Analysis.BridgeName = d.Name.Final()
			g.Replace(marker)
			res.Collisions++
			continue
		}
		claimed[key] = d.Name
		d.Analysis.BridgeName = bridge
		if bridge != ident {
			res.Renamed++
		}
	}

	slog.Debug("bridge names assigned", "renamed", res.Renamed, "collisions", res.Collisions, "unrepresentable", res.Unrepresentable)
	return api.Advance[api.Named](g), res
}

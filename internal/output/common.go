package output

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"cxxbind/internal/core/ports"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/namespace"
)

// nodeClass groups declarations for styling.
type nodeClass int

const (
	classType nodeClass = iota
	classCallable
	classSynthetic
	classMarker
	classIntrinsic
)

func classify(d *api.Declaration) nodeClass {
	switch {
	case d == nil:
		return classIntrinsic
	case d.Kind == api.KindErrorMarker:
		return classMarker
	case d.Provenance == api.ProvenanceSynthesized:
		return classSynthetic
	case d.Kind.IsCallable():
		return classCallable
	}
	return classType
}

func treeOf(in ports.RenderInput) *namespace.Tree[*api.Declaration] {
	if in.Tree != nil {
		return in.Tree
	}
	var decls []*api.Declaration
	if in.Graph != nil {
		decls = in.Graph.Decls()
	}
	return namespace.Build(decls, (*api.Declaration).Namespace)
}

// edges returns every dependency edge in graph order; targets absent from the graph are
// reported separately as intrinsics.
func edges(g *api.Graph[api.Named]) (out [][2]string, intrinsics []string) {
	if g == nil {
		return nil, nil
	}
	seen := make(map[string]bool)
	for _, d := range g.Decls() {
		for _, dep := range d.Deps.Sorted() {
			out = append(out, [2]string{string(d.Name), string(dep)})
			if !g.Has(dep) && !seen[string(dep)] {
				seen[string(dep)] = true
				intrinsics = append(intrinsics, string(dep))
			}
		}
	}
	sort.Strings(intrinsics)
	return out, intrinsics
}

func describe(d *api.Declaration) string {
	switch {
	case d.Kind == api.KindErrorMarker && d.Fault != nil:
		return d.Fault.Message()
	case d.Function != nil:
		ret := "void"
		if d.Function.Return != nil {
			ret = d.Function.Return.String()
		}
		return fmt.Sprintf("%s%s -> %s", d.Analysis.BridgeName, d.Function.Signature(), ret)
	case d.Typedef != nil:
		return "= " + d.Typedef.Target.String()
	case d.Struct != nil:
		return fmt.Sprintf("%d fields, %s", len(d.Struct.Fields), d.Analysis.Safety)
	case d.Enum != nil:
		return fmt.Sprintf("%d variants", len(d.Enum.Variants))
	}
	return d.Kind.String()
}

func sanitizeID(name string) string {
	if name == "" {
		return "n"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if unicode.IsDigit(rune(out[0])) {
		return "n_" + out
	}
	return out
}

// makeIDs gives every name a distinct sanitized identifier.
func makeIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		if _, done := ids[name]; done {
			continue
		}
		base := sanitizeID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func joinInts(v []int) string {
	parts := make([]string, 0, len(v))
	for _, n := range v {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ",")
}

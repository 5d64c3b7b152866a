package output

import (
	"fmt"
	"io"
	"strings"

	"cxxbind/internal/core/ports"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/namespace"
)

// DOTGenerator draws the dependency graph with one cluster per namespace.
type DOTGenerator struct{}

func NewDOTGenerator() *DOTGenerator {
	return &DOTGenerator{}
}

func (d *DOTGenerator) Name() string { return "dot" }

func (d *DOTGenerator) Render(w io.Writer, in ports.RenderInput) error {
	out, err := d.Generate(in)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func (d *DOTGenerator) Generate(in ports.RenderInput) (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph api {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  overlap=false;\n\n")

	markers := make(map[string]bool)
	clusters := 0
	treeOf(in).Walk(func(path []string, node *namespace.Tree[*api.Declaration]) bool {
		entries := node.Entries()
		if len(entries) == 0 {
			return true
		}
		indent := "  "
		if len(path) > 0 {
			clusters++
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", clusters)
			fmt.Fprintf(&buf, "    label=\"%s\";\n", strings.Join(path, api.Separator))
			buf.WriteString("    style=filled;\n")
			buf.WriteString("    color=\"whitesmoke\";\n")
			indent = "    "
		}
		for _, decl := range entries {
			label := fmt.Sprintf("%s\\n(%s)", decl.Name.Final(), decl.Kind)
			switch classify(decl) {
			case classMarker:
				markers[string(decl.Name)] = true
				label = fmt.Sprintf("%s\\n(%s)", decl.Name.Final(), decl.Fault.Kind)
				fmt.Fprintf(&buf, "%s\"%s\" [label=\"%s\", fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\", penwidth=2.0];\n", indent, decl.Name, escapeLabel(label))
			case classSynthetic:
				fmt.Fprintf(&buf, "%s\"%s\" [label=\"%s\", color=\"steelblue\", style=\"rounded,dashed\"];\n", indent, decl.Name, escapeLabel(label))
			case classCallable:
				fmt.Fprintf(&buf, "%s\"%s\" [label=\"%s\", shape=ellipse, color=\"darkslategrey\"];\n", indent, decl.Name, escapeLabel(label))
			default:
				fmt.Fprintf(&buf, "%s\"%s\" [label=\"%s\", color=\"darkslategrey\"];\n", indent, decl.Name, escapeLabel(label))
			}
		}
		if len(path) > 0 {
			buf.WriteString("  }\n")
		}
		return true
	})
	buf.WriteString("\n")

	all, intrinsics := edges(in.Graph)
	if len(intrinsics) > 0 {
		buf.WriteString("  // Intrinsic types\n")
		buf.WriteString("  node [fillcolor=\"gainsboro\", style=\"rounded,filled\", color=\"grey\"];\n")
		for _, name := range intrinsics {
			fmt.Fprintf(&buf, "  \"%s\";\n", name)
		}
		buf.WriteString("\n")
	}

	for _, e := range all {
		from, to := e[0], e[1]
		switch {
		case markers[to]:
			fmt.Fprintf(&buf, "  \"%s\" -> \"%s\" [color=\"red\", penwidth=2.0];\n", from, to)
		case in.Graph.Has(api.QualifiedName(to)):
			fmt.Fprintf(&buf, "  \"%s\" -> \"%s\" [color=\"forestgreen\"];\n", from, to)
		default:
			fmt.Fprintf(&buf, "  \"%s\" -> \"%s\" [color=\"grey\", style=dashed];\n", from, to)
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

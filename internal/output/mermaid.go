package output

import (
	"fmt"
	"io"
	"strings"

	"cxxbind/internal/core/ports"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/namespace"
)

// MermaidGenerator draws the dependency graph as a flowchart with namespace subgraphs.
type MermaidGenerator struct{}

func NewMermaidGenerator() *MermaidGenerator {
	return &MermaidGenerator{}
}

func (m *MermaidGenerator) Name() string { return "mermaid" }

func (m *MermaidGenerator) Render(w io.Writer, in ports.RenderInput) error {
	out, err := m.Generate(in)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func (m *MermaidGenerator) Generate(in ports.RenderInput) (string, error) {
	var b strings.Builder
	b.WriteString("%%{init: {'flowchart': {'nodeSpacing': 80, 'rankSpacing': 110, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	var decls []*api.Declaration
	if in.Graph != nil {
		decls = in.Graph.Decls()
	}
	allEdges, intrinsics := edges(in.Graph)

	allNames := make([]string, 0, len(decls)+len(intrinsics))
	for _, d := range decls {
		allNames = append(allNames, string(d.Name))
	}
	allNames = append(allNames, intrinsics...)
	ids := makeIDs(allNames)

	byClass := make(map[nodeClass][]string)
	subgraphs := 0
	treeOf(in).Walk(func(path []string, node *namespace.Tree[*api.Declaration]) bool {
		entries := node.Entries()
		if len(entries) == 0 {
			return true
		}
		indent := "  "
		if len(path) > 0 {
			subgraphs++
			label := strings.Join(path, api.Separator)
			b.WriteString(fmt.Sprintf("  subgraph ns_%d[\"%s\"]\n", subgraphs, escapeLabel(label)))
			indent = "    "
		}
		for _, d := range entries {
			id := ids[string(d.Name)]
			class := classify(d)
			byClass[class] = append(byClass[class], id)
			label := fmt.Sprintf("%s<br/>%s", d.Name.Final(), d.Kind)
			if class == classMarker {
				label = fmt.Sprintf("%s<br/>%s", d.Name.Final(), d.Fault.Kind)
			}
			b.WriteString(fmt.Sprintf("%s%s[\"%s\"]\n", indent, id, escapeLabel(label)))
		}
		if len(path) > 0 {
			b.WriteString("  end\n")
		}
		return true
	})
	for _, name := range intrinsics {
		id := ids[name]
		byClass[classIntrinsic] = append(byClass[classIntrinsic], id)
		b.WriteString(fmt.Sprintf("  %s([\"%s\"])\n", id, escapeLabel(name)))
	}

	var markerLinks, intrinsicLinks []int
	for i, e := range allEdges {
		from, to := e[0], e[1]
		b.WriteString(fmt.Sprintf("  %s --> %s\n", ids[from], ids[to]))
		target, ok := in.Graph.Get(api.QualifiedName(to))
		switch {
		case !ok:
			intrinsicLinks = append(intrinsicLinks, i)
		case target.Kind == api.KindErrorMarker:
			markerLinks = append(markerLinks, i)
		}
	}

	writeClass(&b, byClass[classType], "typeNode", "fill:#f7fbff,stroke:#4d6480,stroke-width:1px")
	writeClass(&b, byClass[classCallable], "callableNode", "fill:#f4fff4,stroke:#3d7a3d,stroke-width:1px")
	writeClass(&b, byClass[classSynthetic], "syntheticNode", "fill:#f7fbff,stroke:#4682b4,stroke-dasharray:4 3")
	writeClass(&b, byClass[classMarker], "markerNode", "fill:#ffecec,stroke:#cc0000,stroke-width:2px")
	writeClass(&b, byClass[classIntrinsic], "intrinsicNode", "fill:#efefef,stroke:#808080,stroke-dasharray:4 3")

	if len(markerLinks) > 0 {
		b.WriteString(fmt.Sprintf("  linkStyle %s stroke:#cc0000,stroke-width:3px;\n", joinInts(markerLinks)))
	}
	if len(intrinsicLinks) > 0 {
		b.WriteString(fmt.Sprintf("  linkStyle %s stroke:#777777,stroke-dasharray:4 3;\n", joinInts(intrinsicLinks)))
	}

	return b.String(), nil
}

func writeClass(b *strings.Builder, ids []string, name, style string) {
	if len(ids) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("  classDef %s %s;\n", name, style))
	b.WriteString(fmt.Sprintf("  class %s %s;\n", strings.Join(ids, ","), name))
}

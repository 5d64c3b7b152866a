package output

import (
	"fmt"
	"io"
	"strings"

	"cxxbind/internal/core/ports"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/namespace"
)

// MarkdownGenerator writes a human-readable report of the generated API.
// Error markers are listed as documented placeholders so users can see what was skipped.
type MarkdownGenerator struct {
	// IncludeDiagram embeds the mermaid flowchart at the end of the report.
	IncludeDiagram bool
}

func NewMarkdownGenerator(includeDiagram bool) *MarkdownGenerator {
	return &MarkdownGenerator{IncludeDiagram: includeDiagram}
}

func (m *MarkdownGenerator) Name() string { return "markdown" }

func (m *MarkdownGenerator) Render(w io.Writer, in ports.RenderInput) error {
	out, err := m.Generate(in)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func (m *MarkdownGenerator) Generate(in ports.RenderInput) (string, error) {
	var b strings.Builder
	tree := treeOf(in)

	generated, markers := 0, 0
	tree.Walk(func(_ []string, node *namespace.Tree[*api.Declaration]) bool {
		for _, d := range node.Entries() {
			if d.Kind == api.KindErrorMarker {
				markers++
				continue
			}
			generated++
		}
		return true
	})

	b.WriteString("# Generated bindings\n\n")
	b.WriteString(fmt.Sprintf("- Declarations: %d\n", generated))
	b.WriteString(fmt.Sprintf("- Not generated: %d\n", markers))
	b.WriteString(fmt.Sprintf("- Diagnostics: %d\n\n", len(in.Diagnostics)))

	tree.Walk(func(path []string, node *namespace.Tree[*api.Declaration]) bool {
		entries := node.Entries()
		if len(entries) == 0 {
			return true
		}
		title := "(root)"
		if len(path) > 0 {
			title = "`" + strings.Join(path, api.Separator) + "`"
		}
		b.WriteString(fmt.Sprintf("## %s\n\n", title))
		b.WriteString("| Name | Kind | Details |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, d := range entries {
			name := d.Name.Final()
			kind := d.Kind.String()
			if d.Kind == api.KindErrorMarker && d.Fault != nil {
				name = "~~" + name + "~~"
				kind = fmt.Sprintf("not generated (%s)", d.Fault.Kind)
			} else if d.Provenance == api.ProvenanceSynthesized {
				kind += ", synthesized"
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", name, kind, markdownCell(describe(d))))
		}
		b.WriteString("\n")
		return true
	})

	if len(in.Diagnostics) > 0 {
		b.WriteString("## Diagnostics\n\n")
		for _, d := range in.Diagnostics {
			b.WriteString(fmt.Sprintf("- `%s` %s: %s\n", d.Name, d.Kind, d.Message))
		}
		b.WriteString("\n")
	}

	if m.IncludeDiagram {
		diagram, err := NewMermaidGenerator().Generate(in)
		if err != nil {
			return "", err
		}
		b.WriteString("## Dependency graph\n\n```mermaid\n")
		b.WriteString(diagram)
		b.WriteString("```\n")
	}

	return b.String(), nil
}

func markdownCell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}

package output

import (
	"fmt"
	"io"
	"strings"

	"cxxbind/internal/core/ports"
)

// TSVGenerator writes one row per diagnostic.
type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

func (t *TSVGenerator) Name() string { return "tsv" }

func (t *TSVGenerator) Render(w io.Writer, in ports.RenderInput) error {
	out, err := t.Generate(in)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func (t *TSVGenerator) Generate(in ports.RenderInput) (string, error) {
	var buf strings.Builder

	buf.WriteString("Declaration\tFault\tDependency\tMessage\n")
	for _, d := range in.Diagnostics {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\n",
			d.Name, d.Kind, d.Dep, tsvField(d.Message)))
	}

	return buf.String(), nil
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

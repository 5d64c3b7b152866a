package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCatalogue(t *testing.T) {
	raw := []RawDecl{
		{Kind: "forward", Name: "Point", Namespace: "geom"},
		{Kind: "struct", Name: "Point", Namespace: "geom", Fields: []RawField{{Name: "x", Type: "double"}},
			Members: []RawMember{{Kind: "destructor"}}},
		{Kind: "method", Name: "norm", Self: "geom::Point", Return: "double", Const: true},
		{Kind: "function", Name: "area", Namespace: "geom", Params: []RawField{{Name: "p", Type: "const geom::Point&"}}, Return: "double"},
		{Kind: "function", Name: "area", Namespace: "geom", Params: []RawField{{Name: "p", Type: "int"}}, Return: "double"},
		{Kind: "typedef", Name: "Coord", Namespace: "geom", Target: "double"},
	}
	g := FromCatalogue(raw, NewTypeParser(16))

	assert.Equal(t, []QualifiedName{"geom::Point", "geom::Point::norm", "geom::area", "geom::area#1", "geom::Coord"}, names(g.Decls()))

	p, ok := g.Get("geom::Point")
	require.True(t, ok)
	require.NotNil(t, p.Struct)
	assert.Equal(t, []MemberDecl{{Kind: Dtor}}, p.Struct.Declared)

	m, _ := g.Get("geom::Point::norm")
	assert.Equal(t, KindMethod, m.Kind)
	assert.Equal(t, "geom::Point", m.AllowlistName())
	assert.Equal(t, []string{"geom"}, m.Namespace())

	overload, _ := g.Get("geom::area#1")
	assert.Equal(t, "area", overload.Ident())
	assert.Equal(t, []string{"geom"}, overload.Namespace())
	assert.Equal(t, "geom::area", overload.AllowlistName(), "overloads match the allow-list by their shared name")
}

func TestFromCatalogueDuplicates(t *testing.T) {
	raw := []RawDecl{
		{Kind: "struct", Name: "S"},
		{Kind: "enum", Name: "S"},
		{Kind: "struct", Name: "S"},
		{Kind: "function", Name: "f", Params: []RawField{{Name: "a", Type: "int"}}},
		{Kind: "function", Name: "f", Params: []RawField{{Name: "b", Type: "int"}}},
		{Kind: "struct", Name: "T"},
	}
	g := FromCatalogue(raw, nil)

	require.Equal(t, 3, g.Len())
	for _, n := range []QualifiedName{"S", "f"} {
		d, ok := g.Get(n)
		require.True(t, ok)
		assert.Equal(t, KindErrorMarker, d.Kind)
		assert.Equal(t, FaultDuplicateName, d.Fault.Kind)
	}
	d, _ := g.Get("T")
	assert.Equal(t, KindStruct, d.Kind)
}

func TestFromCatalogueUnsupportedSignature(t *testing.T) {
	raw := []RawDecl{
		{Kind: "function", Name: "cb", Params: []RawField{{Name: "fn", Type: "void (*)(int)"}}},
		{Kind: "function", Name: "cb", Params: []RawField{{Name: "x", Type: "int"}}},
		{Kind: "widget", Name: "w"},
	}
	g := FromCatalogue(raw, NewTypeParser(0))

	require.Equal(t, 2, g.Len())
	bad, _ := g.Get("cb")
	assert.Equal(t, FaultUnsupportedType, bad.Fault.Kind)
	good, _ := g.Get("cb#1")
	assert.Equal(t, KindFunction, good.Kind)
}

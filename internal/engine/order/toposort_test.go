package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "cxxbind/internal/core/errors"
	"cxxbind/internal/engine/api"
)

func isolated(t *testing.T, records ...api.RawDecl) *api.Graph[api.Isolated] {
	t.Helper()
	return api.Advance[api.Isolated](api.FromCatalogue(records, nil))
}

func sortedNames(g *api.Graph[api.Ordered]) []api.QualifiedName {
	var out []api.QualifiedName
	for _, d := range g.Decls() {
		out = append(out, d.Name)
	}
	return out
}

func TestSortFieldsBeforeContainers(t *testing.T) {
	g, err := Sort(isolated(t,
		api.RawDecl{Kind: "struct", Name: "A"},
		api.RawDecl{Kind: "struct", Name: "B", Fields: []api.RawField{{Name: "a", Type: "A"}, {Name: "c", Type: "C"}}},
		api.RawDecl{Kind: "struct", Name: "C", Fields: []api.RawField{{Name: "a", Type: "A"}}},
	))
	require.NoError(t, err)
	assert.Equal(t, []api.QualifiedName{"A", "C", "B"}, sortedNames(g))
}

func TestSortIgnoresIndirection(t *testing.T) {
	g, err := Sort(isolated(t,
		api.RawDecl{Kind: "struct", Name: "Node", Fields: []api.RawField{{Name: "next", Type: "Node*"}, {Name: "list", Type: "List&"}}},
		api.RawDecl{Kind: "struct", Name: "List", Fields: []api.RawField{{Name: "head", Type: "std::unique_ptr<Node>"}}},
		api.RawDecl{Kind: "function", Name: "f"},
	))
	require.NoError(t, err)
	assert.Equal(t, []api.QualifiedName{"Node", "List", "f"}, sortedNames(g))
}

func TestSortBasesArraysAndTypedefs(t *testing.T) {
	g, err := Sort(isolated(t,
		api.RawDecl{Kind: "struct", Name: "Derived", Bases: []string{"Base"}, Fields: []api.RawField{{Name: "vs", Type: "VecAlias[3]"}}},
		api.RawDecl{Kind: "typedef", Name: "VecAlias", Target: "Vec"},
		api.RawDecl{Kind: "struct", Name: "Vec"},
		api.RawDecl{Kind: "struct", Name: "Base"},
	))
	require.NoError(t, err)
	names := sortedNames(g)
	pos := map[api.QualifiedName]int{}
	for i, n := range names {
		pos[n] = i
	}
	assert.Less(t, pos["Vec"], pos["Derived"])
	assert.Less(t, pos["Base"], pos["Derived"])
	assert.Equal(t, 0, pos["VecAlias"], "non-class declarations keep their place in the first pass")
}

func TestSortStructuralCycle(t *testing.T) {
	_, err := Sort(isolated(t,
		api.RawDecl{Kind: "struct", Name: "Ok"},
		api.RawDecl{Kind: "struct", Name: "X", Fields: []api.RawField{{Name: "y", Type: "Y"}}},
		api.RawDecl{Kind: "struct", Name: "Y", Fields: []api.RawField{{Name: "x", Type: "X[2]"}}},
	))
	require.Error(t, err)
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeStructuralCycle))
	assert.Contains(t, err.Error(), "X, Y")

	_, err = Sort(isolated(t, api.RawDecl{Kind: "struct", Name: "Self", Fields: []api.RawField{{Name: "s", Type: "Self"}}}))
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeStructuralCycle))
}

// In the output every class comes after each class it contains.
func TestSortTopologicalValidity(t *testing.T) {
	records := []api.RawDecl{
		{Kind: "struct", Name: "E", Fields: []api.RawField{{Name: "d", Type: "D"}, {Name: "b", Type: "B"}}},
		{Kind: "struct", Name: "D", Bases: []string{"C"}},
		{Kind: "struct", Name: "C", Fields: []api.RawField{{Name: "a", Type: "A[4]"}}},
		{Kind: "struct", Name: "B", Fields: []api.RawField{{Name: "a", Type: "A"}, {Name: "p", Type: "E*"}}},
		{Kind: "struct", Name: "A"},
	}
	g, err := Sort(isolated(t, records...))
	require.NoError(t, err)

	pos := map[api.QualifiedName]int{}
	decls := g.Decls()
	for i, d := range decls {
		pos[d.Name] = i
	}
	for _, d := range decls {
		for dep := range Containment(d, g.Get, func(api.QualifiedName) bool { return true }) {
			assert.Less(t, pos[dep], pos[d.Name], "%s must follow %s", d.Name, dep)
		}
	}
}

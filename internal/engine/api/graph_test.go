package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structDecl(name string) *Declaration {
	return &Declaration{Name: QualifiedName(name), Kind: KindStruct, Struct: &StructDetail{}}
}

func TestGraphInsertRejectsDuplicates(t *testing.T) {
	g := NewGraph[Parsed]()
	require.NoError(t, g.Insert(structDecl("ns::A")))

	err := g.Insert(structDecl("ns::A"))
	var dup *DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, QualifiedName("ns::A"), dup.Name)
	assert.Equal(t, 1, g.Len())
}

func TestGraphInsertSupersedes(t *testing.T) {
	g := NewGraph[Parsed]()
	require.NoError(t, g.Insert(&Declaration{Name: "A", Kind: KindForward}))
	require.NoError(t, g.Insert(structDecl("B")))
	require.NoError(t, g.Insert(structDecl("A")))

	d, ok := g.Get("A")
	require.True(t, ok)
	assert.Equal(t, KindStruct, d.Kind)
	assert.Equal(t, []QualifiedName{"A", "B"}, names(g.Decls()))

	require.NoError(t, g.Insert(NewErrorMarker(d, Fault{Kind: FaultBlocked})))
	d, _ = g.Get("A")
	assert.Equal(t, KindErrorMarker, d.Kind)
	assert.Equal(t, KindStruct, d.Fault.Was)
}

func TestGraphRetainAndReorder(t *testing.T) {
	g := NewGraph[Parsed]()
	for _, n := range []string{"A", "B", "C", "D"} {
		require.NoError(t, g.Insert(structDecl(n)))
	}
	removed := g.Retain(func(d *Declaration) bool { return d.Name != "B" })
	assert.Equal(t, 1, removed)
	assert.False(t, g.Has("B"))

	g.Reorder([]QualifiedName{"D", "A", "C"})
	assert.Equal(t, []QualifiedName{"D", "A", "C"}, names(g.Decls()))

	assert.Panics(t, func() { g.Reorder([]QualifiedName{"D", "D", "C"}) })
}

func TestAdvanceConsumesSource(t *testing.T) {
	g := NewGraph[Parsed]()
	require.NoError(t, g.Insert(structDecl("A")))

	next := Advance[Classified](g)
	assert.Equal(t, "classified", next.Phase())
	assert.Equal(t, 1, next.Len())
	assert.PanicsWithValue(t, "api: parsed graph used after it was advanced to classified", func() {
		g.Len()
	})
}

func names(decls []*Declaration) []QualifiedName {
	out := make([]QualifiedName, len(decls))
	for i, d := range decls {
		out[i] = d.Name
	}
	return out
}

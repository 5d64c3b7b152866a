package gc

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxxbind/internal/engine/allowlist"
	"cxxbind/internal/engine/api"
)

func graphOf(t *testing.T, edges map[string][]string, order ...string) *api.Graph[api.Linked] {
	t.Helper()
	g := api.NewGraph[api.Linked]()
	for _, n := range order {
		deps := api.NewNameSet()
		for _, dep := range edges[n] {
			deps.Add(api.QualifiedName(dep))
		}
		require.NoError(t, g.Insert(&api.Declaration{Name: api.QualifiedName(n), Kind: api.KindFunction, Function: &api.FunctionDetail{}, Deps: deps}))
	}
	return g
}

func TestCollectFollowsDependencies(t *testing.T) {
	g := graphOf(t, map[string][]string{
		"f": {"T", "int"},
		"T": {"U"},
		"U": {"T"},
		"V": {"T"},
	}, "V", "f", "T", "U", "W")

	out, res := Collect(g, allowlist.MustNew("f", "missing"))

	var kept []api.QualifiedName
	for _, d := range out.Decls() {
		kept = append(kept, d.Name)
	}
	assert.Equal(t, []api.QualifiedName{"f", "T", "U"}, kept, "input order is preserved")
	assert.Equal(t, 1, res.Roots)
	assert.Equal(t, 2, res.Removed)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, api.FaultDidNotGenerateAnything, res.Diagnostics[0].Kind)
	assert.Equal(t, api.QualifiedName("missing"), res.Diagnostics[0].Name)
}

func TestCollectMatchesMembersThroughTheirType(t *testing.T) {
	g := api.NewGraph[api.Linked]()
	require.NoError(t, g.Insert(&api.Declaration{Name: "ns::T", Kind: api.KindStruct, Struct: &api.StructDetail{}}))
	require.NoError(t, g.Insert(&api.Declaration{Name: "ns::T::go", Kind: api.KindMethod,
		Function: &api.FunctionDetail{Ident: "go", Self: "ns::T"}, Deps: api.NewNameSet("ns::T")}))
	require.NoError(t, g.Insert(&api.Declaration{Name: "ns::other", Kind: api.KindFunction, Function: &api.FunctionDetail{}}))

	out, _ := Collect(g, allowlist.MustNew("ns::T"))
	assert.True(t, out.Has("ns::T::go"))
	assert.False(t, out.Has("ns::other"))
}

func TestCollectAll(t *testing.T) {
	g := graphOf(t, nil, "a", "b")
	out, res := Collect(g, allowlist.MustNew("all"))
	assert.Equal(t, 2, out.Len())
	assert.Empty(t, res.Diagnostics)
}

// Every declaration reachable from a root survives and nothing else does.
func TestCollectClosureCompleteness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 25; round++ {
		const n = 30
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("d%d", i)
		}
		edges := make(map[string][]string)
		for _, from := range names {
			for k := rng.Intn(3); k > 0; k-- {
				edges[from] = append(edges[from], names[rng.Intn(n)])
			}
		}
		roots := []string{names[rng.Intn(n)], names[rng.Intn(n)]}

		want := map[string]bool{}
		var visit func(string)
		visit = func(s string) {
			if want[s] {
				return
			}
			want[s] = true
			for _, dep := range edges[s] {
				visit(dep)
			}
		}
		for _, r := range roots {
			visit(r)
		}

		out, _ := Collect(graphOf(t, edges, names...), allowlist.MustNew(roots...))
		for _, name := range names {
			assert.Equal(t, want[name], out.Has(api.QualifiedName(name)), "round %d decl %s", round, name)
		}
	}
}

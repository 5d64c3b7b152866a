package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "cxxbind/internal/core/errors"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/synth"
)

func runPipeline(t *testing.T, opts Options, raw ...api.RawDecl) (*Result, error) {
	t.Helper()
	p, err := NewPipeline(opts)
	require.NoError(t, err)
	return p.Run(context.Background(), raw)
}

func TestNewPipelineRejectsBadPatterns(t *testing.T) {
	_, err := NewPipeline(Options{Allowlist: []string{"ns::[bad"}})
	require.Error(t, err)
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeValidationError))

	_, err = NewPipeline(Options{Blocklist: []string{"all"}})
	require.Error(t, err)
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeValidationError))
}

func TestRunBlockedDependencyCascades(t *testing.T) {
	res, err := runPipeline(t, Options{Allowlist: []string{"f"}, Blocklist: []string{"T"}},
		api.RawDecl{Kind: "struct", Name: "T"},
		api.RawDecl{Kind: "function", Name: "f", Params: []api.RawField{{Name: "t", Type: "const T&"}}},
		api.RawDecl{Kind: "struct", Name: "Unrelated"},
	)
	require.NoError(t, err)

	tdecl, ok := res.Graph.Get("T")
	require.True(t, ok)
	assert.Equal(t, api.KindErrorMarker, tdecl.Kind)
	assert.Equal(t, api.FaultBlocked, tdecl.Fault.Kind)

	f, ok := res.Graph.Get("f")
	require.True(t, ok)
	assert.Equal(t, api.KindErrorMarker, f.Kind)
	assert.Equal(t, api.FaultIgnoredDependent, f.Fault.Kind)
	assert.Equal(t, api.QualifiedName("T"), f.Fault.Dep)

	assert.False(t, res.Graph.Has("Unrelated"), "unreachable declarations are collected")

	alloc, ok := res.Graph.Get(synth.AllocName("T"))
	require.True(t, ok)
	assert.Equal(t, api.FaultIgnoredDependent, alloc.Fault.Kind, "generated helpers of a blocked type cascade too")

	var faulted []string
	for _, d := range res.Diagnostics {
		faulted = append(faulted, string(d.Name))
	}
	assert.Contains(t, faulted, "T")
	assert.Contains(t, faulted, "f")
	assert.Equal(t, res.Stats.Markers, len(res.Diagnostics))
}

func TestRunUnsafePodRequestFails(t *testing.T) {
	_, err := runPipeline(t, Options{Allowlist: []string{"S"}, PodRequests: []string{"S"}},
		api.RawDecl{Kind: "struct", Name: "S", Fields: []api.RawField{{Name: "name", Type: "std::string"}}},
	)
	require.Error(t, err)
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeUnsafePodRequest))
}

func TestRunOrdersContainment(t *testing.T) {
	res, err := runPipeline(t, Options{Allowlist: []string{"all"}},
		api.RawDecl{Kind: "struct", Name: "A"},
		api.RawDecl{Kind: "struct", Name: "B", Fields: []api.RawField{{Name: "a", Type: "A"}, {Name: "c", Type: "C"}}},
		api.RawDecl{Kind: "struct", Name: "C", Fields: []api.RawField{{Name: "a", Type: "A"}}},
	)
	require.NoError(t, err)

	pos := map[api.QualifiedName]int{}
	for i, d := range res.Graph.Decls() {
		pos[d.Name] = i
	}
	assert.Less(t, pos["A"], pos["C"])
	assert.Less(t, pos["C"], pos["B"])
}

func TestRunContainmentCycleFails(t *testing.T) {
	_, err := runPipeline(t, Options{Allowlist: []string{"all"}},
		api.RawDecl{Kind: "struct", Name: "P", Fields: []api.RawField{{Name: "q", Type: "Q"}}},
		api.RawDecl{Kind: "struct", Name: "Q", Fields: []api.RawField{{Name: "p", Type: "P"}}},
	)
	require.Error(t, err)
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeStructuralCycle))
}

func TestRunUserDestructor(t *testing.T) {
	res, err := runPipeline(t, Options{Allowlist: []string{"X"}},
		api.RawDecl{Kind: "struct", Name: "X", Members: []api.RawMember{{Kind: "destructor"}}},
	)
	require.NoError(t, err)

	x, ok := res.Graph.Get("X")
	require.True(t, ok)
	require.NotNil(t, x.Analysis.Members)
	assert.Equal(t, api.StateNotPresent, x.Analysis.Members.MoveConstructor.Kind)
	assert.Equal(t, api.StateImplicit, x.Analysis.Members.ConstCopyConstructor.Kind)
	assert.Equal(t, api.StateExplicit, x.Analysis.Members.Destructor.Kind)

	assert.False(t, res.Graph.Has(synth.MemberName("X", api.MoveCtor)))
	assert.False(t, res.Graph.Has(synth.MemberName("X", api.Dtor)), "declared destructors are not synthesized")
	assert.True(t, res.Graph.Has(synth.AllocName("X")))
	assert.True(t, res.Graph.Has(synth.FreeName("X")))
}

func TestRunMissingAllowlistEntry(t *testing.T) {
	res, err := runPipeline(t, Options{Allowlist: []string{"nothing_here"}},
		api.RawDecl{Kind: "struct", Name: "A"},
	)
	require.NoError(t, err)
	assert.Zero(t, res.Graph.Len())
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, api.FaultDidNotGenerateAnything, res.Diagnostics[0].Kind)
}

func TestRunBuildsNamespaceTree(t *testing.T) {
	res, err := runPipeline(t, Options{Allowlist: []string{"geo::*"}},
		api.RawDecl{Kind: "struct", Name: "Point", Namespace: "geo", Fields: []api.RawField{{Name: "x", Type: "int"}}},
		api.RawDecl{Kind: "function", Name: "norm", Namespace: "geo", Params: []api.RawField{{Name: "p", Type: "const geo::Point&"}}, Return: "int"},
	)
	require.NoError(t, err)

	geo, ok := res.Tree.Child("geo")
	require.True(t, ok)
	var local []string
	for _, d := range geo.Entries() {
		local = append(local, string(d.Name))
	}
	assert.Contains(t, local, "geo::Point")
	assert.Contains(t, local, "geo::norm")
	assert.Equal(t, res.Graph.Len(), res.Tree.Len())

	ctype, ok := res.Graph.Get("int")
	require.True(t, ok)
	assert.Equal(t, api.KindCType, ctype.Kind)
	assert.Contains(t, res.Tree.Entries(), ctype)
}

func TestRunIsRepeatable(t *testing.T) {
	raw := []api.RawDecl{
		{Kind: "function", Name: "f", Params: []api.RawField{{Name: "x", Type: "int"}}},
		{Kind: "function", Name: "f", Params: []api.RawField{{Name: "x", Type: "double"}}},
	}
	first, err := runPipeline(t, Options{Allowlist: []string{"f"}}, raw...)
	require.NoError(t, err)
	second, err := runPipeline(t, Options{Allowlist: []string{"f"}}, raw...)
	require.NoError(t, err)

	bridges := func(r *Result) []string {
		var out []string
		for _, d := range r.Graph.Decls() {
			out = append(out, d.Analysis.BridgeName)
		}
		return out
	}
	assert.Equal(t, bridges(first), bridges(second))
	assert.Contains(t, bridges(first), "f1")
}

func TestRunKeepsSynthesizedHelpersOfAllowlistedTypes(t *testing.T) {
	res, err := runPipeline(t, Options{Allowlist: []string{"zoo::Leaf", "zoo::Base", "zoo::Pinned"}},
		api.RawDecl{Kind: "struct", Name: "Base", Namespace: "zoo"},
		api.RawDecl{Kind: "struct", Name: "Leaf", Namespace: "zoo", Bases: []string{"zoo::Base"}},
		api.RawDecl{Kind: "struct", Name: "Pinned", Namespace: "zoo", Fields: []api.RawField{{Name: "n", Type: "zoo::NoCtors"}}},
		api.RawDecl{Kind: "struct", Name: "NoCtors", Namespace: "zoo", Members: []api.RawMember{
			{Kind: "default_ctor", Deleted: true},
			{Kind: "const_copy_ctor", Deleted: true},
		}},
	)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	cast, ok := res.Graph.Get(synth.CastName("zoo::Leaf", "zoo::Base"))
	require.True(t, ok, "upcast is kept with its derived type")
	assert.Equal(t, api.KindSynthetic, cast.Kind)
	assert.Equal(t, api.PayloadCast, cast.Function.Payload.Kind)
	assert.Equal(t, "cast_Leaf_to_Base", cast.Analysis.BridgeName)

	factory, ok := res.Graph.Get(synth.FactoryName("zoo::Pinned"))
	require.True(t, ok, "default factory is kept with its type")
	assert.Equal(t, api.KindSynthetic, factory.Kind)
	assert.Equal(t, synth.FactoryIdent, factory.Analysis.BridgeName)

	for _, name := range []api.QualifiedName{synth.AllocName("zoo::Leaf"), synth.FreeName("zoo::Leaf"), synth.MemberName("zoo::Leaf", api.DefaultCtor)} {
		assert.True(t, res.Graph.Has(name), name)
	}
	assert.Equal(t, 1, res.Stats.Synthesized.Casts)
	assert.Equal(t, 1, res.Stats.Synthesized.Factories)
}

func TestRunCastOfUnlistedDerivedTypeIsCollected(t *testing.T) {
	res, err := runPipeline(t, Options{Allowlist: []string{"zoo::Base"}},
		api.RawDecl{Kind: "struct", Name: "Base", Namespace: "zoo"},
		api.RawDecl{Kind: "struct", Name: "Leaf", Namespace: "zoo", Bases: []string{"zoo::Base"}},
	)
	require.NoError(t, err)
	assert.False(t, res.Graph.Has("zoo::Leaf"))
	assert.False(t, res.Graph.Has(synth.CastName("zoo::Leaf", "zoo::Base")))
}

func TestRunRepairsOrRejectsCallableNames(t *testing.T) {
	res, err := runPipeline(t, Options{Allowlist: []string{"all"}},
		api.RawDecl{Kind: "struct", Name: "S"},
		api.RawDecl{Kind: "function", Name: "type"},
		api.RawDecl{Kind: "function", Name: "operator+", Params: []api.RawField{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}}, Return: "int"},
		api.RawDecl{Kind: "method", Name: "move", Self: "S"},
	)
	require.NoError(t, err)

	typ, ok := res.Graph.Get("type")
	require.True(t, ok)
	assert.Equal(t, "type_", typ.Analysis.BridgeName)
	move, ok := res.Graph.Get("S::move")
	require.True(t, ok)
	assert.Equal(t, "move_", move.Analysis.BridgeName)

	op, ok := res.Graph.Get("operator+")
	require.True(t, ok)
	assert.Equal(t, api.KindErrorMarker, op.Kind)
	assert.Equal(t, api.FaultUnrepresentableName, op.Fault.Kind)

	var unrepresentable []api.QualifiedName
	for _, d := range res.Diagnostics {
		if d.Kind == api.FaultUnrepresentableName {
			unrepresentable = append(unrepresentable, d.Name)
		}
	}
	assert.Equal(t, []api.QualifiedName{"operator+"}, unrepresentable)
}

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		sig       string
		want      string
		refs      []string
		contained QualifiedName
	}{
		{sig: "int", want: "int", refs: []string{"int"}, contained: "int"},
		{sig: "unsigned long long int", want: "unsigned long long", refs: []string{"unsigned long long"}, contained: "unsigned long long"},
		{sig: "const ns::Foo&", want: "const ns::Foo&", refs: []string{"ns::Foo"}},
		{sig: "::ns::Foo *", want: "ns::Foo*", refs: []string{"ns::Foo"}},
		{sig: "std::unique_ptr<geom::Point>", want: "std::unique_ptr<geom::Point>", refs: []string{"geom::Point", "std::unique_ptr"}, contained: "std::unique_ptr"},
		{sig: "Bar[4]", want: "Bar[4]", refs: []string{"Bar"}, contained: "Bar"},
		{sig: "std::array<int, 3>", want: "std::array<int, 3>", refs: []string{"int", "std::array"}, contained: "std::array"},
		{sig: "Foo&&", want: "Foo&&", refs: []string{"Foo"}},
		{sig: "char const * const", want: "const char* const", refs: []string{"char"}},
		{sig: "void", want: "void", refs: []string{}, contained: "void"},
	}

	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			ref, err := ParseType(tt.sig)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref.String())
			assert.Equal(t, tt.refs, ref.References().Strings())
			assert.Equal(t, tt.contained, ref.Contained())
		})
	}
}

func TestParseTypeRejects(t *testing.T) {
	for _, sig := range []string{"", "void (*)(int)", "Foo<", "Foo[n]", "a::"} {
		_, err := ParseType(sig)
		assert.Error(t, err, sig)
	}
}

func TestTypeParserCaches(t *testing.T) {
	p := NewTypeParser(8)
	first, err := p.Parse("std::vector<Foo>")
	require.NoError(t, err)
	second, err := p.Parse("  std::vector<Foo> ")
	require.NoError(t, err)
	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, 1, p.Len())

	_, err = p.Parse("void (*)(int)")
	assert.Error(t, err)
	assert.Equal(t, 1, p.Len())
}

func TestComplexTypes(t *testing.T) {
	assert.False(t, MustParseType("ns::Foo").IsComplex())
	assert.True(t, MustParseType("std::unique_ptr<Foo>").IsComplex())
	assert.True(t, MustParseType("Foo*").IsComplex())
}

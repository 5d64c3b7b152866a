package synth

import (
	"fmt"

	"cxxbind/internal/engine/api"
)

// Bridge identifiers of synthesized members. Constructors share one identifier and are
// told apart later by the overload disambiguator.
const (
	ConstructorIdent = "new"
	DestructorIdent  = "destruct"
	FactoryIdent     = "make_default"
)

var memberKeys = map[api.MemberKind]string{
	api.DefaultCtor:   "synthetic_default_ctor",
	api.ConstCopyCtor: "synthetic_const_copy_ctor",
	api.CopyCtor:      "synthetic_copy_ctor",
	api.MoveCtor:      "synthetic_move_ctor",
	api.Dtor:          "synthetic_destructor",
}

// MemberName is the graph key of a synthesized constructor or destructor of class.
func MemberName(class api.QualifiedName, k api.MemberKind) api.QualifiedName {
	return class.Child(memberKeys[k])
}

// FactoryName is the graph key of the default factory of class.
func FactoryName(class api.QualifiedName) api.QualifiedName {
	return class.Child("synthetic_default_factory")
}

// AllocName and FreeName name the uninitialized-storage pair, placed beside the class.
func AllocName(class api.QualifiedName) api.QualifiedName {
	return class.Sibling(class.Final() + "_alloc")
}

func FreeName(class api.QualifiedName) api.QualifiedName {
	return class.Sibling(class.Final() + "_free")
}

// CastName names the upcast from derived to base, placed beside derived.
func CastName(derived, base api.QualifiedName) api.QualifiedName {
	return derived.Sibling(fmt.Sprintf("cast_%s_to_%s", derived.Final(), base.Final()))
}

// ImportantMembers lists the synthesized members a class needs whenever it is kept.
func ImportantMembers(class api.QualifiedName) []api.QualifiedName {
	return []api.QualifiedName{
		AllocName(class),
		FreeName(class),
		MemberName(class, api.Dtor),
		MemberName(class, api.ConstCopyCtor),
		MemberName(class, api.CopyCtor),
		MemberName(class, api.MoveCtor),
	}
}

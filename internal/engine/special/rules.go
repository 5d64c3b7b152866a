package special

import "cxxbind/internal/engine/api"

// ExplicitItems records which special members a class declares itself.
type ExplicitItems struct {
	declared map[api.MemberKind]api.MemberDecl
}

// ExplicitFrom indexes a class's declared members. A repeated kind keeps the last entry.
func ExplicitFrom(decls []api.MemberDecl) ExplicitItems {
	e := ExplicitItems{declared: make(map[api.MemberKind]api.MemberDecl, len(decls))}
	for _, d := range decls {
		e.declared[d.Kind] = d
	}
	return e
}

func (e ExplicitItems) Declared(k api.MemberKind) (api.MemberDecl, bool) {
	d, ok := e.declared[k]
	return d, ok
}

func (e ExplicitItems) Has(kinds ...api.MemberKind) bool {
	for _, k := range kinds {
		if _, ok := e.declared[k]; ok {
			return true
		}
	}
	return false
}

// DeclaresConstructor reports whether any constructor is user-declared, deleted ones included.
func (e ExplicitItems) DeclaresConstructor() bool {
	return e.Has(api.DefaultCtor, api.ConstCopyCtor, api.CopyCtor, api.MoveCtor, api.OtherCtor)
}

// Determine computes a class's special members from its own declarations and the member
// sets of its direct bases and fields. Precedence: deleted or private members are absent,
// declared members are explicit, and anything else is implicit only when every part allows it.
//
// Suppression follows the C++ rules this engine models: any declared constructor suppresses
// the implicit default constructor; a declared copy or move constructor, copy or move
// assignment, or destructor suppresses the implicit move constructor; a declared copy
// constructor, move constructor or move assignment suppresses the implicit copy constructor.
// A declared destructor does not suppress the implicit copy constructor.
func Determine(explicit ExplicitItems, parts []api.SpecialMemberSet) api.SpecialMemberSet {
	all := func(ok func(api.SpecialMemberSet) bool) bool {
		for _, p := range parts {
			if !ok(p) {
				return false
			}
		}
		return true
	}

	var out api.SpecialMemberSet

	out.DefaultConstructor = declaredOr(explicit, api.DefaultCtor, func() api.MemberState {
		if explicit.DeclaresConstructor() {
			return api.NotPresent
		}
		return implicitIf(all(func(p api.SpecialMemberSet) bool { return p.DefaultConstructor.Exists() }))
	})

	out.Destructor = declaredOr(explicit, api.Dtor, func() api.MemberState {
		return implicitIf(all(func(p api.SpecialMemberSet) bool { return p.Destructor.Exists() }))
	})

	copySuppressed := explicit.Has(api.ConstCopyCtor, api.CopyCtor, api.MoveCtor, api.MoveAssign)
	partsConstCopy := all(func(p api.SpecialMemberSet) bool { return p.ConstCopyConstructor.Exists() })
	partsAnyCopy := all(func(p api.SpecialMemberSet) bool { return p.HasCopy() })

	out.ConstCopyConstructor = declaredOr(explicit, api.ConstCopyCtor, func() api.MemberState {
		return implicitIf(!copySuppressed && partsConstCopy)
	})
	out.CopyConstructor = declaredOr(explicit, api.CopyCtor, func() api.MemberState {
		// The implicit copy takes a non-const reference only when some part lacks a const copy.
		return implicitIf(!copySuppressed && !partsConstCopy && partsAnyCopy)
	})

	out.MoveConstructor = declaredOr(explicit, api.MoveCtor, func() api.MemberState {
		if explicit.Has(api.ConstCopyCtor, api.CopyCtor, api.CopyAssign, api.MoveAssign, api.Dtor) {
			return api.NotPresent
		}
		return implicitIf(all(func(p api.SpecialMemberSet) bool {
			return p.MoveConstructor.Exists() || p.HasCopy()
		}))
	})

	return out
}

func declaredOr(explicit ExplicitItems, k api.MemberKind, implicit func() api.MemberState) api.MemberState {
	if d, ok := explicit.Declared(k); ok {
		if d.Deleted || d.Visibility == api.Private {
			return api.NotPresent
		}
		return api.Explicit(d.Visibility)
	}
	return implicit()
}

func implicitIf(ok bool) api.MemberState {
	if ok {
		return api.Implicit
	}
	return api.NotPresent
}

// HasAnyConstructor reports whether a class can be constructed at all, counting
// declared constructors (deleted ones included) and implicit ones.
func HasAnyConstructor(explicit ExplicitItems, m api.SpecialMemberSet) bool {
	if explicit.DeclaresConstructor() {
		return true
	}
	return m.DefaultConstructor.Exists() || m.ConstCopyConstructor.Exists() ||
		m.CopyConstructor.Exists() || m.MoveConstructor.Exists()
}

// Scalar is the member set of builtin and enum types: everything exists implicitly.
var Scalar = api.SpecialMemberSet{
	DefaultConstructor:   api.Implicit,
	Destructor:           api.Implicit,
	ConstCopyConstructor: api.Implicit,
	CopyConstructor:      api.NotPresent,
	MoveConstructor:      api.Implicit,
}

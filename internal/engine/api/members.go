package api

import "fmt"

type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// ParseVisibility maps catalogue spellings; unknown values are public.
func ParseVisibility(s string) Visibility {
	switch s {
	case "protected":
		return Protected
	case "private":
		return Private
	default:
		return Public
	}
}

// MemberKind enumerates the special members a class can declare.
type MemberKind int

const (
	DefaultCtor MemberKind = iota
	Dtor
	ConstCopyCtor
	CopyCtor
	MoveCtor
	CopyAssign
	MoveAssign
	OtherCtor
)

var memberKindNames = map[MemberKind]string{
	DefaultCtor:   "default_ctor",
	Dtor:          "destructor",
	ConstCopyCtor: "const_copy_ctor",
	CopyCtor:      "copy_ctor",
	MoveCtor:      "move_ctor",
	CopyAssign:    "copy_assign",
	MoveAssign:    "move_assign",
	OtherCtor:     "ctor",
}

func (k MemberKind) String() string {
	if s, ok := memberKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("member(%d)", int(k))
}

// ParseMemberKind is the inverse of MemberKind.String.
func ParseMemberKind(s string) (MemberKind, bool) {
	for k, name := range memberKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// MemberDecl is one special member a class declares itself.
type MemberDecl struct {
	Kind       MemberKind
	Visibility Visibility
	Deleted    bool
}

// StateKind is the shape of a MemberState.
type StateKind int

const (
	StateNotPresent StateKind = iota
	StateImplicit
	StateExplicit
)

// MemberState is one judgment of a SpecialMemberSet.
type MemberState struct {
	Kind       StateKind
	Visibility Visibility
}

var (
	NotPresent = MemberState{Kind: StateNotPresent}
	Implicit   = MemberState{Kind: StateImplicit}
)

func Explicit(v Visibility) MemberState {
	return MemberState{Kind: StateExplicit, Visibility: v}
}

func (s MemberState) Exists() bool { return s.Kind != StateNotPresent }

// CallableAny is true when unconstrained code may invoke the member.
func (s MemberState) CallableAny() bool {
	return s.Kind == StateImplicit || (s.Kind == StateExplicit && s.Visibility == Public)
}

// CallableSubclass is true when a derived type may invoke the member.
func (s MemberState) CallableSubclass() bool {
	return s.Kind == StateImplicit || (s.Kind == StateExplicit && s.Visibility != Private)
}

func (s MemberState) String() string {
	switch s.Kind {
	case StateImplicit:
		return "implicit"
	case StateExplicit:
		return "explicit(" + s.Visibility.String() + ")"
	default:
		return "not_present"
	}
}

// SpecialMemberSet holds the five special-member judgments for a class.
type SpecialMemberSet struct {
	DefaultConstructor   MemberState
	Destructor           MemberState
	ConstCopyConstructor MemberState
	CopyConstructor      MemberState
	MoveConstructor      MemberState
}

// HasCopy reports whether either copy constructor form exists.
func (m SpecialMemberSet) HasCopy() bool {
	return m.ConstCopyConstructor.Exists() || m.CopyConstructor.Exists()
}

func (m SpecialMemberSet) ImplicitDefaultConstructorNeeded() bool {
	return m.DefaultConstructor.Kind == StateImplicit
}

func (m SpecialMemberSet) ImplicitCopyConstructorNeeded() bool {
	return m.ConstCopyConstructor.Kind == StateImplicit || m.CopyConstructor.Kind == StateImplicit
}

func (m SpecialMemberSet) ImplicitMoveConstructorNeeded() bool {
	return m.MoveConstructor.Kind == StateImplicit
}

func (m SpecialMemberSet) ImplicitDestructorNeeded() bool {
	return m.Destructor.Kind == StateImplicit
}

// State returns the judgment for a constructor or destructor kind.
func (m SpecialMemberSet) State(k MemberKind) MemberState {
	switch k {
	case DefaultCtor:
		return m.DefaultConstructor
	case Dtor:
		return m.Destructor
	case ConstCopyCtor:
		return m.ConstCopyConstructor
	case CopyCtor:
		return m.CopyConstructor
	case MoveCtor:
		return m.MoveConstructor
	}
	return NotPresent
}

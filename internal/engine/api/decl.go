package api

import "fmt"

// Kind tags the variant held by a Declaration.
type Kind int

const (
	KindStruct Kind = iota
	KindEnum
	KindTypedef
	KindFunction
	KindMethod
	KindSubclass
	KindSynthetic
	KindCType
	KindForward
	KindErrorMarker
)

var kindNames = [...]string{
	KindStruct:      "struct",
	KindEnum:        "enum",
	KindTypedef:     "typedef",
	KindFunction:    "function",
	KindMethod:      "method",
	KindSubclass:    "subclass",
	KindSynthetic:   "synthetic",
	KindCType:       "ctype",
	KindForward:     "forward",
	KindErrorMarker: "error",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsType reports whether declarations of this kind name a type.
func (k Kind) IsType() bool {
	switch k {
	case KindStruct, KindEnum, KindTypedef, KindSubclass, KindCType, KindForward:
		return true
	}
	return false
}

// IsCallable reports whether declarations of this kind carry a FunctionDetail.
func (k Kind) IsCallable() bool {
	return k == KindFunction || k == KindMethod || k == KindSynthetic
}

type Provenance int

const (
	FromFrontEnd Provenance = iota
	ProvenanceSynthesized
)

func (p Provenance) String() string {
	if p == ProvenanceSynthesized {
		return "synthesized"
	}
	return "front_end"
}

// Safety is the value-safety judgment for a type.
type Safety int

const (
	SafetyUnknown Safety = iota
	SafeByValue
	UnsafeByValue
)

func (s Safety) String() string {
	switch s {
	case SafeByValue:
		return "safe_by_value"
	case UnsafeByValue:
		return "unsafe_by_value"
	default:
		return "unknown"
	}
}

type Virtualness int

const (
	NonVirtual Virtualness = iota
	Virtual
	PureVirtual
)

// Field is a named member or parameter with its parsed type.
type Field struct {
	Name       string
	Type       TypeRef
	Visibility Visibility
}

type StructDetail struct {
	Fields    []Field
	Bases     []QualifiedName
	HasVtable bool
	// Declared lists special members the class spells out itself.
	Declared []MemberDecl
}

type EnumDetail struct {
	Variants []string
}

type TypedefDetail struct {
	Target TypeRef
}

type SubclassDetail struct {
	Superclass QualifiedName
}

type CTypeDetail struct {
	Spelling string
}

// PayloadKind tells the emitter how to call a synthesized function.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadConstructor
	PayloadDestructor
	PayloadCast
	PayloadAlloc
	PayloadFree
	PayloadDefaultFactory
)

var payloadNames = [...]string{
	PayloadNone:           "none",
	PayloadConstructor:    "constructor",
	PayloadDestructor:     "destructor",
	PayloadCast:           "cast",
	PayloadAlloc:          "alloc_uninitialized",
	PayloadFree:           "free_uninitialized",
	PayloadDefaultFactory: "default_factory",
}

func (p PayloadKind) String() string {
	if int(p) >= 0 && int(p) < len(payloadNames) {
		return payloadNames[p]
	}
	return fmt.Sprintf("payload(%d)", int(p))
}

// Payload carries what the emitter needs for a synthesized call.
type Payload struct {
	Kind PayloadKind
	// Member is set for constructor and destructor payloads.
	Member MemberKind
	// From and To are set for casts.
	From QualifiedName
	To   QualifiedName
}

type FunctionDetail struct {
	// Ident is the foreign identifier; several overloads share it.
	Ident  string
	Params []Field
	// Return is nil for void.
	Return     *TypeRef
	Self       QualifiedName
	Static     bool
	Const      bool
	Virtual    Virtualness
	Visibility Visibility
	// Constructor marks a front-end constructor method.
	Constructor bool
	Payload     Payload
}

// Signature renders the parameter list, used to tell overloads apart.
func (f *FunctionDetail) Signature() string {
	s := "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Type.String()
	}
	s += ")"
	if f.Const {
		s += " const"
	}
	return s
}

// References collects every type named by the parameters and return value.
func (f *FunctionDetail) References() NameSet {
	out := NewNameSet()
	for _, p := range f.Params {
		out.Union(p.Type.References())
	}
	if f.Return != nil {
		out.Union(f.Return.References())
	}
	return out
}

// Analysis accumulates per-phase facts. Each phase only fills its own fields.
type Analysis struct {
	Safety       Safety
	SafetyReason string
	Members      *SpecialMemberSet
	Abstract     bool
	BridgeName   string
}

// Declaration is one node of the API graph.
type Declaration struct {
	Name QualifiedName
	// CppName is the foreign spelling when it differs from Name.
	CppName    string
	Kind       Kind
	Provenance Provenance
	Deps       NameSet

	Struct   *StructDetail
	Enum     *EnumDetail
	Typedef  *TypedefDetail
	Function *FunctionDetail
	Subclass *SubclassDetail
	CType    *CTypeDetail
	Fault    *Fault

	Analysis Analysis
}

// ForeignName is the spelling used for allow-list and block-list matching.
func (d *Declaration) ForeignName() string {
	if d.CppName != "" {
		return d.CppName
	}
	return string(d.Name)
}

// AllowlistName is the name matched against the allow-list: members match through
// the type that owns them.
func (d *Declaration) AllowlistName() string {
	if d.Function != nil && d.Function.Self != "" {
		return string(d.Function.Self)
	}
	if d.Fault != nil && d.Fault.Self != "" {
		return string(d.Fault.Self)
	}
	return d.ForeignName()
}

// Ident is the declaration's own identifier, without namespace or overload key.
func (d *Declaration) Ident() string {
	if d.Function != nil && d.Function.Ident != "" {
		return d.Function.Ident
	}
	return d.Name.Final()
}

// Namespace returns the scope a declaration is emitted into; members use their type's namespace.
func (d *Declaration) Namespace() []string {
	if d.Function != nil && d.Function.Self != "" {
		return d.Function.Self.Namespace()
	}
	if d.Fault != nil && d.Fault.Self != "" {
		return d.Fault.Self.Namespace()
	}
	return d.Name.Namespace()
}

// SelfType returns the owning type for members, or "".
func (d *Declaration) SelfType() QualifiedName {
	if d.Function != nil {
		return d.Function.Self
	}
	if d.Fault != nil {
		return d.Fault.Self
	}
	return ""
}

// Bases returns the direct base classes of a struct or the superclass of a subclass.
func (d *Declaration) Bases() []QualifiedName {
	switch {
	case d.Struct != nil:
		return d.Struct.Bases
	case d.Subclass != nil:
		return []QualifiedName{d.Subclass.Superclass}
	}
	return nil
}

// IsClass reports whether the declaration is a class-like aggregate.
func (d *Declaration) IsClass() bool {
	return d.Kind == KindStruct || d.Kind == KindSubclass
}

func (d *Declaration) String() string {
	return fmt.Sprintf("%s %s", d.Kind, d.Name)
}

package api

import "fmt"

// FaultKind classifies why a declaration became an ErrorMarker.
type FaultKind int

const (
	FaultDuplicateName FaultKind = iota + 1
	FaultIgnoredDependent
	FaultUnknownDependentType
	FaultUnrepresentableName
	FaultBlocked
	FaultUnsupportedType
	FaultDidNotGenerateAnything
)

var faultNames = map[FaultKind]string{
	FaultDuplicateName:          "DuplicateName",
	FaultIgnoredDependent:       "IgnoredDependent",
	FaultUnknownDependentType:   "UnknownDependentType",
	FaultUnrepresentableName:    "UnrepresentableName",
	FaultBlocked:                "Blocked",
	FaultUnsupportedType:        "UnsupportedType",
	FaultDidNotGenerateAnything: "DidNotGenerateAnything",
}

func (k FaultKind) String() string {
	if s, ok := faultNames[k]; ok {
		return s
	}
	return fmt.Sprintf("fault(%d)", int(k))
}

// ParseFaultKind is the inverse of FaultKind.String.
func ParseFaultKind(s string) (FaultKind, bool) {
	for k, name := range faultNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Fault is the machine-readable reason an ErrorMarker replaced a declaration.
type Fault struct {
	Kind FaultKind
	// Dep is the dependency that caused IgnoredDependent or UnknownDependentType.
	Dep    QualifiedName
	Detail string
	// Was is the kind of the declaration that was replaced.
	Was Kind
	// Self is the owning type when the replaced declaration was a member.
	Self QualifiedName
}

func (f Fault) Message() string {
	switch f.Kind {
	case FaultDuplicateName:
		return "more than one declaration claims this name"
	case FaultIgnoredDependent:
		return fmt.Sprintf("depends on %s, which was ignored", f.Dep)
	case FaultUnknownDependentType:
		return fmt.Sprintf("depends on unknown type %s", f.Dep)
	case FaultUnrepresentableName:
		if f.Detail != "" {
			return "name cannot be represented in the bridge: " + f.Detail
		}
		return "name cannot be represented in the bridge"
	case FaultBlocked:
		return "excluded by the block-list"
	case FaultUnsupportedType:
		return "unsupported type signature: " + f.Detail
	case FaultDidNotGenerateAnything:
		return "allow-list entry matched nothing: " + f.Detail
	}
	return f.Kind.String()
}

// NewErrorMarker replaces d with a marker that keeps its name and foreign spelling.
func NewErrorMarker(d *Declaration, f Fault) *Declaration {
	f.Was = d.Kind
	if d.Kind == KindErrorMarker && d.Fault != nil {
		f.Was = d.Fault.Was
	}
	if f.Self == "" {
		f.Self = d.SelfType()
	}
	return &Declaration{
		Name:       d.Name,
		CppName:    d.CppName,
		Kind:       KindErrorMarker,
		Provenance: d.Provenance,
		Deps:       NewNameSet(),
		Fault:      &f,
	}
}

// Diagnostic is one structured report surfaced to the caller.
type Diagnostic struct {
	Name    QualifiedName
	Kind    FaultKind
	Dep     QualifiedName
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Name, d.Kind, d.Message)
}

// DiagnosticFor renders the marker d as a Diagnostic.
func DiagnosticFor(d *Declaration) (Diagnostic, bool) {
	if d.Kind != KindErrorMarker || d.Fault == nil {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Name:    d.Name,
		Kind:    d.Fault.Kind,
		Dep:     d.Fault.Dep,
		Message: d.Fault.Message(),
	}, true
}

// DuplicateNameError is returned by Graph.Insert when the name is taken.
type DuplicateNameError struct {
	Name QualifiedName
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate declaration %s", e.Name)
}

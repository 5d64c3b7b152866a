package api

import (
	"fmt"
	"log/slog"
	"strings"
)

// RawDecl is one record produced by the external front end.
type RawDecl struct {
	Kind       string      `json:"kind" toml:"kind"`
	Name       string      `json:"name" toml:"name"`
	Namespace  string      `json:"namespace,omitempty" toml:"namespace"`
	CppName    string      `json:"cpp_name,omitempty" toml:"cpp_name"`
	Fields     []RawField  `json:"fields,omitempty" toml:"fields"`
	Bases      []string    `json:"bases,omitempty" toml:"bases"`
	HasVtable  bool        `json:"has_vtable,omitempty" toml:"has_vtable"`
	Members    []RawMember `json:"members,omitempty" toml:"members"`
	Variants   []string    `json:"variants,omitempty" toml:"variants"`
	Target     string      `json:"target,omitempty" toml:"target"`
	Params     []RawField  `json:"params,omitempty" toml:"params"`
	Return     string      `json:"return,omitempty" toml:"return"`
	Self       string      `json:"self,omitempty" toml:"self"`
	Static     bool        `json:"static,omitempty" toml:"static"`
	Const      bool        `json:"const,omitempty" toml:"const"`
	Virtual    string      `json:"virtual,omitempty" toml:"virtual"`
	Visibility string      `json:"visibility,omitempty" toml:"visibility"`
	// Constructor marks a method record that is a constructor of Self.
	Constructor bool   `json:"constructor,omitempty" toml:"constructor"`
	Superclass  string `json:"superclass,omitempty" toml:"superclass"`
}

type RawField struct {
	Name       string `json:"name" toml:"name"`
	Type       string `json:"type" toml:"type"`
	Visibility string `json:"visibility,omitempty" toml:"visibility"`
}

type RawMember struct {
	Kind       string `json:"kind" toml:"kind"`
	Visibility string `json:"visibility,omitempty" toml:"visibility"`
	Deleted    bool   `json:"deleted,omitempty" toml:"deleted"`
}

// OverloadKey names the nth overload of base inside the graph. The marker
// cannot occur in a foreign identifier, so keys never collide with real names.
func OverloadKey(base QualifiedName, n int) QualifiedName {
	if n == 0 {
		return base
	}
	return QualifiedName(fmt.Sprintf("%s#%d", base, n))
}

// FromCatalogue converts raw records into a parsed graph. Records that claim the same
// name are replaced by one DuplicateName marker; a forward declaration never clashes
// with a definition. Unparseable signatures become UnsupportedType markers.
func FromCatalogue(raw []RawDecl, parser *TypeParser) *Graph[Parsed] {
	g := NewGraph[Parsed]()
	overloads := make(map[QualifiedName]map[string]QualifiedName)
	duplicated := NewNameSet()

	for i := range raw {
		d, err := convertRecord(&raw[i], parser)
		if d == nil {
			slog.Warn("skipping catalogue record", "index", i, "name", raw[i].Name, "error", err)
			continue
		}
		if d.Function != nil {
			base := d.Name
			sigs := overloads[base]
			if sigs == nil {
				sigs = make(map[string]QualifiedName)
				overloads[base] = sigs
			}
			sig := d.Function.Signature()
			if err != nil {
				sig = fmt.Sprintf("unparsed#%d", i)
			}
			if existing, ok := sigs[sig]; ok {
				d.Name = existing
			} else {
				d.Name = OverloadKey(base, len(sigs))
				sigs[sig] = d.Name
			}
			// Overloads share the foreign spelling of the first one.
			if d.Name != base && d.CppName == "" {
				d.CppName = string(base)
			}
		}
		if err != nil {
			d = NewErrorMarker(d, Fault{Kind: FaultUnsupportedType, Detail: err.Error()})
		}

		if duplicated.Has(d.Name) {
			continue
		}
		if prev, ok := g.Get(d.Name); ok {
			switch {
			case d.Kind == KindForward:
				continue
			case prev.Kind != KindForward:
				slog.Debug("duplicate catalogue record", "name", d.Name)
				g.Replace(NewErrorMarker(prev, Fault{Kind: FaultDuplicateName}))
				duplicated.Add(d.Name)
				continue
			}
		}
		if err := g.Insert(d); err != nil {
			slog.Warn("catalogue insert failed", "name", d.Name, "error", err)
		}
	}
	return g
}

func convertRecord(r *RawDecl, parser *TypeParser) (*Declaration, error) {
	ident := strings.TrimSpace(r.Name)
	if ident == "" {
		return nil, fmt.Errorf("record has no name")
	}
	ns := ParseNamespace(r.Namespace)
	d := &Declaration{
		Name:       NewQualifiedName(ns, ident),
		CppName:    r.CppName,
		Provenance: FromFrontEnd,
		Deps:       NewNameSet(),
	}

	var firstErr error
	parse := func(sig string) TypeRef {
		t, err := parser.Parse(sig)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return t
	}
	fields := func(in []RawField) []Field {
		out := make([]Field, 0, len(in))
		for _, f := range in {
			out = append(out, Field{Name: f.Name, Type: parse(f.Type), Visibility: ParseVisibility(f.Visibility)})
		}
		return out
	}

	switch strings.ToLower(r.Kind) {
	case "struct", "class":
		d.Kind = KindStruct
		sd := &StructDetail{Fields: fields(r.Fields), HasVtable: r.HasVtable}
		for _, b := range r.Bases {
			sd.Bases = append(sd.Bases, QualifiedName(strings.TrimPrefix(b, Separator)))
		}
		for _, m := range r.Members {
			k, ok := ParseMemberKind(m.Kind)
			if !ok {
				return nil, fmt.Errorf("unknown special member %q on %s", m.Kind, d.Name)
			}
			sd.Declared = append(sd.Declared, MemberDecl{Kind: k, Visibility: ParseVisibility(m.Visibility), Deleted: m.Deleted})
		}
		d.Struct = sd
	case "enum":
		d.Kind = KindEnum
		d.Enum = &EnumDetail{Variants: r.Variants}
	case "typedef", "using":
		d.Kind = KindTypedef
		d.Typedef = &TypedefDetail{Target: parse(r.Target)}
	case "forward":
		d.Kind = KindForward
	case "subclass":
		d.Kind = KindSubclass
		d.Subclass = &SubclassDetail{Superclass: QualifiedName(strings.TrimPrefix(r.Superclass, Separator))}
	case "function", "method":
		fd := &FunctionDetail{
			Ident:       ident,
			Params:      fields(r.Params),
			Static:      r.Static,
			Const:       r.Const,
			Visibility:  ParseVisibility(r.Visibility),
			Constructor: r.Constructor,
		}
		switch r.Virtual {
		case "virtual":
			fd.Virtual = Virtual
		case "pure":
			fd.Virtual = PureVirtual
		}
		if ret := strings.TrimSpace(r.Return); ret != "" {
			t := parse(ret)
			if !t.IsVoid() {
				fd.Return = &t
			}
		}
		d.Kind = KindFunction
		if self := strings.TrimPrefix(strings.TrimSpace(r.Self), Separator); self != "" {
			d.Kind = KindMethod
			fd.Self = QualifiedName(self)
			d.Name = fd.Self.Child(ident)
		}
		d.Function = fd
	default:
		return nil, fmt.Errorf("unknown record kind %q", r.Kind)
	}
	return d, firstErr
}

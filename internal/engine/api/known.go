package api

// KnownType describes an intrinsic type the front end never declares:
// builtins, fixed-width integers and the standard library handles the bridge understands.
type KnownType struct {
	Name QualifiedName
	// ValueSafe types may be copied bytewise.
	ValueSafe bool
	// CType marks the variable-length C integer types that need an explicit bridge alias.
	CType bool
	// Template types take arguments; a typedef naming one is opaque.
	Template bool
	Copyable bool
	Movable  bool
	// DefaultConstructible and Destructible feed the special-member engine.
	DefaultConstructible bool
	Destructible         bool
}

// Members derives the special-member set the type contributes as a base or field.
func (k KnownType) Members() SpecialMemberSet {
	exists := func(ok bool) MemberState {
		if ok {
			return Implicit
		}
		return NotPresent
	}
	return SpecialMemberSet{
		DefaultConstructor:   exists(k.DefaultConstructible),
		Destructor:           exists(k.Destructible),
		ConstCopyConstructor: exists(k.Copyable),
		CopyConstructor:      NotPresent,
		MoveConstructor:      exists(k.Movable),
	}
}

// KnownTypes is the intrinsic seed table.
type KnownTypes struct {
	byName map[QualifiedName]KnownType
}

func scalar(name string) KnownType {
	return KnownType{
		Name:                 QualifiedName(name),
		ValueSafe:            true,
		Copyable:             true,
		Movable:              true,
		DefaultConstructible: true,
		Destructible:         true,
	}
}

// DefaultKnownTypes returns the builtin table.
func DefaultKnownTypes() *KnownTypes {
	k := &KnownTypes{byName: make(map[QualifiedName]KnownType)}
	for _, n := range []string{
		"bool", "char", "unsigned char", "float", "double", "void",
		"int8_t", "int16_t", "int32_t", "int64_t",
		"uint8_t", "uint16_t", "uint32_t", "uint64_t",
		"std::int8_t", "std::int16_t", "std::int32_t", "std::int64_t",
		"std::uint8_t", "std::uint16_t", "std::uint32_t", "std::uint64_t",
		"size_t", "std::size_t", "char16_t", "char32_t", "wchar_t",
	} {
		k.Add(scalar(n))
	}
	for _, n := range []string{
		"short", "unsigned short", "int", "unsigned int",
		"long", "unsigned long", "long long", "unsigned long long",
	} {
		t := scalar(n)
		t.CType = true
		k.Add(t)
	}
	k.Add(KnownType{
		Name:                 "std::string",
		Copyable:             true,
		Movable:              true,
		DefaultConstructible: true,
		Destructible:         true,
	})
	for _, n := range []string{"std::unique_ptr", "std::weak_ptr", "std::shared_ptr"} {
		k.Add(KnownType{
			Name:                 QualifiedName(n),
			ValueSafe:            true,
			Template:             true,
			Copyable:             n != "std::unique_ptr",
			Movable:              true,
			DefaultConstructible: true,
			Destructible:         true,
		})
	}
	k.Add(KnownType{
		Name:                 "std::vector",
		Template:             true,
		Copyable:             true,
		Movable:              true,
		DefaultConstructible: true,
		Destructible:         true,
	})
	return k
}

// Add registers or replaces an entry.
func (k *KnownTypes) Add(t KnownType) {
	if k.byName == nil {
		k.byName = make(map[QualifiedName]KnownType)
	}
	k.byName[t.Name] = t
}

func (k *KnownTypes) Lookup(name QualifiedName) (KnownType, bool) {
	if k == nil {
		return KnownType{}, false
	}
	t, ok := k.byName[name]
	return t, ok
}

func (k *KnownTypes) Has(name QualifiedName) bool {
	_, ok := k.Lookup(name)
	return ok
}

// IsCType reports whether name is a variable-length C integer type.
func (k *KnownTypes) IsCType(name QualifiedName) bool {
	t, ok := k.Lookup(name)
	return ok && t.CType
}

// Names returns every registered name.
func (k *KnownTypes) Names() NameSet {
	out := NewNameSet()
	if k == nil {
		return out
	}
	for n := range k.byName {
		out.Add(n)
	}
	return out
}

package api

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TypeForm distinguishes a named type from the indirections wrapped around it.
type TypeForm int

const (
	FormNamed TypeForm = iota
	FormPointer
	FormLValueRef
	FormRValueRef
	FormArray
	FormLiteral
)

// TypeRef is a parsed type signature. Named types carry template arguments;
// indirections and arrays wrap an element type.
type TypeRef struct {
	Form  TypeForm
	Name  QualifiedName
	Args  []TypeRef
	Elem  *TypeRef
	Const bool
	Len   int
	Value string
}

// NamedType returns a plain named TypeRef.
func NamedType(name QualifiedName) TypeRef {
	return TypeRef{Form: FormNamed, Name: name}
}

// IsComplex reports whether the type is anything other than a plain named type.
func (t TypeRef) IsComplex() bool {
	return t.Form != FormNamed || len(t.Args) > 0
}

// IsVoid reports whether t is the unqualified void type.
func (t TypeRef) IsVoid() bool {
	return t.Form == FormNamed && t.Name == "void"
}

// References collects every named type mentioned anywhere in t.
func (t TypeRef) References() NameSet {
	out := NewNameSet()
	t.collect(out)
	return out
}

func (t TypeRef) collect(out NameSet) {
	switch t.Form {
	case FormNamed:
		if t.Name != "void" {
			out.Add(t.Name)
		}
		for _, a := range t.Args {
			a.collect(out)
		}
	case FormLiteral:
	default:
		if t.Elem != nil {
			t.Elem.collect(out)
		}
	}
}

// Contained returns the named type stored inline when a value of t is a field:
// the type itself, or the element of an array. Pointers and references hold nothing inline.
func (t TypeRef) Contained() QualifiedName {
	switch t.Form {
	case FormNamed:
		return t.Name
	case FormArray:
		if t.Elem != nil {
			return t.Elem.Contained()
		}
	}
	return ""
}

func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Form {
	case FormLiteral:
		b.WriteString(t.Value)
	case FormNamed:
		if t.Const {
			b.WriteString("const ")
		}
		b.WriteString(string(t.Name))
		if len(t.Args) > 0 {
			b.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				a.write(b)
			}
			b.WriteByte('>')
		}
	case FormArray:
		t.Elem.write(b)
		b.WriteString("[" + strconv.Itoa(t.Len) + "]")
	default:
		t.Elem.write(b)
		switch t.Form {
		case FormPointer:
			b.WriteByte('*')
			if t.Const {
				b.WriteString(" const")
			}
		case FormLValueRef:
			b.WriteByte('&')
		case FormRValueRef:
			b.WriteString("&&")
		}
	}
}

// SignatureError reports a type signature the parser cannot represent.
type SignatureError struct {
	Signature string
	Pos       int
	Reason    string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("cannot parse type %q at offset %d: %s", e.Signature, e.Pos, e.Reason)
}

// TypeParser parses raw signatures, memoising results by exact input text.
type TypeParser struct {
	cache *lru.Cache[string, TypeRef]
}

// NewTypeParser creates a parser whose cache holds up to size signatures.
// A non-positive size disables caching.
func NewTypeParser(size int) *TypeParser {
	p := &TypeParser{}
	if size > 0 {
		c, err := lru.New[string, TypeRef](size)
		if err == nil {
			p.cache = c
		}
	}
	return p
}

// Parse turns sig into a TypeRef.
func (p *TypeParser) Parse(sig string) (TypeRef, error) {
	sig = strings.TrimSpace(sig)
	if p != nil && p.cache != nil {
		if t, ok := p.cache.Get(sig); ok {
			return t, nil
		}
	}
	t, err := ParseType(sig)
	if err != nil {
		return TypeRef{}, err
	}
	if p != nil && p.cache != nil {
		p.cache.Add(sig, t)
	}
	return t, nil
}

// Len reports how many signatures are cached.
func (p *TypeParser) Len() int {
	if p == nil || p.cache == nil {
		return 0
	}
	return p.cache.Len()
}

// ParseType parses a signature without caching.
func ParseType(sig string) (TypeRef, error) {
	s := &sigScanner{src: sig, toks: tokenize(sig)}
	if len(s.toks) == 0 {
		return TypeRef{}, &SignatureError{Signature: sig, Reason: "empty signature"}
	}
	t, err := s.parseType()
	if err != nil {
		return TypeRef{}, err
	}
	if !s.done() {
		return TypeRef{}, s.fail("unexpected " + strconv.Quote(s.peek().text))
	}
	return t, nil
}

// MustParseType panics on error; intended for tables and tests.
func MustParseType(sig string) TypeRef {
	t, err := ParseType(sig)
	if err != nil {
		panic(err)
	}
	return t
}

type sigToken struct {
	text string
	pos  int
}

func tokenize(src string) []sigToken {
	var toks []sigToken
	i := 0
	for i < len(src) {
		r := rune(src[i])
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			start := i
			for i < len(src) && (src[i] == '_' || unicode.IsLetter(rune(src[i])) || unicode.IsDigit(rune(src[i]))) {
				i++
			}
			toks = append(toks, sigToken{text: src[start:i], pos: start})
		case strings.HasPrefix(src[i:], "::"), strings.HasPrefix(src[i:], "&&"):
			toks = append(toks, sigToken{text: src[i : i+2], pos: i})
			i += 2
		default:
			toks = append(toks, sigToken{text: string(src[i]), pos: i})
			i++
		}
	}
	return toks
}

type sigScanner struct {
	src  string
	toks []sigToken
	pos  int
}

func (s *sigScanner) done() bool { return s.pos >= len(s.toks) }

func (s *sigScanner) peek() sigToken {
	if s.done() {
		return sigToken{pos: len(s.src)}
	}
	return s.toks[s.pos]
}

func (s *sigScanner) next() sigToken {
	t := s.peek()
	s.pos++
	return t
}

func (s *sigScanner) accept(text string) bool {
	if !s.done() && s.toks[s.pos].text == text {
		s.pos++
		return true
	}
	return false
}

func (s *sigScanner) fail(reason string) error {
	return &SignatureError{Signature: s.src, Pos: s.peek().pos, Reason: reason}
}

var builtinWords = map[string]bool{
	"void": true, "bool": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true, "wchar_t": true,
	"char16_t": true, "char32_t": true,
}

func (s *sigScanner) acceptCV() bool {
	constSeen := false
	for {
		switch {
		case s.accept("const"):
			constSeen = true
		case s.accept("volatile"):
		default:
			return constSeen
		}
	}
}

func (s *sigScanner) parseType() (TypeRef, error) {
	isConst := s.acceptCV()
	s.accept("struct")
	s.accept("class")
	s.accept("enum")
	base, err := s.parseBase()
	if err != nil {
		return TypeRef{}, err
	}
	if s.acceptCV() {
		isConst = true
	}
	base.Const = isConst
	t := base
	for !s.done() {
		switch tok := s.peek().text; tok {
		case "*":
			s.next()
			t = TypeRef{Form: FormPointer, Elem: ptr(t), Const: s.acceptCV()}
		case "&":
			s.next()
			t = TypeRef{Form: FormLValueRef, Elem: ptr(t)}
		case "&&":
			s.next()
			t = TypeRef{Form: FormRValueRef, Elem: ptr(t)}
		case "[":
			s.next()
			n := 0
			if !s.accept("]") {
				lit := s.next()
				v, err := strconv.Atoi(lit.text)
				if err != nil {
					return TypeRef{}, s.fail("array bound must be a literal")
				}
				n = v
				if !s.accept("]") {
					return TypeRef{}, s.fail("expected ]")
				}
			}
			t = TypeRef{Form: FormArray, Elem: ptr(t), Len: n}
		case "(":
			return TypeRef{}, s.fail("function types are not supported")
		default:
			return t, nil
		}
	}
	return t, nil
}

func (s *sigScanner) parseBase() (TypeRef, error) {
	if s.done() {
		return TypeRef{}, s.fail("expected type name")
	}
	if builtinWords[s.peek().text] {
		var words []string
		for !s.done() && builtinWords[s.peek().text] {
			words = append(words, s.next().text)
		}
		return NamedType(QualifiedName(canonicalBuiltin(words))), nil
	}
	s.accept("::")
	var segs []string
	for {
		tok := s.next()
		if tok.text == "" || !isIdent(tok.text) {
			return TypeRef{}, &SignatureError{Signature: s.src, Pos: tok.pos, Reason: "expected identifier"}
		}
		segs = append(segs, tok.text)
		if !s.accept("::") {
			break
		}
	}
	t := NamedType(QualifiedName(strings.Join(segs, Separator)))
	if s.accept("<") {
		if s.accept(">") {
			return t, nil
		}
		for {
			var arg TypeRef
			if lit := s.peek().text; lit != "" && unicode.IsDigit(rune(lit[0])) {
				s.next()
				arg = TypeRef{Form: FormLiteral, Value: lit}
			} else {
				a, err := s.parseType()
				if err != nil {
					return TypeRef{}, err
				}
				arg = a
			}
			t.Args = append(t.Args, arg)
			if s.accept(">") {
				break
			}
			if !s.accept(",") {
				return TypeRef{}, s.fail("expected , or > in template arguments")
			}
		}
	}
	return t, nil
}

func canonicalBuiltin(words []string) string {
	var signedness string
	var rest []string
	for _, w := range words {
		switch w {
		case "signed":
			signedness = ""
		case "unsigned":
			signedness = "unsigned"
		default:
			rest = append(rest, w)
		}
	}
	// "long int" and "short int" name the same types as "long" and "short".
	if len(rest) > 1 && rest[len(rest)-1] == "int" {
		rest = rest[:len(rest)-1]
	}
	if len(rest) == 0 {
		rest = []string{"int"}
	}
	name := strings.Join(rest, " ")
	if signedness != "" {
		name = signedness + " " + name
	}
	return name
}

func isIdent(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return s != ""
}

func ptr(t TypeRef) *TypeRef { return &t }

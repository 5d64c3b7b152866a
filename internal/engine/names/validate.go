package names

import (
	"fmt"
	"strings"
)

// reservedWords cannot be used as bridge identifiers.
var reservedWords = []string{
	"as", "async", "await", "box", "break", "const", "continue", "crate", "dyn", "else",
	"enum", "extern", "false", "fn", "for", "if", "impl", "in", "let", "loop", "match",
	"mod", "move", "mut", "pub", "ref", "return", "self", "Self", "static", "struct",
	"super", "trait", "true", "type", "unsafe", "use", "where", "while", "yield",
}

// Validator checks identifiers against the bridge's naming rules.
type Validator struct {
	reserved map[string]bool
}

// NewValidator builds a validator from the built-in reserved words plus extra.
func NewValidator(extra []string) *Validator {
	v := &Validator{reserved: make(map[string]bool, len(reservedWords)+len(extra))}
	for _, w := range reservedWords {
		v.reserved[w] = true
	}
	for _, w := range extra {
		if w = strings.TrimSpace(w); w != "" {
			v.reserved[w] = true
		}
	}
	return v
}

// Validate returns an error describing why ident cannot be spelled in the bridge.
func (v *Validator) Validate(ident string) error {
	if ident == "" {
		return fmt.Errorf("identifier is empty")
	}
	for i, r := range ident {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return fmt.Errorf("%q starts with a digit", ident)
			}
		default:
			return fmt.Errorf("%q contains %q", ident, r)
		}
	}
	if strings.Contains(ident, "__") {
		return fmt.Errorf("%q contains a double underscore", ident)
	}
	if v.reserved[ident] {
		return fmt.Errorf("%q is a reserved word", ident)
	}
	return nil
}

// BridgeIdent returns the spelling a callable takes in the bridge. A reserved word gets a
// trailing underscore; any other invalid identifier is an error.
func (v *Validator) BridgeIdent(ident string) (string, error) {
	if v.reserved[ident] {
		ident += "_"
	}
	if err := v.Validate(ident); err != nil {
		return "", err
	}
	return ident, nil
}

// ValidatePath checks every segment of a namespace path.
func (v *Validator) ValidatePath(segments []string) error {
	for _, seg := range segments {
		if err := v.Validate(seg); err != nil {
			return fmt.Errorf("namespace %s", err)
		}
	}
	return nil
}

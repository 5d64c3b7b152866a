package names

import "testing"

func TestValidate(t *testing.T) {
	v := NewValidator([]string{"Banned"})
	tests := []struct {
		ident string
		ok    bool
	}{
		{"Point", true},
		{"my_type2", true},
		{"_private", true},
		{"", false},
		{"2d", false},
		{"operator+", false},
		{"__reserved", false},
		{"a__b", false},
		{"type", false},
		{"Banned", false},
		{"Ünicode", false},
	}
	for _, tt := range tests {
		err := v.Validate(tt.ident)
		if (err == nil) != tt.ok {
			t.Errorf("Validate(%q) = %v, want ok=%v", tt.ident, err, tt.ok)
		}
	}
}

func TestBridgeIdent(t *testing.T) {
	v := NewValidator(nil)
	tests := []struct {
		ident string
		want  string
		ok    bool
	}{
		{"area", "area", true},
		{"type", "type_", true},
		{"move", "move_", true},
		{"operator+", "", false},
		{"a__b", "", false},
	}
	for _, tt := range tests {
		got, err := v.BridgeIdent(tt.ident)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("BridgeIdent(%q) = %q, %v; want %q, ok=%v", tt.ident, got, err, tt.want, tt.ok)
		}
	}
	if err := v.ValidatePath([]string{"geo", "type"}); err == nil {
		t.Error("expected reserved namespace segment to be rejected")
	}
}

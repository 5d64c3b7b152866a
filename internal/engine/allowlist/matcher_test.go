package allowlist

import "testing"

func TestMatcher(t *testing.T) {
	m, invalid := New([]string{"geom::Point", "io::*", "net::**", "  ", "[bad"})
	if len(invalid) != 1 || invalid[0] != "[bad" {
		t.Fatalf("expected one invalid pattern, got %v", invalid)
	}

	tests := []struct {
		name string
		want bool
	}{
		{"geom::Point", true},
		{"::geom::Point", true},
		{"geom::Pointer", false},
		{"io::File", true},
		{"io::fs::File", false},
		{"net::http::Client", true},
		{"other", false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.name); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if entry, ok := m.MatchEntry("io::Stream"); !ok || entry != "io::*" {
		t.Errorf("expected io::* to match, got %q %v", entry, ok)
	}
}

func TestMatcherAll(t *testing.T) {
	m := MustNew("all")
	if !m.MatchesAll() || !m.Match("anything::at_all") {
		t.Fatal("expected all to match everything")
	}
	if len(m.Entries()) != 0 {
		t.Errorf("all should not be listed as an entry")
	}

	var nilMatcher *Matcher
	if nilMatcher.Match("x") || !nilMatcher.Empty() {
		t.Error("nil matcher must match nothing")
	}
}

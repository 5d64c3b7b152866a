package allowlist

import (
	"strings"

	"github.com/gobwas/glob"
)

// All is the allow-list entry that selects every declaration.
const All = "all"

// Matcher tests foreign names against exact entries and glob patterns.
// In patterns "*" stays within one namespace segment and "**" crosses segments.
type Matcher struct {
	all      bool
	patterns []compiledPattern
}

type compiledPattern struct {
	raw        string
	isWildcard bool
	glob       glob.Glob
}

// New compiles entries. Entries that fail to compile are returned as invalid.
func New(entries []string) (*Matcher, []string) {
	m := &Matcher{}
	var invalid []string
	for _, e := range entries {
		norm := normalize(e)
		if norm == "" {
			continue
		}
		if norm == All {
			m.all = true
			continue
		}
		cp := compiledPattern{raw: norm, isWildcard: strings.ContainsAny(norm, "*?[]{}")}
		if cp.isWildcard {
			g, err := glob.Compile(norm, ':')
			if err != nil {
				invalid = append(invalid, e)
				continue
			}
			cp.glob = g
		}
		m.patterns = append(m.patterns, cp)
	}
	return m, invalid
}

// MustNew panics on invalid entries; intended for tests.
func MustNew(entries ...string) *Matcher {
	m, invalid := New(entries)
	if len(invalid) > 0 {
		panic("allowlist: invalid patterns " + strings.Join(invalid, ", "))
	}
	return m
}

func normalize(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "::")
}

// MatchesAll reports whether the "all" entry was given.
func (m *Matcher) MatchesAll() bool { return m != nil && m.all }

// Empty reports whether nothing can match.
func (m *Matcher) Empty() bool { return m == nil || (!m.all && len(m.patterns) == 0) }

// Match reports whether name is selected.
func (m *Matcher) Match(name string) bool {
	if m == nil {
		return false
	}
	if m.all {
		return true
	}
	_, ok := m.MatchEntry(name)
	return ok
}

// MatchEntry returns the first entry that selects name.
func (m *Matcher) MatchEntry(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	name = normalize(name)
	for _, p := range m.patterns {
		if p.isWildcard {
			if p.glob.Match(name) {
				return p.raw, true
			}
			continue
		}
		if p.raw == name {
			return p.raw, true
		}
	}
	return "", false
}

// Entries returns the normalized entries in input order, excluding "all".
func (m *Matcher) Entries() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.patterns))
	for _, p := range m.patterns {
		out = append(out, p.raw)
	}
	return out
}

package helpers

import (
	"strings"

	"github.com/gobwas/glob"
)

func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}

// PatternsOverlap reports whether two name patterns can match a common qualified name.
// It is conservative: literal prefixes that agree count as an overlap.
func PatternsOverlap(a, b string) bool {
	a = strings.TrimPrefix(a, "::")
	b = strings.TrimPrefix(b, "::")
	if a == b {
		return true
	}
	if !HasWildcard(a) && !HasWildcard(b) {
		return false
	}

	aPrefix := wildcardPrefix(a)
	bPrefix := wildcardPrefix(b)
	if HasWildcard(a) && HasWildcard(b) && (strings.HasPrefix(aPrefix, bPrefix) || strings.HasPrefix(bPrefix, aPrefix)) {
		return true
	}
	return matchesSample(b, wildcardSample(a)) || matchesSample(a, wildcardSample(b))
}

func matchesSample(pattern, sample string) bool {
	if sample == "" {
		return false
	}
	g, err := glob.Compile(pattern, ':')
	if err != nil {
		return false
	}
	return g.Match(sample)
}

func wildcardPrefix(pattern string) string {
	idx := strings.IndexAny(pattern, "*?[]{}")
	if idx == -1 {
		return pattern
	}
	return pattern[:idx]
}

func wildcardSample(pattern string) string {
	var sample strings.Builder
	inSet := false
	for _, ch := range pattern {
		switch {
		case ch == '[':
			inSet = true
			sample.WriteRune('x')
		case ch == ']':
			inSet = false
		case inSet:
			continue
		case ch == '*' || ch == '?' || ch == '{' || ch == '}' || ch == ',':
			sample.WriteRune('x')
		default:
			sample.WriteRune(ch)
		}
	}
	return sample.String()
}

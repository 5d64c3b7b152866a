package history

import (
	"time"

	"cxxbind/internal/engine/api"
)

const SchemaVersion = 1

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID            string
	SchemaVersion int
	StartedAt     time.Time
	Duration      time.Duration
	Catalogue     string
	Outcome       string
	Error         string
	Records       int
	Kept          int
	Removed       int
	Synthesized   int
	Markers       int
}

// Delta compares the diagnostics of two runs by declaration and fault kind.
type Delta struct {
	Introduced []api.Diagnostic
	Resolved   []api.Diagnostic
}

func (d Delta) Empty() bool {
	return len(d.Introduced) == 0 && len(d.Resolved) == 0
}

func diagnosticKey(d api.Diagnostic) string {
	return string(d.Name) + "\x00" + d.Kind.String()
}

// Compare reports diagnostics present in cur but not prev, and the reverse.
func Compare(prev, cur []api.Diagnostic) Delta {
	before := make(map[string]bool, len(prev))
	for _, d := range prev {
		before[diagnosticKey(d)] = true
	}
	after := make(map[string]bool, len(cur))
	for _, d := range cur {
		after[diagnosticKey(d)] = true
	}

	var delta Delta
	for _, d := range cur {
		if !before[diagnosticKey(d)] {
			delta.Introduced = append(delta.Introduced, d)
		}
	}
	for _, d := range prev {
		if !after[diagnosticKey(d)] {
			delta.Resolved = append(delta.Resolved, d)
		}
	}
	return delta
}

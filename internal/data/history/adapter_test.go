package history

import (
	"context"
	"testing"
	"time"

	"cxxbind/internal/engine/api"
)

func TestAdapter_RecordReportsDelta(t *testing.T) {
	adapter := NewAdapter(openTestStore(t))
	ctx := context.Background()
	base := time.Now().UTC()

	first, err := adapter.Record(ctx, Run{StartedAt: base}, []api.Diagnostic{{Name: "A", Kind: api.FaultBlocked}})
	if err != nil {
		t.Fatalf("record first run: %v", err)
	}
	if len(first.Introduced) != 1 || len(first.Resolved) != 0 {
		t.Fatalf("first run should introduce its diagnostics, got %+v", first)
	}

	second, err := adapter.Record(ctx, Run{StartedAt: base.Add(time.Second)}, nil)
	if err != nil {
		t.Fatalf("record second run: %v", err)
	}
	if len(second.Resolved) != 1 || second.Resolved[0].Name != "A" {
		t.Fatalf("expected A to be resolved, got %+v", second)
	}

	runs, err := adapter.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
}

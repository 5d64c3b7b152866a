package history

import (
	"context"

	"cxxbind/internal/engine/api"
)

// Adapter bridges Store to the core HistoryStore port.
type Adapter struct {
	store *Store
}

func NewAdapter(store *Store) *Adapter {
	return &Adapter{store: store}
}

// Record saves run and returns how its diagnostics differ from the previous run.
func (a *Adapter) Record(ctx context.Context, run Run, diagnostics []api.Diagnostic) (Delta, error) {
	var prev []api.Diagnostic
	last, err := a.store.LoadRuns(ctx, 1)
	if err != nil {
		return Delta{}, err
	}
	if len(last) == 1 {
		prev, err = a.store.LoadDiagnostics(ctx, last[0].ID)
		if err != nil {
			return Delta{}, err
		}
	}
	if _, err := a.store.SaveRun(ctx, run, diagnostics); err != nil {
		return Delta{}, err
	}
	return Compare(prev, diagnostics), nil
}

func (a *Adapter) Recent(ctx context.Context, limit int) ([]Run, error) {
	return a.store.LoadRuns(ctx, limit)
}

func (a *Adapter) Prune(ctx context.Context, keep int) (int, error) {
	return a.store.Prune(ctx, keep)
}

func (a *Adapter) Close() error {
	return a.store.Close()
}

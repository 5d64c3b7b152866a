package ports

import (
	"context"
	"io"

	"cxxbind/internal/data/history"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/namespace"
)

// CatalogueSource abstracts where front-end declaration records come from.
type CatalogueSource interface {
	Load(ctx context.Context) ([]api.RawDecl, error)
}

// HistoryStore abstracts run persistence for watch-mode comparisons.
type HistoryStore interface {
	Record(ctx context.Context, run history.Run, diagnostics []api.Diagnostic) (history.Delta, error)
	Recent(ctx context.Context, limit int) ([]history.Run, error)
	Prune(ctx context.Context, keep int) (int, error)
	Close() error
}

// RenderInput is everything a renderer may draw from one run.
type RenderInput struct {
	Graph *api.Graph[api.Named]
	// Tree groups Graph by namespace; renderers build it when nil.
	Tree        *namespace.Tree[*api.Declaration]
	Diagnostics []api.Diagnostic
}

// Renderer writes one output format.
type Renderer interface {
	Name() string
	Render(w io.Writer, in RenderInput) error
}

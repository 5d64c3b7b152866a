package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"cxxbind/internal/core/config"
	coreerrors "cxxbind/internal/core/errors"
	"cxxbind/internal/core/ports"
	"cxxbind/internal/data/catalogue"
	"cxxbind/internal/data/history"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/output"
	"cxxbind/internal/shared/util"
)

// Update is published after every run, successful or not.
type Update struct {
	Result  *Result
	Err     error
	Delta   history.Delta
	Changed []string
	At      time.Time
}

// Target pairs a renderer with the file it writes.
type Target struct {
	Path     string
	Renderer ports.Renderer
}

// Dependencies overrides the collaborators New would build from the config.
type Dependencies struct {
	Source  ports.CatalogueSource
	History ports.HistoryStore
	Targets []Target
}

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths
	// ConfigPath is the file Config was loaded from; Watch reloads it on change.
	ConfigPath string
	// CatalogueOverride replaces the catalogue of every reloaded config when set.
	CatalogueOverride string
	pipeline *Pipeline
	source   ports.CatalogueSource
	history  ports.HistoryStore
	targets  []Target

	runMu sync.Mutex

	updateMu sync.RWMutex
	onUpdate func(Update)
	last     Update
}

// New builds an App whose catalogue, history store and renderers come from cfg.
func New(cfg *config.Config) (*App, error) {
	paths, err := config.ResolvePaths(cfg, "")
	if err != nil {
		return nil, err
	}
	deps := Dependencies{
		Source:  catalogue.File{Path: paths.Catalogue},
		Targets: targetsFor(cfg, paths),
	}
	if paths.DBPath != "" {
		store, err := history.Open(paths.DBPath, cfg.DB.BusyTimeout)
		if err != nil {
			return nil, coreerrors.AddContext(err, coreerrors.CtxPath, paths.DBPath)
		}
		deps.History = history.NewAdapter(store)
	}
	a, err := NewWithDependencies(cfg, deps)
	if err != nil {
		if deps.History != nil {
			deps.History.Close()
		}
		return nil, err
	}
	a.Paths = paths
	return a, nil
}

// NewWithDependencies builds an App around injected collaborators. Source is required.
func NewWithDependencies(cfg *config.Config, deps Dependencies) (*App, error) {
	if cfg == nil {
		return nil, coreerrors.New(coreerrors.CodeValidationError, "config is required")
	}
	if deps.Source == nil {
		return nil, coreerrors.New(coreerrors.CodeValidationError, "catalogue source is required")
	}
	p, err := pipelineFor(cfg)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:   cfg,
		pipeline: p,
		source:   deps.Source,
		history:  deps.History,
		targets:  deps.Targets,
	}, nil
}

// ReloadConfig re-reads ConfigPath and swaps in a pipeline and renderers built from it.
// The catalogue source and history store are kept.
func (a *App) ReloadConfig() error {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	config.ApplyEnvOverrides(cfg)
	if a.CatalogueOverride != "" {
		cfg.Catalogue = a.CatalogueOverride
	}
	paths, err := config.ResolvePaths(cfg, "")
	if err != nil {
		return err
	}
	p, err := pipelineFor(cfg)
	if err != nil {
		return err
	}

	a.runMu.Lock()
	defer a.runMu.Unlock()
	a.Config = cfg
	a.pipeline = p
	if _, ok := a.source.(catalogue.File); ok && paths.Catalogue != a.Paths.Catalogue {
		a.source = catalogue.File{Path: paths.Catalogue}
	}
	a.targets = targetsFor(cfg, paths)
	a.Paths = paths
	slog.Info("config reloaded", "path", a.ConfigPath)
	return nil
}

func pipelineFor(cfg *config.Config) (*Pipeline, error) {
	return NewPipeline(Options{
		Known:              KnownTypes(cfg.Intrinsics),
		Allowlist:          cfg.AllowlistEntries(),
		Blocklist:          cfg.Generate.Blocklist,
		PodRequests:        cfg.Generate.Pod,
		ReservedWords:      cfg.Naming.Reserved,
		SignatureCacheSize: cfg.Performance.SignatureCacheSize,
	})
}

func targetsFor(cfg *config.Config, paths config.ResolvedPaths) []Target {
	var out []Target
	if paths.DOT != "" {
		out = append(out, Target{Path: paths.DOT, Renderer: output.NewDOTGenerator()})
	}
	if paths.TSV != "" {
		out = append(out, Target{Path: paths.TSV, Renderer: output.NewTSVGenerator()})
	}
	if paths.Mermaid != "" {
		out = append(out, Target{Path: paths.Mermaid, Renderer: output.NewMermaidGenerator()})
	}
	if paths.Markdown != "" {
		out = append(out, Target{Path: paths.Markdown, Renderer: output.NewMarkdownGenerator(cfg.Output.Diagram)})
	}
	return out
}

// KnownTypes extends the builtin intrinsic table with configured entries.
// Unset capability flags default to true.
func KnownTypes(intrinsics []config.Intrinsic) *api.KnownTypes {
	known := api.DefaultKnownTypes()
	orTrue := func(v *bool) bool { return v == nil || *v }
	for _, in := range intrinsics {
		known.Add(api.KnownType{
			Name:                 api.QualifiedName(in.Name),
			ValueSafe:            in.ValueSafe,
			CType:                in.CType,
			Template:             in.Template,
			Copyable:             orTrue(in.Copyable),
			Movable:              orTrue(in.Movable),
			DefaultConstructible: orTrue(in.DefaultConstructible),
			Destructible:         true,
		})
	}
	return known
}

func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

// LastUpdate returns the most recent published update.
func (a *App) LastUpdate() Update {
	a.updateMu.RLock()
	defer a.updateMu.RUnlock()
	return a.last
}

func (a *App) emitUpdate(update Update) {
	a.updateMu.Lock()
	a.last = update
	handler := a.onUpdate
	a.updateMu.Unlock()
	if handler != nil {
		handler(update)
	}
}

// RunOnce loads the catalogue, runs the pipeline, writes every configured artifact and
// records the run in history. Runs are serialized.
func (a *App) RunOnce(ctx context.Context) (*Result, error) {
	return a.run(ctx, nil)
}

func (a *App) run(ctx context.Context, changed []string) (*Result, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	started := time.Now()
	res, delta, err := a.execute(ctx, started)
	a.emitUpdate(Update{Result: res, Err: err, Delta: delta, Changed: changed, At: started})
	return res, err
}

func (a *App) execute(ctx context.Context, started time.Time) (*Result, history.Delta, error) {
	raw, err := a.source.Load(ctx)
	if err != nil {
		return nil, history.Delta{}, err
	}

	res, runErr := a.pipeline.Run(ctx, raw)
	run := history.Run{
		SchemaVersion: history.SchemaVersion,
		StartedAt:     started,
		Duration:      time.Since(started),
		Catalogue:     a.catalogueName(),
		Outcome:       history.OutcomeOK,
		Records:       len(raw),
	}
	var diagnostics []api.Diagnostic
	if runErr != nil {
		run.Outcome = history.OutcomeFailed
		run.Error = runErr.Error()
	} else {
		run.Kept = res.Stats.Kept
		run.Removed = res.Stats.Removed
		run.Synthesized = res.Stats.Synthesized.Total()
		run.Markers = res.Stats.Markers
		diagnostics = res.Diagnostics
	}

	delta := a.recordHistory(ctx, run, diagnostics)
	if runErr != nil {
		return nil, delta, runErr
	}

	if err := a.WriteOutputs(res); err != nil {
		return res, delta, err
	}
	slog.Info("run complete",
		"records", len(raw),
		"kept", res.Stats.Kept,
		"removed", res.Stats.Removed,
		"synthesized", res.Stats.Synthesized.Total(),
		"diagnostics", len(res.Diagnostics),
		"elapsed", time.Since(started),
		"heap_mb", util.HeapAllocMB(),
	)
	return res, delta, nil
}

func (a *App) catalogueName() string {
	if a.Paths.Catalogue != "" {
		return a.Paths.Catalogue
	}
	return fmt.Sprint(a.source)
}

// recordHistory never fails the run: a broken history store is logged and skipped.
func (a *App) recordHistory(ctx context.Context, run history.Run, diagnostics []api.Diagnostic) history.Delta {
	if a.history == nil {
		return history.Delta{}
	}
	delta, err := a.history.Record(ctx, run, diagnostics)
	if err != nil {
		slog.Warn("failed to record run history", "error", err)
		return history.Delta{}
	}
	if keep := a.Config.DB.Retention; keep > 0 {
		if pruned, err := a.history.Prune(ctx, keep); err != nil {
			slog.Warn("failed to prune run history", "error", err)
		} else if pruned > 0 {
			slog.Debug("pruned run history", "runs", pruned)
		}
	}
	if !delta.Empty() {
		slog.Info("diagnostics changed", "introduced", len(delta.Introduced), "resolved", len(delta.Resolved))
	}
	return delta
}

// WriteOutputs renders res to every configured target.
func (a *App) WriteOutputs(res *Result) error {
	in := ports.RenderInput{Graph: res.Graph, Tree: res.Tree, Diagnostics: res.Diagnostics}
	for _, t := range a.targets {
		var buf bytes.Buffer
		if err := t.Renderer.Render(&buf, in); err != nil {
			return fmt.Errorf("generate %s output: %w", t.Renderer.Name(), err)
		}
		if err := util.WriteFileWithDirs(t.Path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s output %q: %w", t.Renderer.Name(), t.Path, err)
		}
		slog.Debug("wrote output", "format", t.Renderer.Name(), "path", t.Path)
	}
	return nil
}

// RecentRuns returns up to limit recorded runs, newest first, or nil without a history store.
func (a *App) RecentRuns(ctx context.Context, limit int) ([]history.Run, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.Recent(ctx, limit)
}

func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}

// fileExists is used to skip watch paths that were never created.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

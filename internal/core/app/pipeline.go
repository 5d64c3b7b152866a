package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	coreerrors "cxxbind/internal/core/errors"
	"cxxbind/internal/engine/allowlist"
	"cxxbind/internal/engine/api"
	"cxxbind/internal/engine/deps"
	"cxxbind/internal/engine/gc"
	"cxxbind/internal/engine/ignored"
	"cxxbind/internal/engine/names"
	"cxxbind/internal/engine/namespace"
	"cxxbind/internal/engine/order"
	"cxxbind/internal/engine/overload"
	"cxxbind/internal/engine/pod"
	"cxxbind/internal/engine/synth"
	"cxxbind/internal/shared/observability"
)

// Options configure one pipeline.
type Options struct {
	Known              *api.KnownTypes
	Allowlist          []string
	Blocklist          []string
	PodRequests        []string
	ReservedWords      []string
	SignatureCacheSize int
}

// Stats summarizes a run.
type Stats struct {
	Parsed          int
	Synthesized     synth.Stats
	Roots           int
	Removed         int
	Kept            int
	Markers         int
	IsolationPasses int
	Renamed         int
	Duration        time.Duration
}

// Result is everything an emitter needs: the ordered, named graph, the same
// declarations grouped by namespace, and one diagnostic per missing API.
type Result struct {
	Graph       *api.Graph[api.Named]
	Tree        *namespace.Tree[*api.Declaration]
	Diagnostics []api.Diagnostic
	Stats       Stats
}

// Pipeline runs classify, synthesize, link, collect, isolate, order and name in that order.
// It owns its type parser and matchers; nothing is shared between pipelines.
type Pipeline struct {
	known  *api.KnownTypes
	parser *api.TypeParser
	allow  *allowlist.Matcher
	block  *allowlist.Matcher
	names  *names.Validator
	pods   []string
}

func NewPipeline(opts Options) (*Pipeline, error) {
	allow, invalid := allowlist.New(opts.Allowlist)
	if len(invalid) > 0 {
		return nil, coreerrors.Newf(coreerrors.CodeValidationError, "invalid allow-list patterns: %s", strings.Join(invalid, ", "))
	}
	block, invalid := allowlist.New(opts.Blocklist)
	if len(invalid) > 0 {
		return nil, coreerrors.Newf(coreerrors.CodeValidationError, "invalid block-list patterns: %s", strings.Join(invalid, ", "))
	}
	if block.MatchesAll() {
		return nil, coreerrors.New(coreerrors.CodeValidationError, "block-list cannot contain \"all\"")
	}
	known := opts.Known
	if known == nil {
		known = api.DefaultKnownTypes()
	}
	return &Pipeline{
		known:  known,
		parser: api.NewTypeParser(opts.SignatureCacheSize),
		allow:  allow,
		block:  block,
		names:  names.NewValidator(opts.ReservedWords),
		pods:   append([]string(nil), opts.PodRequests...),
	}, nil
}

func (p *Pipeline) startStage(ctx context.Context, name string) (context.Context, func(n int, err error)) {
	ctx, span := observability.Tracer.Start(ctx, "pipeline."+name)
	start := time.Now()
	return ctx, func(n int, err error) {
		observability.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		observability.StageDeclarations.WithLabelValues(name).Set(float64(n))
		span.SetAttributes(attribute.Int("declarations", n))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		slog.Debug("stage complete", "stage", name, "decls", n, "elapsed", time.Since(start))
	}
}

// Run threads raw declarations through every stage. Only an unsafe POD request or a
// containment cycle fails the run; every other problem becomes an ErrorMarker.
func (p *Pipeline) Run(ctx context.Context, raw []api.RawDecl) (res *Result, err error) {
	ctx, span := observability.Tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(attribute.Int("records", len(raw))))
	defer span.End()
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RunsTotal.WithLabelValues(outcome).Inc()
	}()

	var stats Stats

	_, done := p.startStage(ctx, "parse")
	parsed := api.FromCatalogue(raw, p.parser)
	stats.Parsed = parsed.Len()
	done(parsed.Len(), nil)

	_, done = p.startStage(ctx, "classify")
	classified, err := pod.Classify(parsed, pod.Options{Known: p.known, Blocklist: p.block, Requests: p.pods})
	if err != nil {
		done(0, err)
		return nil, fmt.Errorf("classify: %w", err)
	}
	done(classified.Len(), nil)

	_, done = p.startStage(ctx, "synthesize")
	synthesized, sstats := synth.Synthesize(classified, synth.Options{Known: p.known, Allowlist: p.allow})
	stats.Synthesized = sstats
	recordSynthesized(sstats)
	done(synthesized.Len(), nil)

	_, done = p.startStage(ctx, "link")
	linked := deps.Link(synthesized, p.known)
	done(linked.Len(), nil)

	_, done = p.startStage(ctx, "collect")
	collected, gres := gc.Collect(linked, p.allow)
	stats.Roots, stats.Removed = gres.Roots, gres.Removed
	done(collected.Len(), nil)

	_, done = p.startStage(ctx, "isolate")
	isolated, ires := ignored.Isolate(collected, ignored.Options{Known: p.known, Blocklist: p.block, Names: p.names})
	stats.IsolationPasses = ires.Passes
	done(isolated.Len(), nil)

	_, done = p.startStage(ctx, "order")
	ordered, err := order.Sort(isolated)
	if err != nil {
		done(0, err)
		return nil, fmt.Errorf("order: %w", err)
	}
	done(ordered.Len(), nil)

	_, done = p.startStage(ctx, "name")
	named, nres := overload.Disambiguate(ordered, p.names)
	stats.Renamed = nres.Renamed
	done(named.Len(), nil)

	decls := named.Decls()
	diagnostics := append([]api.Diagnostic(nil), gres.Diagnostics...)
	for _, d := range decls {
		if diag, ok := api.DiagnosticFor(d); ok {
			diagnostics = append(diagnostics, diag)
			observability.ErrorMarkersTotal.WithLabelValues(diag.Kind.String()).Inc()
			stats.Markers++
		}
	}
	stats.Kept = len(decls)
	stats.Duration = time.Since(start)

	observability.GraphNodes.Set(float64(len(decls)))
	observability.GraphEdges.Set(float64(named.EdgeCount()))
	slog.Info("pipeline complete",
		"records", len(raw),
		"kept", stats.Kept,
		"removed", stats.Removed,
		"synthesized", sstats.Total(),
		"markers", stats.Markers,
		"elapsed", stats.Duration)

	return &Result{
		Graph:       named,
		Tree:        namespace.Build(decls, (*api.Declaration).Namespace),
		Diagnostics: diagnostics,
		Stats:       stats,
	}, nil
}

func recordSynthesized(s synth.Stats) {
	observability.SynthesizedTotal.WithLabelValues("constructor").Add(float64(s.Constructors))
	observability.SynthesizedTotal.WithLabelValues("destructor").Add(float64(s.Destructors))
	observability.SynthesizedTotal.WithLabelValues("factory").Add(float64(s.Factories))
	observability.SynthesizedTotal.WithLabelValues("cast").Add(float64(s.Casts))
	observability.SynthesizedTotal.WithLabelValues("allocator").Add(float64(s.Allocators))
}

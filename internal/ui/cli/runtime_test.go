package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	coreapp "cxxbind/internal/core/app"
	"cxxbind/internal/core/config"
	"cxxbind/internal/engine/api"
)

func TestParseOptionsDefaults(t *testing.T) {
	opts, err := parseOptions([]string{"--once", "api.json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.configPath != defaultConfigPath {
		t.Fatalf("expected default config path, got %q", opts.configPath)
	}
	if !opts.once || len(opts.args) != 1 || opts.args[0] != "api.json" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestApplyModeOptions_PositionalCatalogue(t *testing.T) {
	opts := &cliOptions{args: []string{"api.json"}}
	cfg := config.DefaultConfig()

	if err := applyModeOptions(opts, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(cfg.Catalogue) || filepath.Base(cfg.Catalogue) != "api.json" {
		t.Fatalf("expected absolute catalogue path, got %q", cfg.Catalogue)
	}
}

func TestApplyModeOptions_Rejections(t *testing.T) {
	cases := []struct {
		name string
		opts cliOptions
		want string
	}{
		{"TooManyArgs", cliOptions{args: []string{"a.json", "b.json"}}, "at most one positional"},
		{"FlagAndArg", cliOptions{catalogue: "a.json", args: []string{"b.json"}}, "cannot be combined"},
		{"UIAndOnce", cliOptions{ui: true, once: true}, "--ui and --once"},
		{"HistoryWithoutDB", cliOptions{history: 5}, "requires db.enabled"},
		{"NegativeHistory", cliOptions{history: -1}, "must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := tc.opts
			err := applyModeOptions(&opts, config.DefaultConfig())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfig_FallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, path, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" || !cfg.Generate.All {
		t.Fatalf("expected default config, got path=%q all=%v", path, cfg.Generate.All)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected explicit missing config to fail")
	}
}

func TestReportCheck(t *testing.T) {
	var buf bytes.Buffer
	if code := reportCheck(&buf, nil); code != 0 || !strings.Contains(buf.String(), "Config OK") {
		t.Fatalf("unexpected clean check: code=%d out=%q", code, buf.String())
	}

	buf.Reset()
	code := reportCheck(&buf, []error{errors.New("catalogue is not set")})
	if code != 1 {
		t.Fatalf("expected failure code, got %d", code)
	}
	if !strings.Contains(buf.String(), "- catalogue is not set") || !strings.Contains(buf.String(), "1 issues detected") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRunOnceEndToEnd(t *testing.T) {
	dir := t.TempDir()
	catalogue := `[
  {"kind": "struct", "name": "Point", "fields": [{"name": "x", "type": "int"}]},
  {"kind": "function", "name": "norm", "params": [{"name": "p", "type": "const Point&"}], "return": "double"}
]`
	if err := os.WriteFile(filepath.Join(dir, "api.json"), []byte(catalogue), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgText := "catalogue = \"api.json\"\n\n[generate]\nall = true\n\n[output]\ntsv = \"diagnostics.tsv\"\n"
	cfgPath := filepath.Join(dir, "cxxbind.toml")
	if err := os.WriteFile(cfgPath, []byte(cfgText), 0o644); err != nil {
		t.Fatal(err)
	}

	if code := Run([]string{"--config", cfgPath, "--env-file", filepath.Join(dir, ".env"), "--once"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "diagnostics.tsv")); err != nil {
		t.Fatalf("expected TSV output: %v", err)
	}

	if code := Run([]string{"--config", cfgPath, "--check"}); code != 0 {
		t.Fatalf("expected check to pass, got %d", code)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &coreapp.Result{
		Stats: coreapp.Stats{Parsed: 3, Kept: 2, Removed: 1},
		Diagnostics: []api.Diagnostic{
			{Name: "T", Kind: api.FaultBlocked, Message: "excluded by the block-list"},
		},
	})
	out := buf.String()
	if !strings.Contains(out, "3 parsed, 2 kept, 1 removed") {
		t.Fatalf("missing counts: %q", out)
	}
	if !strings.Contains(out, "T: Blocked: excluded by the block-list") {
		t.Fatalf("missing diagnostic: %q", out)
	}
}

func TestObservabilityHealth(t *testing.T) {
	app, err := coreapp.NewWithDependencies(config.DefaultConfig(), coreapp.Dependencies{
		Source: failingSource{},
	})
	if err != nil {
		t.Fatal(err)
	}
	srv := NewObservabilityServer("127.0.0.1:0", app)

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 before any run, got %d", rec.Code)
	}

	if _, err := app.RunOnce(context.Background()); err == nil {
		t.Fatal("expected run to fail")
	}
	rec = httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after a failed run, got %d", rec.Code)
	}
	var status healthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Status != "degraded" || !strings.Contains(status.Error, "catalogue unavailable") {
		t.Fatalf("unexpected status: %+v", status)
	}

	rec = httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "cxxbind_watcher_events_total") {
		t.Fatalf("expected metrics exposition, got %d", rec.Code)
	}
}

type failingSource struct{}

func (failingSource) Load(context.Context) ([]api.RawDecl, error) {
	return nil, errors.New("catalogue unavailable")
}

func TestModel_UpdateAndQuit(t *testing.T) {
	m := initialModel()

	updated, _ := m.Update(updateMsg{update: coreapp.Update{
		Result: &coreapp.Result{
			Stats: coreapp.Stats{Kept: 4},
			Diagnostics: []api.Diagnostic{
				{Name: "a::T", Kind: api.FaultBlocked, Message: "excluded by the block-list"},
				{Name: "a::f", Kind: api.FaultIgnoredDependent, Dep: "a::T", Message: "depends on a::T, which was ignored"},
			},
		},
		Changed: []string{"api.json"},
	}})
	state, ok := updated.(model)
	if !ok {
		t.Fatalf("expected model type, got %T", updated)
	}
	if len(state.list.Items()) != 2 {
		t.Fatalf("expected 2 diagnostic items, got %d", len(state.list.Items()))
	}
	view := state.View()
	if !strings.Contains(view, "2 not generated") || !strings.Contains(view, "changed: api.json") {
		t.Fatalf("unexpected view: %q", view)
	}

	updated, _ = state.Update(updateMsg{update: coreapp.Update{Err: errors.New("boom")}})
	state = updated.(model)
	if len(state.list.Items()) != 2 {
		t.Fatal("a failed run keeps the previous diagnostics")
	}
	if !strings.Contains(state.View(), "Run failed: boom") {
		t.Fatal("expected failure in view")
	}

	_, cmd := state.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

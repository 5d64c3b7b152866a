package config

import (
	"path/filepath"
	"testing"
)

func TestResolvePaths_RelativeToConfigFile(t *testing.T) {
	path := writeConfig(t, "catalogue = \"decls.json\"\n[output]\ndot = \"out/graph.dot\"\n[db]\nenabled = true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ResolvePaths(cfg, "/somewhere/else")
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if got.Catalogue != filepath.Join(dir, "decls.json") {
		t.Fatalf("unexpected catalogue path: %q", got.Catalogue)
	}
	if got.DOT != filepath.Join(dir, "out", "graph.dot") {
		t.Fatalf("unexpected dot path: %q", got.DOT)
	}
	if got.DBPath != filepath.Join(dir, "cxxbind-history.db") {
		t.Fatalf("unexpected db path: %q", got.DBPath)
	}
	if got.TSV != "" || got.Markdown != "" {
		t.Fatalf("unset outputs must stay empty: %+v", got)
	}
}

func TestResolvePaths_InMemoryConfig(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "abs", "history.db")
	cfg := DefaultConfig()
	cfg.Catalogue = "catalogue.toml"
	cfg.DB.Enabled = true
	cfg.DB.Path = abs

	got, err := ResolvePaths(cfg, root)
	if err != nil {
		t.Fatal(err)
	}
	if got.Catalogue != filepath.Join(root, "catalogue.toml") {
		t.Fatalf("unexpected catalogue path: %q", got.Catalogue)
	}
	if got.DBPath != abs {
		t.Fatalf("absolute paths must be kept: %q", got.DBPath)
	}
}

func TestResolvePaths_DatabaseDisabled(t *testing.T) {
	cfg := DefaultConfig()
	got, err := ResolvePaths(cfg, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got.DBPath != "" {
		t.Fatalf("expected no db path, got %q", got.DBPath)
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	BaseDir   string
	Catalogue string
	DBPath    string
	DOT       string
	TSV       string
	Markdown  string
	Mermaid   string
}

// ResolvePaths makes every configured path absolute. Relative paths are taken from the
// directory of the loaded config file, or from cwd for configs built in memory.
func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	base := strings.TrimSpace(cfg.baseDir)
	if base == "" {
		base = strings.TrimSpace(cwd)
	}
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ResolvedPaths{}, fmt.Errorf("resolve working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return ResolvedPaths{}, err
	}

	resolved := ResolvedPaths{
		BaseDir:   filepath.Clean(base),
		Catalogue: optional(base, cfg.Catalogue),
		DOT:       optional(base, cfg.Output.DOT),
		TSV:       optional(base, cfg.Output.TSV),
		Markdown:  optional(base, cfg.Output.Markdown),
		Mermaid:   optional(base, cfg.Output.Mermaid),
	}
	if cfg.DB.Enabled {
		resolved.DBPath = ResolveRelative(base, cfg.DB.Path)
	}
	return resolved, nil
}

func optional(base, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return ResolveRelative(base, value)
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

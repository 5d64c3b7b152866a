package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cxxbind/internal/core/config/helpers"
	coreerrors "cxxbind/internal/core/errors"
	"cxxbind/internal/engine/allowlist"
)

func invalid(format string, args ...interface{}) error {
	return coreerrors.Newf(coreerrors.CodeValidationError, format, args...)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return invalid("unsupported config version %d; the only supported version is 1", cfg.Version)
	}
	return nil
}

func validateGenerate(cfg *Config) error {
	if cfg.Generate.All && len(cfg.Generate.Allowlist) > 0 {
		return invalid("generate.all and generate.allowlist are mutually exclusive")
	}
	if _, bad := allowlist.New(cfg.Generate.Allowlist); len(bad) > 0 {
		return invalid("generate.allowlist has invalid patterns: %s", strings.Join(bad, ", "))
	}
	for _, entry := range cfg.Generate.Blocklist {
		if entry == "all" {
			return invalid("generate.blocklist cannot contain \"all\"")
		}
	}
	if _, bad := allowlist.New(cfg.Generate.Blocklist); len(bad) > 0 {
		return invalid("generate.blocklist has invalid patterns: %s", strings.Join(bad, ", "))
	}
	for _, pod := range cfg.Generate.Pod {
		if helpers.HasWildcard(pod) {
			return invalid("generate.pod entries must be exact type names, got %q", pod)
		}
	}
	for _, word := range cfg.Naming.Reserved {
		if strings.ContainsAny(word, " \t:") {
			return invalid("naming.reserved entry %q is not an identifier", word)
		}
	}
	return nil
}

func validateIntrinsics(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Intrinsics))
	for i, in := range cfg.Intrinsics {
		if in.Name == "" {
			return invalid("intrinsics[%d].name must not be empty", i)
		}
		if seen[in.Name] {
			return invalid("duplicate intrinsic %q", in.Name)
		}
		seen[in.Name] = true
		if in.CType && !in.ValueSafe {
			return invalid("intrinsics[%d] %q is a ctype and must be value_safe", i, in.Name)
		}
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if !cfg.DB.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return invalid("db.path must not be empty")
	}
	if cfg.DB.Retention < 0 {
		return invalid("db.retention must be >= 0, got %d", cfg.DB.Retention)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return invalid("watch.debounce must not be negative")
	}
	if cfg.Watch.MinInterval < 0 {
		return invalid("watch.min_interval must not be negative")
	}
	return nil
}

func validatePerformance(cfg *Config) error {
	if cfg.Performance.SignatureCacheSize < 0 {
		return invalid("performance.signature_cache_size must be >= 0, got %d", cfg.Performance.SignatureCacheSize)
	}
	return nil
}

// Validate runs every check and returns all problems instead of stopping at the first.
func Validate(cfg *Config) []error {
	var errs []error

	for _, check := range []func(*Config) error{
		validateVersion,
		validateGenerate,
		validateIntrinsics,
		validateDatabase,
		validateWatch,
		validatePerformance,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}

	// Semantic / Cross-field validation
	errs = append(errs, validateListOverlap(cfg)...)
	errs = append(errs, validateOutput(cfg)...)

	// Path verification
	errs = append(errs, validatePaths(cfg)...)

	return errs
}

func validateListOverlap(cfg *Config) []error {
	var errs []error
	for _, allowed := range cfg.Generate.Allowlist {
		for _, blocked := range cfg.Generate.Blocklist {
			if helpers.PatternsOverlap(allowed, blocked) {
				errs = append(errs, fmt.Errorf("generate.allowlist entry %q overlaps generate.blocklist entry %q", allowed, blocked))
			}
		}
	}
	return errs
}

func validateOutput(cfg *Config) []error {
	targets := []struct {
		key  string
		path string
	}{
		{"output.dot", cfg.Output.DOT},
		{"output.tsv", cfg.Output.TSV},
		{"output.markdown", cfg.Output.Markdown},
		{"output.mermaid", cfg.Output.Mermaid},
	}
	var errs []error
	seen := make(map[string]string)
	for _, target := range targets {
		if target.path == "" {
			continue
		}
		clean := filepath.Clean(target.path)
		if prev, ok := seen[clean]; ok {
			errs = append(errs, fmt.Errorf("output conflict: %s and %s share the same path %q", prev, target.key, target.path))
			continue
		}
		seen[clean] = target.key
	}
	return errs
}

func validatePaths(cfg *Config) []error {
	var errs []error
	if cfg.Catalogue == "" {
		errs = append(errs, fmt.Errorf("catalogue is not set"))
		return errs
	}
	path := cfg.Catalogue
	if cfg.baseDir != "" {
		path = ResolveRelative(cfg.baseDir, path)
	}
	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("catalogue %q does not exist", cfg.Catalogue))
	} else if err == nil && stat.IsDir() {
		errs = append(errs, fmt.Errorf("catalogue %q is a directory", cfg.Catalogue))
	}
	return errs
}

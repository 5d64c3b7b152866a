package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	coreerrors "cxxbind/internal/core/errors"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, coreerrors.AddContext(coreerrors.Wrap(err, coreerrors.CodeNotFound, "read config"), coreerrors.CtxPath, path)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, coreerrors.AddContext(coreerrors.Wrap(err, coreerrors.CodeValidationError, "decode config"), coreerrors.CtxPath, path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, coreerrors.Newf(coreerrors.CodeValidationError, "unknown config keys: %s", strings.Join(keys, ", ")).
			WithContext(coreerrors.CtxPath, path)
	}

	applyDefaults(&cfg)
	normalize(&cfg)
	cfg.baseDir = filepath.Dir(path)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateGenerate(&cfg); err != nil {
		return nil, err
	}
	if err := validateIntrinsics(&cfg); err != nil {
		return nil, err
	}
	if err := validateDatabase(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	if err := validatePerformance(&cfg); err != nil {
		return nil, err
	}
	if errs := validateOutput(&cfg); len(errs) > 0 {
		return nil, coreerrors.Wrap(errs[0], coreerrors.CodeValidationError, "invalid output")
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "cxxbind-history.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}
	if cfg.DB.Retention == 0 {
		cfg.DB.Retention = 50
	}
	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MinInterval == 0 {
		cfg.Watch.MinInterval = 2 * time.Second
	}
	if cfg.Performance.SignatureCacheSize == 0 {
		cfg.Performance.SignatureCacheSize = 4096
	}
}

func normalize(cfg *Config) {
	cfg.Catalogue = strings.TrimSpace(cfg.Catalogue)
	cfg.Generate.Allowlist = normalizeList(cfg.Generate.Allowlist)
	cfg.Generate.Blocklist = normalizeList(cfg.Generate.Blocklist)
	cfg.Generate.Pod = normalizeList(cfg.Generate.Pod)
	cfg.Naming.Reserved = normalizeList(cfg.Naming.Reserved)
	for i := range cfg.Intrinsics {
		cfg.Intrinsics[i].Name = strings.TrimPrefix(strings.TrimSpace(cfg.Intrinsics[i].Name), "::")
	}
	cfg.Output.DOT = strings.TrimSpace(cfg.Output.DOT)
	cfg.Output.TSV = strings.TrimSpace(cfg.Output.TSV)
	cfg.Output.Markdown = strings.TrimSpace(cfg.Output.Markdown)
	cfg.Output.Mermaid = strings.TrimSpace(cfg.Output.Mermaid)
	cfg.Observability.MetricsAddress = strings.TrimSpace(cfg.Observability.MetricsAddress)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}

func normalizeList(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

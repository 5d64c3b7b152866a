package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Catalogue     string        `toml:"catalogue"`
	Generate      Generate      `toml:"generate"`
	Naming        Naming        `toml:"naming"`
	Intrinsics    []Intrinsic   `toml:"intrinsics"`
	Output        Output        `toml:"output"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
	Performance   Performance   `toml:"performance"`

	// baseDir is the directory of the file the config was loaded from.
	baseDir string
}

// Generate selects what the pipeline emits.
type Generate struct {
	Allowlist []string `toml:"allowlist"`
	// All is shorthand for an allow-list of "all".
	All       bool     `toml:"all"`
	Blocklist []string `toml:"blocklist"`
	Pod       []string `toml:"pod"`
}

type Naming struct {
	Reserved []string `toml:"reserved"`
}

// Intrinsic extends the built-in known-types table.
type Intrinsic struct {
	Name                 string `toml:"name"`
	ValueSafe            bool   `toml:"value_safe"`
	CType                bool   `toml:"ctype"`
	Template             bool   `toml:"template"`
	Copyable             *bool  `toml:"copyable"`
	Movable              *bool  `toml:"movable"`
	DefaultConstructible *bool  `toml:"default_constructible"`
}

type Output struct {
	DOT      string `toml:"dot"`
	TSV      string `toml:"tsv"`
	Markdown string `toml:"markdown"`
	Mermaid  string `toml:"mermaid"`
	// Diagram embeds the mermaid flowchart in the markdown report.
	Diagram bool `toml:"diagram"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
	Retention   int           `toml:"retention"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// MinInterval spaces consecutive watch-mode runs.
	MinInterval time.Duration `toml:"min_interval"`
}

type Observability struct {
	MetricsAddress string `toml:"metrics_address"`
	OTLPEndpoint   string `toml:"otlp_endpoint"`
}

type Performance struct {
	SignatureCacheSize int `toml:"signature_cache_size"`
}

// AllowlistEntries returns the effective allow-list.
func (c *Config) AllowlistEntries() []string {
	if c.Generate.All {
		return []string{"all"}
	}
	return append([]string(nil), c.Generate.Allowlist...)
}

// DefaultConfig returns a valid configuration that generates everything.
func DefaultConfig() *Config {
	cfg := &Config{
		Generate: Generate{All: true},
	}
	applyDefaults(cfg)
	return cfg
}

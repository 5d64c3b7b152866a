package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process environment
// without overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		slog.Debug("loaded env file", "path", file)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CXXBIND_[SECTION]_[KEY] (e.g., CXXBIND_DB_PATH).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Catalogue, "CXXBIND_CATALOGUE")

	// Generate
	setEnvBool(&cfg.Generate.All, "CXXBIND_GENERATE_ALL")
	setEnvList(&cfg.Generate.Allowlist, "CXXBIND_GENERATE_ALLOWLIST")
	setEnvList(&cfg.Generate.Blocklist, "CXXBIND_GENERATE_BLOCKLIST")
	setEnvList(&cfg.Generate.Pod, "CXXBIND_GENERATE_POD")

	// Output
	setEnvString(&cfg.Output.DOT, "CXXBIND_OUTPUT_DOT")
	setEnvString(&cfg.Output.TSV, "CXXBIND_OUTPUT_TSV")
	setEnvString(&cfg.Output.Markdown, "CXXBIND_OUTPUT_MARKDOWN")
	setEnvString(&cfg.Output.Mermaid, "CXXBIND_OUTPUT_MERMAID")
	setEnvBool(&cfg.Output.Diagram, "CXXBIND_OUTPUT_DIAGRAM")

	// Database
	setEnvBool(&cfg.DB.Enabled, "CXXBIND_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "CXXBIND_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "CXXBIND_DB_BUSY_TIMEOUT")
	setEnvInt(&cfg.DB.Retention, "CXXBIND_DB_RETENTION")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "CXXBIND_WATCH_DEBOUNCE")
	setEnvDuration(&cfg.Watch.MinInterval, "CXXBIND_WATCH_MIN_INTERVAL")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddress, "CXXBIND_OBSERVABILITY_METRICS_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CXXBIND_OBSERVABILITY_OTLP_ENDPOINT")

	// Performance
	setEnvInt(&cfg.Performance.SignatureCacheSize, "CXXBIND_PERFORMANCE_SIGNATURE_CACHE_SIZE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList splits a comma-separated value.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = normalizeList(strings.Split(val, ","))
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}

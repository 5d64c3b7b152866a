package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	coreapp "cxxbind/internal/core/app"
	"cxxbind/internal/core/config"
	"cxxbind/internal/shared/observability"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("cxxbind v%s\n", versionString)
		return 0
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	if err := config.LoadDotEnv(opts.envFile); err != nil {
		slog.Warn("failed to load env file", "path", opts.envFile, "error", err)
	}

	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	config.ApplyEnvOverrides(cfg)

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	issues := config.Validate(cfg)
	if opts.check {
		return reportCheck(os.Stdout, issues)
	}
	for _, issue := range issues {
		slog.Warn("config check", "issue", issue)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	app, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer app.Close()

	if opts.history > 0 {
		return printHistory(ctx, os.Stdout, app, opts.history)
	}

	if opts.once {
		res, err := app.RunOnce(ctx)
		if err != nil {
			slog.Error("run failed", "error", err)
			return 1
		}
		printSummary(os.Stdout, res)
		return 0
	}

	addr := strings.TrimSpace(opts.metricsAddr)
	if addr == "" {
		addr = cfg.Observability.MetricsAddress
	}
	if addr != "" {
		server := NewObservabilityServer(addr, app)
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	app.ConfigPath = cfgPath
	app.CatalogueOverride = opts.catalogue
	if opts.ui {
		if err := runUI(ctx, app); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	if err := app.Watch(ctx); err != nil {
		slog.Error("watch failed", "error", err)
		return 1
	}
	return 0
}

// applyModeOptions folds flag overrides into cfg and rejects flag combinations that make no sense.
func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	if len(opts.args) > 1 {
		return fmt.Errorf("at most one positional catalogue path is accepted, got %d", len(opts.args))
	}
	if len(opts.args) == 1 {
		if opts.catalogue != "" {
			return fmt.Errorf("--catalogue and a positional catalogue path cannot be combined")
		}
		opts.catalogue = opts.args[0]
	}
	if opts.catalogue != "" {
		abs, err := filepath.Abs(opts.catalogue)
		if err != nil {
			return fmt.Errorf("resolve catalogue path: %w", err)
		}
		cfg.Catalogue = abs
		opts.catalogue = abs
	}
	if opts.ui && opts.once {
		return fmt.Errorf("--ui and --once cannot be combined")
	}
	if opts.history < 0 {
		return fmt.Errorf("--history must be positive")
	}
	if opts.history > 0 && !cfg.DB.Enabled {
		return fmt.Errorf("--history requires db.enabled = true")
	}
	if opts.history > 0 && (opts.ui || opts.once) {
		return fmt.Errorf("--history cannot be combined with --ui or --once")
	}
	return nil
}

// loadConfig falls back to DefaultConfig when the default path is absent, so a bare
// `cxxbind --catalogue api.json` works without a config file.
func loadConfig(path string) (*config.Config, string, error) {
	cfg, err := config.Load(path)
	if err == nil {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			abs = path
		}
		return cfg, abs, nil
	}
	if path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "path", path)
		return config.DefaultConfig(), "", nil
	}
	return nil, "", err
}

func reportCheck(w io.Writer, issues []error) int {
	if len(issues) == 0 {
		fmt.Fprintln(w, "Config OK")
		return 0
	}
	for _, issue := range issues {
		fmt.Fprintf(w, "- %v\n", issue)
	}
	fmt.Fprintf(w, "Config check failed: %d issues detected.\n", len(issues))
	return 1
}

func printSummary(w io.Writer, res *coreapp.Result) {
	fmt.Fprintf(w, "Declarations: %d parsed, %d kept, %d removed, %d synthesized\n",
		res.Stats.Parsed, res.Stats.Kept, res.Stats.Removed, res.Stats.Synthesized.Total())
	if res.Stats.Renamed > 0 {
		fmt.Fprintf(w, "Renamed overloads: %d\n", res.Stats.Renamed)
	}
	if len(res.Diagnostics) == 0 {
		fmt.Fprintln(w, "No diagnostics.")
		return
	}
	fmt.Fprintf(w, "Diagnostics (%d):\n", len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d)
	}
}

func printHistory(ctx context.Context, w io.Writer, app *coreapp.App, limit int) int {
	runs, err := app.RecentRuns(ctx, limit)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		return 1
	}
	fmt.Fprintf(w, "Runs (%d):\n", len(runs))
	for _, r := range runs {
		line := fmt.Sprintf("  %s %s %-6s records=%d kept=%d markers=%d elapsed=%s",
			r.StartedAt.Local().Format(time.DateTime), r.ID, r.Outcome, r.Records, r.Kept, r.Markers, r.Duration.Round(time.Millisecond))
		if r.Error != "" {
			line += " error=" + r.Error
		}
		fmt.Fprintln(w, line)
	}
	return 0
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cxxbind", "cxxbind.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "cxxbind", "cxxbind.log")
	}

	return "cxxbind.log"
}

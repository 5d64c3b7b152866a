package app

import (
	"context"
	"log/slog"
	"slices"

	"cxxbind/internal/core/watcher"
	"cxxbind/internal/shared/util"
)

// Watch runs once, then re-runs whenever the catalogue or the config file changes, until
// ctx is done. A changed config file is reloaded first; a config that fails to load keeps
// the previous one. Re-runs closer together than watch.min_interval wait for the limiter.
func (a *App) Watch(ctx context.Context) error {
	if _, err := a.run(ctx, nil); err != nil {
		slog.Warn("initial run failed", "error", err)
	}

	var paths []string
	for _, p := range []string{a.Paths.Catalogue, a.ConfigPath} {
		if p != "" && fileExists(p) {
			paths = append(paths, p)
		}
	}

	trigger := make(chan []string, 1)
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, func(changed []string) {
		select {
		case trigger <- changed:
		default:
			slog.Debug("re-run already pending", "changed", changed)
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Watch(paths); err != nil {
		return err
	}

	limiter := util.NewIntervalLimiter(a.Config.Watch.MinInterval)
	limiter.Allow(1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-trigger:
			if err := limiter.Wait(ctx, 1); err != nil {
				return nil
			}
			slog.Info("change detected", "paths", changed)
			if a.ConfigPath != "" && slices.Contains(changed, a.ConfigPath) {
				if err := a.ReloadConfig(); err != nil {
					slog.Warn("config reload failed, keeping previous config", "error", err)
				}
			}
			if _, err := a.run(ctx, changed); err != nil {
				slog.Warn("run failed", "error", err)
			}
		}
	}
}

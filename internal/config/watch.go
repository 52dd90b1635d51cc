package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"studyclock/internal/core/model"
)

// Watch re-reads the defaults file whenever it changes and hands the result to
// apply. It blocks until ctx is cancelled. A file that reloads with invalid
// contents is logged and skipped; the previous defaults stay in effect.
func Watch(ctx context.Context, appName string, logger *slog.Logger, apply func(model.ChainConfig)) error {
	configPath, err := Path(appName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save.
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != configPath || !event.Op.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			defaults, err := Load(appName)
			if err != nil {
				logger.Warn("reload defaults", "path", configPath, "error", err)
				continue
			}
			logger.Info("defaults reloaded", "path", configPath)
			apply(defaults)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher", "error", err)
		}
	}
}

package views

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads s whenever the file at path is written, created or renamed
// into place. Bursts of events within debounce collapse into one reload.
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, s *Service, path string, debounce time.Duration, log *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors and the aggregator may replace the file.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watcher: add %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	log = log.With(slog.String("path", target))
	log.Info("watching artifact")

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("artifact changed", slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			_ = s.Reload(ctx)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

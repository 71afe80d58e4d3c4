package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 500 * time.Millisecond

// watchCrontab logs writes to the crontab file so an operator can tell
// when the document changed on disk, including edits made outside this
// process. Events are debounced: editors emit bursts of writes and
// renames for a single save.
func (a *App) watchCrontab(ctx context.Context) {
	dir := filepath.Dir(a.cfg.Crontab.Path)
	base := filepath.Base(a.cfg.Crontab.Path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		a.log.Warn("crontab watch init failed", slog.Any("err", err))
		return
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		a.log.Warn("crontab watch add failed", slog.Any("err", err), slog.String("dir", dir))
		return
	}

	var timer *time.Timer
	fired := make(chan struct{}, 1)
	debounce := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			select {
			case fired <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-fired:
			a.log.Info("crontab changed on disk", slog.String("path", a.cfg.Crontab.Path))
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			a.log.Warn("crontab watch error", slog.Any("err", err))
		}
	}
}

package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals when the inbox directory gains or changes PDF files.
// Notifications are debounced so a multi-file drop triggers one batch.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

func New(dir string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{dir: dir, debounce: debounce, logger: logger}
}

// Start begins watching. The returned channel receives one value per settled
// burst of inbox changes and closes when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) (<-chan struct{}, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	notify := make(chan struct{}, 1)
	go func() {
		defer close(notify)
		defer fsw.Close()

		var timer *time.Timer
		fire := func() {
			select {
			case notify <- struct{}{}:
			default:
			}
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !isSheet(ev.Name) {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				w.logger.Debug("inbox change", "file", filepath.Base(ev.Name), "op", ev.Op.String())
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(w.debounce, fire)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.logger.Error("inbox watch error", "error", err)
			}
		}
	}()
	return notify, nil
}

func isSheet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

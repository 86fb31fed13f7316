package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/EarthScope/mseedconvert/pkg/log"
)

// defaultSettleDelay is how long a watched file must go without further
// writes before it is considered complete and converted.
const defaultSettleDelay = 500 * time.Millisecond

// HandleFunc converts one file that appeared in the watched directory.
type HandleFunc func(ctx context.Context, path string) error

// Watcher converts files as they are dropped into a directory. Each file
// is one independent conversion run; a failed file is reported and
// skipped, it does not stop the watcher.
type Watcher struct {
	dir    string
	handle HandleFunc
	logger log.Logger
	settle time.Duration
}

// NewWatcher creates a watcher over dir invoking handle per settled file.
func NewWatcher(dir string, handle HandleFunc, logger log.Logger) *Watcher {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		dir:    dir,
		handle: handle,
		logger: logger,
		settle: defaultSettleDelay,
	}
}

// Run watches until the context is cancelled. Files are debounced: a
// file is handled once no write has been observed for the settle delay,
// so partially written files are not picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching for input files", log.String("dir", w.dir))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			pending[ev.Name] = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", log.Err(err))

		case <-ticker.C:
			for path, last := range pending {
				if time.Since(last) < w.settle {
					continue
				}
				delete(pending, path)

				if err := w.handle(ctx, path); err != nil {
					w.logger.Error("conversion failed",
						log.String("input", path), log.Err(err))
				}
			}
		}
	}
}

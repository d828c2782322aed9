package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 2 * time.Second

// Watcher re-runs the ingestor when the data directory changes. Events are
// debounced: exports are written file by file and one run per batch is
// enough.
type Watcher struct {
	ingestor *Ingestor
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over the ingestor's data directory.
func NewWatcher(ingestor *Ingestor, logger *zap.Logger) *Watcher {
	return &Watcher{
		ingestor: ingestor,
		debounce: defaultDebounce,
		logger:   logger,
	}
}

// Start watches until ctx is cancelled. It returns immediately; re-ingests
// run on a background goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.ingestor.dataDir); err != nil {
		_ = fw.Close()
		return err
	}
	w.watcher = fw
	w.logger.Info("watching data directory", zap.String("dir", w.ingestor.dataDir))

	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("data directory changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			w.schedule(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.ingestor.Run(ctx); err != nil {
			w.logger.Error("re-ingest failed", zap.Error(err))
		}
	})
}

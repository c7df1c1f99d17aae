// Package watcher triggers processing when batch files land in a directory.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
)

// DefaultPattern selects the files that trigger the handler.
const DefaultPattern = "*.json"

// Handler processes one file. Calls never overlap.
type Handler func(path string)

// Watcher watches one directory. A file is handed to the handler once it has
// seen no Create or Write event for the debounce period.
type Watcher struct {
	dir      string
	pattern  string
	debounce time.Duration
	handler  Handler
	fsw      *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool

	runMu sync.Mutex
	wg    sync.WaitGroup
}

// New starts watching dir. Events are only consumed once Run is called.
func New(dir string, debounce time.Duration, handler Handler) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watcher handler is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}

	return &Watcher{
		dir:      dir,
		pattern:  DefaultPattern,
		debounce: debounce,
		handler:  handler,
		fsw:      fsw,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Run consumes events until ctx is done, then stops pending timers, waits
// for a running handler and closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	logging.Infow("Watching for batch files", "dir", w.dir, "pattern", w.pattern, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if match, _ := filepath.Match(w.pattern, filepath.Base(event.Name)); !match {
				continue
			}
			logging.Debugw("Watcher detected change", "file", event.Name, "op", event.Op.String())
			w.schedule(event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warnw("Watcher error", "error", err)
		}
	}
}

// schedule (re)starts the debounce timer of one file.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		delete(w.timers, path)
		w.wg.Add(1)
		w.mu.Unlock()

		defer w.wg.Done()
		w.fire(path)
	})
}

func (w *Watcher) fire(path string) {
	defer logging.RecoverAndLog("watcher", "file", path)

	w.runMu.Lock()
	defer w.runMu.Unlock()

	// The file may have been moved away while waiting.
	if _, err := os.Stat(path); err != nil {
		return
	}
	w.handler(path)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.closed = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.wg.Wait()
	if err := w.fsw.Close(); err != nil {
		logging.Warnw("Failed to close watcher", "error", err)
	}
}

// Package watch reports changes to model files so they can be reloaded.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/objtool/internal/logger"
)

// ErrClosed is returned when using a closed Watcher.
var ErrClosed = errors.New("watcher already closed")

// Watcher coalesces write events on a set of files. It watches each file's
// parent directory so saves that rename a temp file over the original are seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	files  map[string]bool
	dirs   map[string]bool
	closed bool
}

// New creates a Watcher that waits debounce after the last event on a file
// before reporting it.
func New(debounce time.Duration) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fs:       fsWatch,
		debounce: debounce,
		log:      logger.Named("watch"),
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// Add starts watching path.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fs.Close()
}

func (w *Watcher) watched(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return abs, w.files[abs]
}

// Run calls onChange for every watched file that was written or replaced,
// once the file has been quiet for the debounce interval. It returns when ctx
// is done or the watcher is closed. onChange runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case e, ok := <-w.fs.Events:
			if !ok {
				return ErrClosed
			}
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Rename) {
				continue
			}
			if abs, ok := w.watched(e.Name); ok {
				pending[abs] = time.Now()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return ErrClosed
			}
			w.log.Error("watch error", zap.Error(err))

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				w.log.Debug("file changed", zap.String("path", path))
				onChange(path)
			}
		}
	}
}

func (w *Watcher) tick() time.Duration {
	if t := w.debounce / 4; t > 10*time.Millisecond {
		return t
	}
	return 10 * time.Millisecond
}

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	loopconfig "github.com/tomz197/santa-rush/internal/loop/config"
)

// debounce collapses the burst of events an editor produces on save.
const debounce = 100 * time.Millisecond

// Watcher reports changes to a single file. It watches the parent
// directory so files replaced by rename (as most editors save) keep being seen.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	Events  chan string // Path of the changed file
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
	done    chan struct{}
}

// NewWatcher starts watching path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		path:    abs,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()

	var last time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			now := time.Now()
			if now.Sub(last) < debounce {
				continue
			}
			last = now
			select {
			case w.Events <- w.path:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default: // Drop if nobody is reading
			}
		case <-w.closeCh:
			return
		}
	}
}

// WatchTuning reloads the tuning file at path whenever it changes and
// sends every valid result on the returned channel. Invalid files are
// logged and skipped. The channel is closed when ctx is done.
func WatchTuning(ctx context.Context, path string, logger *log.Logger) (<-chan loopconfig.Tuning, error) {
	w, err := NewWatcher(path)
	if err != nil {
		return nil, err
	}

	out := make(chan loopconfig.Tuning, 1)
	go func() {
		defer close(out)
		defer w.Close()

		// Give the editor a moment to finish writing before reading
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-w.Events:
				if !ok {
					return
				}
				pending = time.After(debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("Tuning watcher error", "err", err)
			case <-pending:
				pending = nil
				t, err := loopconfig.LoadTuning(path)
				if err != nil {
					logger.Warn("Ignoring tuning change", "path", path, "err", err)
					continue
				}
				logger.Info("Tuning reloaded, applies from the next round", "path", path)
				// Keep only the newest tuning
				select {
				case <-out:
				default:
				}
				out <- t
			}
		}
	}()
	return out, nil
}

// TuningFromEnv loads the tuning file named by SANTA_TUNING and watches it
// until ctx is done. Without the variable it returns the defaults and a nil
// channel. A file that cannot be watched is logged and only loaded once.
func TuningFromEnv(ctx context.Context, logger *log.Logger) (loopconfig.Tuning, <-chan loopconfig.Tuning, error) {
	path := GetEnv(EnvTuning, "")
	if path == "" {
		return loopconfig.DefaultTuning(), nil, nil
	}
	t, err := loopconfig.LoadTuning(path)
	if err != nil {
		return t, nil, err
	}
	updates, err := WatchTuning(ctx, path, logger)
	if err != nil {
		logger.Warn("Tuning hot reload disabled", "path", path, "err", err)
		return t, nil, nil
	}
	logger.Info("Watching tuning file", "path", path)
	return t, updates, nil
}

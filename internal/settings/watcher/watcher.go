// Package watcher reloads the settings overrides file when it changes
// on disk.
//
// It watches the file's directory through fsnotify (watching the file
// itself misses editor rename-and-replace saves), debounces bursts of
// events, and re-applies the file through the settings façade so live
// edits get the same validation as any other caller.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pouyanh/piranha/internal/settings"
	"github.com/pouyanh/piranha/internal/settings/loader"
)

// ErrWatcherClosed is returned when operating on a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// defaultDebounce coalesces the event bursts editors produce on save.
const defaultDebounce = 100 * time.Millisecond

// Watcher watches one overrides file and applies it on change.
type Watcher struct {
	mu sync.Mutex

	path     string
	settings *settings.Settings
	loader   *loader.TOMLLoader
	fsw      *fsnotify.Watcher

	debounce time.Duration
	onError  func(error)

	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce window for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithOnError sets a callback for reload failures. Without it, reload
// failures are dropped: a bad edit leaves the previous values in place.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a watcher for the overrides file at path, applying
// changes through s. Start must be called to begin watching.
func New(path string, s *settings.Settings, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		settings: s,
		loader:   loader.NewTOMLLoader(abs),
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The overrides file itself may not exist yet;
// its directory must.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.fsw != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	fsw := w.fsw
	w.mu.Unlock()

	close(w.done)
	var err error
	if fsw != nil {
		err = fsw.Close()
	}
	w.wg.Wait()
	return err
}

// loop consumes fsnotify events until the watcher closes.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time
	var pendingRemove bool

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				pendingRemove = false
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				pendingRemove = true
			default:
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if pendingRemove {
				w.handleRemove()
			} else {
				w.reload()
			}
			pendingRemove = false

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// reload re-reads the overrides file and applies it.
func (w *Watcher) reload() {
	overrides, err := w.loader.Load()
	if err != nil {
		w.reportError(err)
		return
	}
	if overrides == nil {
		// File vanished between the event and the read.
		w.handleRemove()
		return
	}
	if err := loader.Apply(w.settings, overrides); err != nil {
		w.reportError(err)
		return
	}
	w.settings.Notifier().NotifyReload(w.path)
}

// handleRemove restores defaults when the overrides file disappears.
func (w *Watcher) handleRemove() {
	if err := w.settings.Reset(); err != nil {
		w.reportError(err)
		return
	}
	w.settings.Notifier().NotifyReload(w.path)
}

func (w *Watcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

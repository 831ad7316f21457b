package completion

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for the filesystem to go
// quiet before re-scanning.
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-scans a directory tree whenever matching files change and
// hands each new Index to a callback.
type Watcher struct {
	root     string
	opts     Options
	debounce time.Duration
	onScan   func(*Index)

	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Watch starts watching root recursively. onScan runs on the watcher's
// goroutine after every debounced burst of events; it is not called for the
// initial state, which callers get from Scan. A debounce <= 0 selects
// DefaultDebounce.
func Watch(root string, opts Options, debounce time.Duration, onScan func(*Index)) (*Watcher, error) {
	opts = opts.withDefaults()
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("completion: create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		opts:     opts,
		debounce: debounce,
		onScan:   onScan,
		watcher:  fw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	if err := w.addRecursive(root); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("completion: watch %s: %w", root, err)
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit. It is safe
// to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.stopCh)
		w.closeErr = w.watcher.Close()
		<-w.doneCh
	})
	return w.closeErr
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case <-timerC:
			timerC = nil
			w.rescan()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.opts.Logger.Warn("completion watcher error", zap.Error(err))

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(evt.Name); err == nil && fi.IsDir() && !w.skipDir(evt.Name) {
					if err := w.addRecursive(evt.Name); err != nil {
						w.opts.Logger.Warn("completion watcher add failed",
							zap.String("path", evt.Name), zap.Error(err))
					}
					resetTimer()
					continue
				}
			}
			if w.shouldTrigger(evt) {
				resetTimer()
			}
		}
	}
}

func (w *Watcher) rescan() {
	ix, err := Scan(w.root, w.opts)
	if err != nil {
		w.opts.Logger.Warn("completion rescan failed", zap.String("root", w.root), zap.Error(err))
		return
	}
	w.opts.Logger.Debug("completion index refreshed", zap.Int("components", ix.Len()))
	if w.onScan != nil {
		w.onScan(ix)
	}
}

// shouldTrigger reports whether evt can change the index: a visible file
// with a scanned extension was written, created, removed or renamed.
// Removing a directory also triggers, since its files went with it.
func (w *Watcher) shouldTrigger(evt fsnotify.Event) bool {
	if strings.TrimSpace(evt.Name) == "" {
		return false
	}
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(evt.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && filepath.Ext(base) == "" {
		return true
	}
	return hasExtension(base, w.opts.Extensions)
}

func (w *Watcher) skipDir(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || slices.Contains(w.opts.ExcludeDirs, base)
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(path) {
			return fs.SkipDir
		}
		return w.watcher.Add(path)
	})
}

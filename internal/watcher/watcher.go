// Package watcher reports external edits of the catalog files.
//
// Every repository write also produces file system events. Writes announced
// through MarkOwnWrite are filtered out, so only changes made by other
// processes (or by hand) reach the change callback.
package watcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mrlokans/coursecatalog/internal/logger"
)

// ownWriteWindow is how far apart an event and an announced own write may be
// for the event to be attributed to that write.
const ownWriteWindow = time.Second

// ChangeFunc receives the files that changed during one debounce period.
type ChangeFunc func(paths []string)

type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	onChange ChangeFunc
	log      *logger.Logger

	mu        sync.Mutex
	running   bool
	ownWrites map[string]time.Time
	pending   map[string]time.Time
	timer     *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for files. It does not emit anything until Start.
func New(files []string, debounce time.Duration, onChange ChangeFunc, log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fs:        fsw,
		files:     make(map[string]bool, len(files)),
		debounce:  debounce,
		onChange:  onChange,
		log:       log.Named("watcher"),
		ownWrites: make(map[string]time.Time),
		pending:   make(map[string]time.Time),
		done:      make(chan struct{}),
	}
	for _, f := range files {
		w.files[abs(f)] = true
	}
	return w, nil
}

// Start watches the directories holding the files. Directories are watched
// rather than the files because every write replaces the file by rename.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	var dirs []string
	for f := range w.files {
		if dir := filepath.Dir(f); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	w.log.Info("watching data files", "dirs", dirs, "debounce", w.debounce)
	return nil
}

// Stop stops watching and waits for the event loop to exit. Pending changes
// are dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.fs.Close()
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// MarkOwnWrite announces that this process just wrote path.
func (w *Watcher) MarkOwnWrite(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ownWrites[abs(path)] = time.Now()
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule(abs(event.Name))
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !w.files[abs(event.Name)] {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.pending[path] = time.Now()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush runs after the debounce period. Own writes are matched here rather
// than on arrival because the event may be delivered before MarkOwnWrite.
func (w *Watcher) flush() {
	w.mu.Lock()
	var changed []string
	for path, at := range w.pending {
		if own, ok := w.ownWrites[path]; ok && absDuration(at.Sub(own)) <= ownWriteWindow {
			continue
		}
		changed = append(changed, path)
	}
	w.pending = make(map[string]time.Time)
	running := w.running
	w.mu.Unlock()

	if !running || len(changed) == 0 {
		return
	}

	slices.Sort(changed)
	w.log.Info("data files changed externally", "files", changed)
	w.onChange(changed)
}

func abs(path string) string {
	if a, err := filepath.Abs(path); err == nil {
		return a
	}
	return filepath.Clean(path)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

package workflow

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a workflow directory and triggers a reload callback when
// YAML definitions change. Events are debounced so a burst of writes from an
// editor produces a single reload.
type Watcher struct {
	dir          string
	watcher      *fsnotify.Watcher
	onReload     func()
	debounceTime time.Duration

	mu      sync.Mutex
	pending bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for the given workflow directory.
func NewWatcher(dir string, onReload func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		dir:          dir,
		watcher:      fsw,
		onReload:     onReload,
		debounceTime: 500 * time.Millisecond,
		done:         make(chan struct{}),
	}, nil
}

// Start begins watching. Callers must call Stop when done.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts down the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounceTime)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isYAMLFile(strings.ToLower(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  Workflow watcher error: %v", err)
		case <-ticker.C:
			w.mu.Lock()
			fire := w.pending
			w.pending = false
			w.mu.Unlock()
			if fire && w.onReload != nil {
				w.onReload()
			}
		}
	}
}

package core

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/JonMunkholm/gridclip/internal/fields"
)

// SchemaWatcher loads a schema file into the table registry and reloads it
// when the file changes. A failed reload keeps the previous tables.
type SchemaWatcher struct {
	path     string
	reg      *fields.Registry
	logger   *slog.Logger
	onReload []func(tables int, err error)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	stopped bool
}

// NewSchemaWatcher creates a watcher for path. Nothing is loaded until Load.
func NewSchemaWatcher(path string, reg *fields.Registry, logger *slog.Logger) (*SchemaWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaWatcher{
		path:   absPath,
		reg:    reg,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// OnReload registers a callback run after every load attempt.
// Register callbacks before calling Watch.
func (w *SchemaWatcher) OnReload(fn func(tables int, err error)) {
	w.onReload = append(w.onReload, fn)
}

// Load parses the schema file and replaces the registry contents.
func (w *SchemaWatcher) Load() ([]TableDefinition, error) {
	defs, warnings, err := LoadSchemaFile(w.path, w.reg)
	for _, msg := range warnings {
		w.logger.Warn("schema warning", "path", w.path, "warning", msg)
	}
	if err == nil {
		err = ReplaceAll(defs)
	}
	for _, fn := range w.onReload {
		fn(len(defs), err)
	}
	if err != nil {
		w.logger.Error("schema load failed, keeping previous tables", "path", w.path, "error", err)
		return nil, err
	}

	w.logger.Info("schema loaded", "path", w.path, "tables", len(defs))
	return defs, nil
}

// Watch starts reloading on file changes.
func (w *SchemaWatcher) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors that save atomically replace the file.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	w.mu.Lock()
	w.watcher = watcher
	w.mu.Unlock()

	go w.watchLoop(watcher)

	w.logger.Info("watching schema file for changes", "path", w.path)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *SchemaWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stopCh)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *SchemaWatcher) watchLoop(watcher *fsnotify.Watcher) {
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.logger.Debug("schema file changed", "event", event.Op.String(), "file", event.Name)
				_, _ = w.Load()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("schema watcher error", "error", err)

		case <-w.stopCh:
			return
		}
	}
}

package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// FileWatcher re-runs the analysis when files under the watched root
// change. Events are debounced so a burst of editor writes triggers a
// single re-analysis.
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	log         *slog.Logger
	watchedDirs map[string]bool
	debouncer   *debouncer
}

// ChangeHandler receives the batch of changed paths after debouncing.
type ChangeHandler func(paths []string) error

// New creates a watcher. Close releases it.
func New(log *slog.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	return &FileWatcher{
		watcher:     w,
		log:         log,
		watchedDirs: make(map[string]bool),
		debouncer:   newDebouncer(defaultDebounce, log),
	}, nil
}

// Watch registers every directory under root and starts dispatching
// debounced change batches to handler.
func (fw *FileWatcher) Watch(root string, handler ChangeHandler) error {
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && fw.shouldSkipDir(path) {
			return filepath.SkipDir
		}
		if !fw.watchedDirs[path] {
			if err := fw.watcher.Add(path); err != nil {
				return errors.Wrapf(err, "watching directory %s", path)
			}
			fw.watchedDirs[path] = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	go fw.eventLoop(handler)
	return nil
}

func (fw *FileWatcher) eventLoop(handler ChangeHandler) {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event, handler)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("file watcher error", "err", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event, handler ChangeHandler) {
	if fw.shouldSkipFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	fw.debouncer.add(event.Name, handler)
}

func (fw *FileWatcher) shouldSkipDir(path string) bool {
	name := filepath.Base(path)
	switch name {
	case "vendor", "node_modules", "build", "dist":
		return true
	}
	return strings.HasPrefix(name, ".")
}

func (fw *FileWatcher) shouldSkipFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, suffix := range []string{".tmp", "~", ".swp", ".swo"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Close stops the debouncer and releases the underlying watcher.
func (fw *FileWatcher) Close() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

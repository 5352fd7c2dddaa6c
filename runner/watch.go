package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/canvasfmt"
)

// Writer is implemented by engines that track written files.
type Writer interface {
	MarkWritten(Result)
}

// Watcher reformats Canvas files in place when they change.
type Watcher struct {
	engine   FormatEngine
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	// OnFormat, if set, is called after each handled change.
	OnFormat func(Result, error)
}

// NewWatcher watches dirs and their subdirectories.
func NewWatcher(engine FormatEngine, logger *zap.Logger, dirs []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		engine:   engine,
		logger:   logger,
		watcher:  fw,
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]*time.Timer),
	}
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.engine.IsIgnored(p) {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

// Watch handles events until ctx is done.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if err := w.addTree(event.Name); err == nil {
			w.logger.Debug("Watching new path", zap.String("path", event.Name))
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 ||
		!canvasfmt.HasExtension(event.Name) ||
		w.engine.IsIgnored(event.Name) {
		return
	}

	// several writes in a row are formatted once
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[event.Name]; ok {
		t.Stop()
	}
	name := event.Name
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()
		w.format(name)
	})
}

func (w *Watcher) format(path string) {
	r, err := w.engine.FormatFile(path)
	if err == nil && r.Changed {
		err = Write([]Result{r})
		if err == nil {
			if mw, ok := w.engine.(Writer); ok {
				mw.MarkWritten(r)
			}
		}
	}

	var fe *FileError
	switch {
	case errors.As(err, &fe):
		w.logger.Warn("Cannot format file", zap.String("path", path), zap.Error(fe.Err))
	case err != nil:
		w.logger.Error("Error formatting file", zap.String("path", path), zap.Error(err))
	case r.Changed:
		w.logger.Info("Formatted file", zap.String("path", path))
	}
	if w.OnFormat != nil {
		w.OnFormat(r, err)
	}
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
}

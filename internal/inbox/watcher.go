// Package inbox screens resumes as they are dropped into a watched directory.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"resumescreen/internal/document"
	"resumescreen/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the directory must stay quiet before a
// collected set of files is handed off
const DefaultDebounce = 2 * time.Second

// Handler receives a settled set of new or changed resume paths
type Handler func(ctx context.Context, paths []string)

// Watcher collects new resume files in a directory and hands them to a
// Handler in debounced groups. Groups are handled one at a time.
type Watcher struct {
	mu sync.Mutex

	dir             string
	debounce        time.Duration
	processExisting bool
	handler         Handler
	logger          *errors.Logger

	fsWatcher     *fsnotify.Watcher
	debounceTimer *time.Timer
	pending       map[string]struct{}
	seen          map[string]time.Time

	flushChan chan struct{}
	work      chan []string
	stopChan  chan struct{}
	done      sync.WaitGroup
	running   bool
}

// Options configures a Watcher
type Options struct {
	Dir             string
	Debounce        time.Duration
	ProcessExisting bool
	Handler         Handler
	Logger          *errors.Logger
}

// NewWatcher creates a watcher for opts.Dir
func NewWatcher(opts Options) (*Watcher, error) {
	if opts.Dir == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "inbox directory is required", nil)
	}
	if opts.Handler == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "inbox handler is required", nil)
	}
	info, err := os.Stat(opts.Dir)
	if err != nil || !info.IsDir() {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "inbox directory does not exist", err).
			WithContext("dir", opts.Dir)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	return &Watcher{
		dir:             opts.Dir,
		debounce:        opts.Debounce,
		processExisting: opts.ProcessExisting,
		handler:         opts.Handler,
		logger:          opts.Logger,
		pending:         make(map[string]struct{}),
		seen:            make(map[string]time.Time),
		flushChan:       make(chan struct{}, 1),
		work:            make(chan []string, 16),
		stopChan:        make(chan struct{}),
	}, nil
}

// Start begins watching. The handler's context is ctx.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("inbox watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to create file watcher", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to watch inbox directory", err).
			WithContext("dir", w.dir)
	}
	w.fsWatcher = watcher

	if err := w.scanExisting(); err != nil {
		_ = watcher.Close()
		return err
	}

	w.running = true
	w.done.Add(2)
	go w.watchLoop()
	go w.workLoop(ctx)

	w.logger.Info("Inbox watcher started", "dir", w.dir, "debounce", w.debounce)
	return nil
}

// scanExisting records files already present. They are queued when
// ProcessExisting is set and otherwise only remembered.
func (w *Watcher) scanExisting() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read inbox directory", err).
			WithContext("dir", w.dir)
	}
	for _, entry := range entries {
		path := filepath.Join(w.dir, entry.Name())
		if entry.IsDir() || !isCandidate(path) {
			continue
		}
		if w.processExisting {
			w.pending[path] = struct{}{}
			continue
		}
		if info, err := entry.Info(); err == nil {
			w.seen[path] = info.ModTime()
		}
	}
	if len(w.pending) > 0 {
		w.scheduleFlushLocked()
	}
	return nil
}

// Stop stops watching and waits for an in-flight group to finish
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	err := w.fsWatcher.Close()
	w.running = false
	w.mu.Unlock()

	w.done.Wait()
	if err != nil {
		w.logger.LogError(err, "Failed to close file system watcher")
		return err
	}
	w.logger.Info("Inbox watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) watchLoop() {
	defer w.done.Done()
	defer close(w.work)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if shouldProcessEvent(event) {
				w.enqueue(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "Inbox watcher error")

		case <-w.flushChan:
			if paths := w.takePending(); len(paths) > 0 {
				select {
				case w.work <- paths:
				case <-w.stopChan:
					return
				}
			}

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) workLoop(ctx context.Context) {
	defer w.done.Done()
	for paths := range w.work {
		if ctx.Err() != nil {
			continue
		}
		w.logger.Info("Screening inbox files", "count", len(paths))
		w.handler(ctx, paths)
	}
}

func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = struct{}{}
	w.scheduleFlushLocked()
}

// scheduleFlushLocked restarts the debounce timer. w.mu must be held.
func (w *Watcher) scheduleFlushLocked() {
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		select {
		case w.flushChan <- struct{}{}:
		default:
		}
	})
}

// takePending drains the pending set, keeping only files that still exist
// and changed since they were last handed off
func (w *Watcher) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var paths []string
	for path := range w.pending {
		delete(w.pending, path)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if last, ok := w.seen[path]; ok && !info.ModTime().After(last) {
			continue
		}
		w.seen[path] = info.ModTime()
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

func shouldProcessEvent(event fsnotify.Event) bool {
	if !isCandidate(event.Name) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// isCandidate skips hidden and partial files and unsupported formats
func isCandidate(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return document.IsSupportedFile(base)
}

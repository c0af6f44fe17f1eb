// Package watcher monitors the issues directories and reports changes to
// issue files, debounced so bulk edits produce a single notification.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mwhitford/abacus/internal/config"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher monitors the open and closed issue directories.
type Watcher struct {
	cfg     *config.WatcherConfig
	logger  *slog.Logger
	baseDir string
	changes chan struct{}

	running atomic.Bool
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// New creates a Watcher over the issues tree rooted at baseDir.
func New(cfg *config.WatcherConfig, baseDir string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		cfg:     cfg,
		logger:  logger.With("component", "watcher"),
		baseDir: baseDir,
		changes: make(chan struct{}, 1),
	}
}

// Changes delivers one notification per settled burst of issue file changes.
// Notifications are coalesced: a slow receiver sees at most one pending.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching in a background goroutine. Returns immediately; use
// Stop to terminate.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running.Load() {
		return fmt.Errorf("watcher already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.running.Store(true)

	go w.runLoop()

	return nil
}

// Stop terminates the watcher gracefully.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running.Load() {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	w.cancel()
	<-w.done

	return nil
}

// Running returns whether the watcher is currently active.
func (w *Watcher) Running() bool {
	return w.running.Load()
}

func (w *Watcher) debounce() time.Duration {
	if w.cfg != nil && w.cfg.Debounce > 0 {
		return w.cfg.Debounce
	}
	return defaultDebounce
}

// runLoop is the main file watching loop.
func (w *Watcher) runLoop() {
	defer func() {
		w.running.Store(false)
		close(w.done)
	}()

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("failed to create file watcher", "error", err)
		return
	}
	defer func() { _ = fsWatcher.Close() }()

	// Both directories are created up front so they can be watched even
	// before the first issue exists.
	for _, dir := range []string{
		filepath.Join(w.baseDir, "issues", "open"),
		filepath.Join(w.baseDir, "issues", "closed"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			w.logger.Error("failed to create directory", "dir", dir, "error", err)
			return
		}
		if err := fsWatcher.Add(dir); err != nil {
			w.logger.Error("failed to watch directory", "dir", dir, "error", err)
			return
		}
	}

	w.logger.Info("watching issue directories", "base", w.baseDir)

	var debounceTimer *time.Timer
	var debounceMu sync.Mutex

	notify := func() {
		select {
		case w.changes <- struct{}{}:
		default:
		}
	}

	triggerNotify := func() {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(w.debounce(), notify)
		debounceMu.Unlock()
	}

	for {
		select {
		case <-w.ctx.Done():
			debounceMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceMu.Unlock()
			return

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}

			if !isIssueFile(event.Name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debug("issue file changed", "file", filepath.Base(event.Name), "op", event.Op.String())
				triggerNotify()
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// isIssueFile reports whether a path looks like an issue document.
func isIssueFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".mdx") || strings.HasSuffix(name, ".md")
}

// ABOUTME: Corpus directory watcher that triggers index refreshes on file writes
// ABOUTME: Wraps fsnotify; only .txt files are picked up
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RefreshFunc is invoked for each changed corpus file
type RefreshFunc func(ctx context.Context, path string) error

// Watcher monitors a directory and re-ingests changed text files. The
// refresh callback owns the atomic-swap semantics; the watcher is only the
// trigger.
type Watcher struct {
	fsw     *fsnotify.Watcher
	dir     string
	refresh RefreshFunc

	// Editors emit bursts of writes for one save; coalesce them
	settle time.Duration
}

// New creates a Watcher over dir
func New(dir string, refresh RefreshFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{
		fsw:     fsw,
		dir:     dir,
		refresh: refresh,
		settle:  500 * time.Millisecond,
	}, nil
}

// Run processes events until the context is cancelled. Refresh failures are
// logged and do not stop the watch loop.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != ".txt" {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)

		case now := <-ticker.C:
			for path, seen := range pending {
				if now.Sub(seen) < w.settle {
					continue
				}
				delete(pending, path)
				log.Printf("refreshing %s", path)
				if err := w.refresh(ctx, path); err != nil {
					log.Printf("refresh %s failed: %v", path, err)
				}
			}
		}
	}
}

// Close stops the underlying filesystem watcher
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Package watcher observes the photo directory and feeds classified events to
// the phase controller over a bounded queue.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julie-labs/shelf-assistant/internal/photo"
)

// ErrSourceUnavailable means the watch directory cannot be observed. The
// caller may retry with backoff.
var ErrSourceUnavailable = errors.New("photo source unavailable")

// Watcher delivers at most one event per filename, in filesystem-visible
// creation order. When the consumer falls behind, the oldest buffered event
// is dropped: only the freshest view of the shelf matters.
type Watcher struct {
	dir         string
	settleDelay time.Duration

	mu   sync.Mutex
	seen map[string]bool

	out chan photo.Event
}

// New creates a Watcher for dir. capacity bounds the event buffer;
// settleDelay gives the capture device time to finish writing a file.
func New(dir string, capacity int, settleDelay time.Duration) *Watcher {
	if capacity <= 0 {
		capacity = 16
	}
	return &Watcher{
		dir:         dir,
		settleDelay: settleDelay,
		seen:        make(map[string]bool),
		out:         make(chan photo.Event, capacity),
	}
}

// Events is the stream consumed by the phase controller.
func (w *Watcher) Events() <-chan photo.Event { return w.out }

// Run sweeps photos already present, then watches for new ones until ctx is
// cancelled. Returns an error wrapping ErrSourceUnavailable if the directory
// cannot be observed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	w.sweepExisting()
	slog.Info("watching for photos", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return ErrSourceUnavailable
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			w.handle(ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return ErrSourceUnavailable
			}
			slog.Warn("watch error", "dir", w.dir, "err", err)
		}
	}
}

// sweepExisting enqueues photos already in the directory, in name order.
func (w *Watcher) sweepExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		slog.Warn("failed to list existing photos", "dir", w.dir, "err", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.handle(filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) handle(path string) {
	name := filepath.Base(path)

	w.mu.Lock()
	if w.seen[name] {
		w.mu.Unlock()
		return
	}
	w.seen[name] = true
	w.mu.Unlock()

	ev, err := photo.Classify(path)
	if err != nil {
		slog.Warn("ignoring photo", "file", name, "err", err)
		return
	}

	// Let the capture device finish writing before anyone reads the file.
	// The wait happens off the notification loop so a burst of photos does
	// not stall event draining.
	if w.settleDelay > 0 {
		go func() {
			time.Sleep(w.settleDelay)
			w.enqueue(ev)
			slog.Info("photo queued", "file", name, "flag", ev.Flag)
		}()
		return
	}

	w.enqueue(ev)
	slog.Info("photo queued", "file", name, "flag", ev.Flag)
}

// enqueue delivers ev, dropping the oldest buffered event when full.
func (w *Watcher) enqueue(ev photo.Event) {
	for {
		select {
		case w.out <- ev:
			return
		default:
		}
		select {
		case dropped := <-w.out:
			slog.Warn("photo queue full, dropping oldest event", "file", filepath.Base(dropped.Path))
		default:
		}
	}
}

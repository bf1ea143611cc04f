// Package watch runs a handler for transcripts that appear or change in a
// directory.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/discover"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
const DefaultDebounce = 500 * time.Millisecond

// Handler processes one transcript. Errors are logged, not fatal.
type Handler func(ctx context.Context, path string) error

// Watcher debounces filesystem events for one directory and calls Handler
// once per settled transcript, one at a time.
type Watcher struct {
	Dir      string
	Debounce time.Duration
	Handle   Handler

	log zerolog.Logger
}

// New creates a watcher for dir.
func New(dir string, handle Handler, log zerolog.Logger) *Watcher {
	return &Watcher{
		Dir:      dir,
		Debounce: DefaultDebounce,
		Handle:   handle,
		log:      log.With().Str("component", "watch").Logger(),
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation and an
// error only if the watch cannot be established.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", w.Dir, err)
	}
	w.log.Info().Str("dir", w.Dir).Dur("debounce", w.Debounce).Msg("watching for transcripts")

	ready := make(chan string, 16)
	deb := newDebouncer(w.Debounce, func(path string) {
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("watch stopped")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !discover.IsTranscript(event.Name) {
				continue
			}
			w.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change")
			deb.schedule(event.Name)
		case path := <-ready:
			w.handle(ctx, path)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	start := time.Now()
	if err := w.Handle(ctx, path); err != nil {
		w.log.Error().Err(err).Str("file", path).Msg("processing failed")
		return
	}
	w.log.Info().Str("file", path).Dur("took", time.Since(start)).Msg("processed")
}

type timer interface {
	Stop() bool
}

// debouncer calls fire for a path once no schedule for it has arrived
// within delay. Each schedule replaces the path's timer; a timer that
// already expired but was replaced before its callback ran does nothing.
type debouncer struct {
	delay     time.Duration
	fire      func(path string)
	afterFunc func(time.Duration, func()) timer

	mu     sync.Mutex
	timers map[string]timer
}

func newDebouncer(delay time.Duration, fire func(string)) *debouncer {
	return &debouncer{
		delay: delay,
		fire:  fire,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		timers: make(map[string]timer),
	}
}

func (d *debouncer) schedule(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.timers[path]; ok {
		old.Stop()
	}
	var t timer
	t = d.afterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.timers[path] == t
		if current {
			delete(d.timers, path)
		}
		d.mu.Unlock()
		if current {
			d.fire(path)
		}
	})
	d.timers[path] = t
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}

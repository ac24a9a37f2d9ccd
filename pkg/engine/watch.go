package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const defaultReloadDebounce = 500 * time.Millisecond

// deckWatcher reloads the deck after its file changes. The parent directory
// is watched because editors often replace the file instead of writing it.
type deckWatcher struct {
	log      logrus.FieldLogger
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	reload   func(ctx context.Context) error

	cancel context.CancelFunc
	done   chan struct{}
}

func newDeckWatcher(log logrus.FieldLogger, path string, debounce time.Duration, reload func(ctx context.Context) error) (*deckWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create deck watcher: %w", err)
	}

	path = filepath.Clean(path)

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &deckWatcher{
		log:      log.WithFields(logrus.Fields{"component": "deck_watcher", "deck": path}),
		watcher:  watcher,
		path:     path,
		debounce: debounce,
		reload:   reload,
	}, nil
}

func (w *deckWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go w.run(ctx)
}

func (w *deckWatcher) run(ctx context.Context) {
	defer close(w.done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// Debounce rapid changes
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}

			fire = timer.C
		case <-fire:
			fire = nil

			if err := w.reload(ctx); err != nil {
				w.log.WithError(err).Error("Failed to reload deck, keeping previous schedule")
				continue
			}

			w.log.Info("Reloaded deck")
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			w.log.WithError(err).Warn("Deck watcher error")
		}
	}
}

func (w *deckWatcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}

	return w.watcher.Close()
}

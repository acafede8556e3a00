package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/plancheck/internal/logger"
)

// PromptWatcher reloads a PromptStore when files in its directory change.
type PromptWatcher struct {
	store *PromptStore
}

// NewPromptWatcher creates a watcher for store.
func NewPromptWatcher(store *PromptStore) *PromptWatcher {
	return &PromptWatcher{store: store}
}

// Start watches the prompt directory until ctx is done. The returned
// channel receives the name of each reloaded prompt and is closed when
// watching stops.
func (w *PromptWatcher) Start(ctx context.Context) (<-chan string, error) {
	// Materialise the directory so there is something to watch.
	w.store.initOnce.Do(w.store.initialise)
	if w.store.initErr != nil {
		return nil, w.store.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create prompt watcher: %w", err)
	}
	if err := watcher.Add(w.store.Dir()); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", w.store.Dir(), err)
	}

	reloaded := make(chan string, 16)
	go func() {
		defer close(reloaded)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, relevant := promptName(event)
				if !relevant {
					continue
				}
				w.store.Reload()
				logger.Debug("prompt %s changed (%s), cache cleared", name, event.Op)
				select {
				case reloaded <- name:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("prompt watcher: %v", err)
			}
		}
	}()

	logger.Debug("watching prompts in %s", w.store.Dir())
	return reloaded, nil
}

// promptName maps an event on <name>.txt to name. Chmod-only events are ignored.
func promptName(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	base := filepath.Base(event.Name)
	if !strings.HasSuffix(base, ".txt") {
		return "", false
	}
	return strings.TrimSuffix(base, ".txt"), true
}

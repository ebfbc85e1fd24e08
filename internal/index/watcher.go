package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 150 * time.Millisecond

// WatchFiles watches the named files inside dir and emits one debounced event
// per burst of writes. The directory is watched rather than the files so that
// atomic replace-by-rename from the indexer is still seen. Bursts that leave
// the combined contents unchanged are dropped. names[0] is the primary file;
// its removal is reported as EventIndexRemoved. The channel closes when ctx
// is done.
func WatchFiles(ctx context.Context, dir string, names ...string) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var primary string
	if len(names) > 0 {
		primary = filepath.Join(dir, names[0])
	}

	events := make(chan Event, 8)
	lastHash := hashFiles(dir, names)

	go func() {
		defer watcher.Close()

		var debounceTimer *time.Timer
		var lastEvent fsnotify.Event

		var closed bool
		var mu sync.Mutex

		defer func() {
			mu.Lock()
			closed = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			mu.Unlock()
			close(events)
		}()

		fire := func() {
			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}

			ev := Event{Type: EventIndexUpdated, Path: lastEvent.Name}
			if _, err := os.Stat(primary); os.IsNotExist(err) {
				ev.Type = EventIndexRemoved
				lastHash = 0
			} else {
				h := hashFiles(dir, names)
				if h == lastHash {
					return
				}
				lastHash = h
			}

			select {
			case events <- ev:
			default:
				// Channel full; a refresh is already pending.
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !wanted[filepath.Base(event.Name)] {
					continue
				}

				mu.Lock()
				lastEvent = event
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(watchDebounce, fire)
				mu.Unlock()

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return events, nil
}

// hashFiles returns the xxhash of the named files' contents in order.
// Missing files contribute nothing.
func hashFiles(dir string, names []string) uint64 {
	d := xxhash.New()
	for _, n := range names {
		data, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			continue
		}
		_, _ = d.WriteString(n)
		_, _ = d.Write(data)
	}
	return d.Sum64()
}

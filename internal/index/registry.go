package index

import (
	"fmt"
	"sort"
	"sync"
)

// Options configures a source instance for one vault.
type Options struct {
	Root string // vault root directory
	Path string // explicit index file path; empty = source default under Root
}

// Factory builds a source for the given options.
type Factory func(opts Options) Source

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// RegisterFactory registers a source factory under id. Sources call this from init.
func RegisterFactory(id string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[id] = f
}

// Registered returns the ids of all registered sources in sorted order.
func Registered() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	ids := make([]string, 0, len(factories))
	for id := range factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Open builds the source registered under id without detecting it.
func Open(id string, opts Options) (Source, error) {
	factoriesMu.RLock()
	f, ok := factories[id]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown index source %q", id)
	}
	return f(opts), nil
}

// DetectSources returns every registered source whose index exists for opts.
func DetectSources(opts Options) (map[string]Source, error) {
	found := make(map[string]Source)
	var firstErr error
	for _, id := range Registered() {
		src, err := Open(id, opts)
		if err != nil {
			continue
		}
		ok, err := src.Detect()
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("detect %s: %w", id, err)
			}
			continue
		}
		if ok {
			found[id] = src
		}
	}
	return found, firstErr
}

// Pick chooses a source from detected ones. preferred wins when present;
// otherwise the first id in sorted order is used. Returns nil when none.
func Pick(detected map[string]Source, preferred string) Source {
	if src, ok := detected[preferred]; ok {
		return src
	}
	ids := make([]string, 0, len(detected))
	for id := range detected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return nil
	}
	return detected[ids[0]]
}

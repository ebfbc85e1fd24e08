package palette

import (
	"sort"

	"github.com/marcus/taskpicker/internal/keymap"
	"github.com/marcus/taskpicker/internal/plugin"
)

// Layer groups palette entries by how close they are to the active view.
type Layer int

const (
	LayerCurrentMode Layer = iota // commands of the active context
	LayerPlugin                   // other commands of the active plugin
	LayerGlobal                   // everything else
)

// EntryKey is one key bound to an entry's command.
type EntryKey struct {
	Key    string
	Custom bool // set from keymap.overrides
}

// PaletteEntry is one command row.
type PaletteEntry struct {
	Keys        []EntryKey
	CommandID   string
	Name        string
	Description string
	Category    plugin.Category
	Context     string
	Layer       Layer
	Score       int
	MatchRanges []MatchRange
}

// Key returns the first key bound to the entry, or "".
func (e PaletteEntry) Key() string {
	if len(e.Keys) == 0 {
		return ""
	}
	return e.Keys[0].Key
}

// BuildEntries lists every command known to km. pluginCommands maps command
// ids to the plugin id that owns them.
func BuildEntries(km *keymap.Registry, activeContext, pluginID string, pluginCommands map[string]string) []PaletteEntry {
	var entries []PaletteEntry
	for _, cmd := range km.Commands() {
		ctx := cmd.Context
		if ctx == "" {
			ctx = "global"
		}
		e := PaletteEntry{
			Keys:        entryKeys(km, cmd.ID, ctx),
			CommandID:   cmd.ID,
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Context:     ctx,
		}
		switch {
		case ctx == activeContext:
			e.Layer = LayerCurrentMode
		case pluginCommands[cmd.ID] != "" && pluginCommands[cmd.ID] == pluginID:
			e.Layer = LayerPlugin
		default:
			e.Layer = LayerGlobal
		}
		entries = append(entries, e)
	}
	return entries
}

// entryKeys lists the keys reaching commandID in context, overrides first.
func entryKeys(km *keymap.Registry, commandID, context string) []EntryKey {
	var keys []EntryKey
	for _, b := range km.BindingsForContext(context) {
		if b.Command == commandID {
			keys = append(keys, EntryKey{Key: b.Key, Custom: km.IsUserOverride(b.Key, commandID)})
		}
	}
	return keys
}

// filterEntries scores entries against query on name and description.
// Results are ordered by layer, then context (global first), then score,
// then name, so each context forms one contiguous run.
func filterEntries(entries []PaletteEntry, query string, activeContext string, showAll bool) []PaletteEntry {
	var out []PaletteEntry
	for _, e := range entries {
		if !showAll && e.Layer == LayerGlobal && e.Context != "global" && e.Context != activeContext {
			continue
		}
		score, ranges := FuzzyMatch(query, e.Name)
		if descScore, _ := FuzzyMatch(query, e.Description); score == 0 && descScore > 0 {
			score, ranges = descScore, nil
		}
		if score == 0 {
			continue
		}
		e.Score = score
		e.MatchRanges = ranges
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Layer != out[j].Layer {
			return out[i].Layer < out[j].Layer
		}
		if ci, cj := out[i].Context, out[j].Context; ci != cj {
			if ci == "global" || cj == "global" {
				return ci == "global"
			}
			return ci < cj
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

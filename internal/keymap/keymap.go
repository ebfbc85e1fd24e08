package keymap

import (
	"sort"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskpicker/internal/plugin"
)

// Binding maps a key to a command within a context.
type Binding struct {
	Key     string
	Command string
	Context string
}

// Registry holds key bindings, user overrides and the commands they trigger.
type Registry struct {
	mu            sync.RWMutex
	bindings      map[string][]Binding // context -> bindings in registration order
	userOverrides map[string]string    // key -> command id
	commands      map[string]plugin.Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings:      make(map[string][]Binding),
		userOverrides: make(map[string]string),
		commands:      make(map[string]plugin.Command),
	}
}

// RegisterBinding adds b. Re-registering an identical binding is a no-op.
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bindings[b.Context] {
		if existing == b {
			return
		}
	}
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
}

// RegisterPluginBinding adds a binding on behalf of a plugin.
func (r *Registry) RegisterPluginBinding(key, command, context string) {
	r.RegisterBinding(Binding{Key: key, Command: command, Context: context})
}

// RegisterCommand makes cmd available to Handle and the palette.
func (r *Registry) RegisterCommand(cmd plugin.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.ID] = cmd
}

// RegisterCommands registers every command exposed by the plugins.
func (r *Registry) RegisterCommands(plugins []plugin.Plugin) {
	for _, p := range plugins {
		for _, cmd := range p.Commands() {
			r.RegisterCommand(cmd)
		}
	}
}

// Commands returns every registered command sorted by id.
func (r *Registry) Commands() []plugin.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]plugin.Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetUserOverride binds key to commandID in every context, ahead of defaults.
func (r *Registry) SetUserOverride(key, commandID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userOverrides[key] = commandID
}

// IsUserOverride reports whether key was bound to commandID by the user.
func (r *Registry) IsUserOverride(key, commandID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userOverrides[key] == commandID
}

// GetCommand returns the command registered under id.
func (r *Registry) GetCommand(id string) (plugin.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// Lookup resolves key to a command id: user overrides first, then the
// context's bindings, then global bindings.
func (r *Registry) Lookup(key, context string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.userOverrides[key]; ok {
		return id, true
	}
	for _, ctx := range []string{context, "global"} {
		for _, b := range r.bindings[ctx] {
			if b.Key == key {
				return b.Command, true
			}
		}
	}
	return "", false
}

// Handle runs the handler of the command bound to msg in context.
// It returns nil when the key is unbound or the command has no handler.
func (r *Registry) Handle(msg tea.KeyMsg, context string) tea.Cmd {
	id, ok := r.Lookup(msg.String(), context)
	if !ok {
		return nil
	}
	cmd, ok := r.GetCommand(id)
	if !ok || cmd.Handler == nil {
		return nil
	}
	if cmd.Context != "" && cmd.Context != "global" && cmd.Context != context {
		return nil
	}
	return cmd.Handler()
}

// BindingsForContext returns the bindings of one context, user overrides
// applied on top.
func (r *Registry) BindingsForContext(context string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Binding, 0, len(r.bindings[context]))
	overridden := make(map[string]bool)
	keys := make([]string, 0, len(r.userOverrides))
	for k := range r.userOverrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		id := r.userOverrides[k]
		if cmd, ok := r.commands[id]; ok && (cmd.Context == context || (context == "global" && cmd.Context == "")) {
			out = append(out, Binding{Key: k, Command: id, Context: context})
		}
		overridden[k] = true
	}
	for _, b := range r.bindings[context] {
		if !overridden[b.Key] {
			out = append(out, b)
		}
	}
	return out
}

// Contexts returns every context that has bindings.
func (r *Registry) Contexts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.bindings))
	for ctx := range r.bindings {
		out = append(out, ctx)
	}
	sort.Strings(out)
	return out
}

// RegisterDefaults loads DefaultBindings into r.
func RegisterDefaults(r *Registry) {
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
}

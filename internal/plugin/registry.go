package plugin

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskpicker/internal/index"
)

// Registry owns the registered plugins and their shared context.
type Registry struct {
	ctx         *Context
	plugins     []Plugin
	unavailable map[string]string // plugin id -> init error
}

// NewRegistry creates a registry sharing ctx with every plugin.
func NewRegistry(ctx *Context) *Registry {
	if ctx.Logger == nil {
		ctx.Logger = slog.Default()
	}
	return &Registry{
		ctx:         ctx,
		unavailable: make(map[string]string),
	}
}

// Context returns the shared plugin context.
func (r *Registry) Context() *Context { return r.ctx }

// Register initializes p and adds it. A plugin whose Init fails is recorded
// as unavailable instead of aborting startup.
func (r *Registry) Register(p Plugin) error {
	if err := r.safeInit(p); err != nil {
		r.unavailable[p.ID()] = err.Error()
		r.ctx.Logger.Warn("plugin unavailable", "plugin", p.ID(), "err", err)
		return err
	}
	r.plugins = append(r.plugins, p)
	return nil
}

func (r *Registry) safeInit(p Plugin) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("init panic: %v", rec)
		}
	}()
	return p.Init(r.ctx)
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// Get returns the plugin with the given id.
func (r *Registry) Get(id string) (Plugin, bool) {
	for _, p := range r.plugins {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Unavailable returns plugins that failed to initialize with their reasons.
func (r *Registry) Unavailable() map[string]string { return r.unavailable }

// Start starts every plugin and collects their startup commands.
func (r *Registry) Start() []tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range r.plugins {
		if cmd := p.Start(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Stop stops every plugin.
func (r *Registry) Stop() {
	for _, p := range r.plugins {
		p.Stop()
	}
}

// Reinit swaps the index source, bumps the epoch and restarts every plugin.
func (r *Registry) Reinit(src index.Source) []tea.Cmd {
	r.Stop()
	r.ctx.Index = src
	r.ctx.Epoch++
	for _, p := range r.plugins {
		if err := r.safeInit(p); err != nil {
			r.ctx.Logger.Warn("plugin reinit failed", "plugin", p.ID(), "err", err)
		}
	}
	return r.Start()
}

// Package registry builds and serves the plugin catalog: descriptors,
// command records and event hook records. The catalog is built fully in
// memory, validated, then swapped in atomically; there is no partially
// visible load state and nothing here persists across restarts.
package registry

import (
	"log"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

// Command is a registered command record plus its owning plugin identity.
type Command struct {
	plugin.CommandSpec
	Plugin        string
	PluginDisplay string
}

// Hook is a registered event hook record.
type Hook struct {
	Event  string
	Plugin string
	Run    plugin.HookFunc
}

type commandKey struct {
	handler string
	surface plugin.Surface
}

type catalog struct {
	descriptors map[string]plugin.Manifest
	instances   map[string]plugin.Plugin
	commands    map[commandKey]*Command
	hooks       map[string][]*Hook
}

func emptyCatalog() *catalog {
	return &catalog{
		descriptors: map[string]plugin.Manifest{},
		instances:   map[string]plugin.Plugin{},
		commands:    map[commandKey]*Command{},
		hooks:       map[string][]*Hook{},
	}
}

// Registry holds the active catalog. Lookups are lock-free reads of an
// atomically swapped snapshot, safe against concurrently running handlers.
type Registry struct {
	active atomic.Pointer[catalog]
}

func New() *Registry {
	r := &Registry{}
	r.active.Store(emptyCatalog())
	return r
}

// LoadAll builds a fresh catalog from the given plugins and swaps it in.
// Each plugin is considered exactly once: duplicates are skipped, malformed
// members are dropped individually, and a failing Init aborts only that
// plugin's registration.
func (r *Registry) LoadAll(rt *plugin.Runtime, plugins []plugin.Plugin) {
	cat := emptyCatalog()

	for _, p := range plugins {
		m := p.Manifest()
		if m.Name == "" {
			log.Printf("[WARN] Skipping plugin with empty name (display %q)", m.DisplayName)
			continue
		}
		if _, dup := cat.descriptors[m.Name]; dup {
			// Preserved behavior: duplicate names skip re-registration.
			// Logged because a duplicate may also mask a load failure.
			log.Printf("[WARN] Duplicate plugin %q skipped", m.Name)
			continue
		}

		commands, hooks := collectMembers(&m)

		if len(commands) > 0 || len(hooks) > 0 {
			if err := p.Init(rt); err != nil {
				log.Printf("[ERR] Plugin %q failed to initialize, skipping: %v", m.Name, err)
				continue
			}
			cat.instances[m.Name] = p
			registerCommands(cat, commands)
			for _, h := range hooks {
				cat.hooks[h.Event] = append(cat.hooks[h.Event], h)
			}
		}

		// Plugins contributing nothing still get a descriptor; any
		// dispatch path reaching them is a no-op.
		cat.descriptors[m.Name] = m
	}

	r.active.Store(cat)
	log.Printf("[INFO] Loaded %d plugin(s): %d command(s), %d event hook(s)",
		len(cat.descriptors), len(cat.commands), hookCount(cat))
}

// collectMembers validates a manifest's declared members, dropping
// malformed ones (empty handler, unknown surface) without failing the
// plugin.
func collectMembers(m *plugin.Manifest) ([]*Command, []*Hook) {
	var commands []*Command
	for _, spec := range m.Commands {
		handler := firstToken(spec.Handler)
		if handler == "" || !spec.Surface.Valid() {
			log.Printf("[WARN] Plugin %q: dropping malformed command %q", m.Name, spec.Handler)
			continue
		}
		spec.Handler = handler
		if spec.Surface != plugin.SurfaceChat {
			// Hidden and DM flags only make sense on the chat surface.
			spec.Hidden = false
			spec.AllowDM = true
		}
		commands = append(commands, &Command{
			CommandSpec:   spec,
			Plugin:        m.Name,
			PluginDisplay: m.DisplayName,
		})
	}

	var hooks []*Hook
	for _, spec := range m.Hooks {
		event := strings.ToLower(strings.TrimSpace(spec.Event))
		if event == "" || spec.Run == nil {
			log.Printf("[WARN] Plugin %q: dropping malformed event hook %q", m.Name, spec.Event)
			continue
		}
		hooks = append(hooks, &Hook{Event: event, Plugin: m.Name, Run: spec.Run})
	}
	return commands, hooks
}

// registerCommands inserts command records, first wins on (handler,
// surface) conflicts.
func registerCommands(cat *catalog, commands []*Command) {
	for _, c := range commands {
		key := commandKey{handler: c.Handler, surface: c.Surface}
		if existing, ok := cat.commands[key]; ok {
			log.Printf("[WARN] Command %s/%s from plugin %q conflicts with plugin %q; keeping first",
				c.Handler, c.Surface, c.Plugin, existing.Plugin)
			continue
		}
		cat.commands[key] = c
	}
}

func firstToken(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func hookCount(cat *catalog) int {
	n := 0
	for _, hs := range cat.hooks {
		n += len(hs)
	}
	return n
}

// Lookup returns the command record for a handler on a surface.
func (r *Registry) Lookup(handler string, surface plugin.Surface) (*Command, bool) {
	c, ok := r.active.Load().commands[commandKey{handler: strings.ToLower(handler), surface: surface}]
	return c, ok
}

// Hooks returns the hook records for an event name, case-insensitively.
func (r *Registry) Hooks(event string) []*Hook {
	return r.active.Load().hooks[strings.ToLower(event)]
}

// Descriptor returns a plugin's manifest by name.
func (r *Registry) Descriptor(name string) (plugin.Manifest, bool) {
	m, ok := r.active.Load().descriptors[name]
	return m, ok
}

// HasInstance reports whether a plugin was instantiated (contributed at
// least one command or hook and initialized successfully).
func (r *Registry) HasInstance(name string) bool {
	_, ok := r.active.Load().instances[name]
	return ok
}

// Commands returns all command records for a surface, sorted by handler.
func (r *Registry) Commands(surface plugin.Surface) []*Command {
	cat := r.active.Load()
	var out []*Command
	for key, c := range cat.commands {
		if key.surface == surface {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handler < out[j].Handler })
	return out
}

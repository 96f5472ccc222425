// Package enablement decides whether a plugin is active at a location,
// combining the plugin's static location lists with per-guild operator
// overrides.
package enablement

import (
	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/storage"
)

// CatalogView is the slice of the registry the filter needs.
type CatalogView interface {
	Descriptor(name string) (plugin.Manifest, bool)
}

// Filter evaluates plugin enablement per location.
type Filter struct {
	catalog CatalogView
	store   *storage.Storage
}

func New(catalog CatalogView, store *storage.Storage) *Filter {
	return &Filter{catalog: catalog, store: store}
}

// IsEnabled reports whether a plugin is active at a location. Locationless
// events bypass filtering entirely. An explicit per-guild disable wins over
// everything; an explicit enable overrides only the global flag, and the
// manifest's guild and channel lists are always consulted. Direct messages
// are exempt from the location lists but still honor the global flag.
func (f *Filter) IsEnabled(name string, loc message.Location) bool {
	if loc.IsZero() {
		return true
	}

	m, ok := f.catalog.Descriptor(name)
	if !ok {
		return false
	}

	if loc.DM {
		return m.Enabled
	}

	// An explicit disable wins outright; an explicit enable lifts the
	// global flag but the location lists below still apply.
	override := ""
	if loc.GuildID != "" {
		override = f.store.PluginOverride(loc.GuildID, name)
	}
	if override == storage.PluginDisabled {
		return false
	}
	if !m.Enabled && override != storage.PluginEnabled {
		return false
	}

	if loc.GuildID != "" {
		if contains(m.GuildBlacklist, loc.GuildID) {
			return false
		}
		if len(m.GuildWhitelist) > 0 && !contains(m.GuildWhitelist, loc.GuildID) {
			// A channel whitelist entry rescues a single channel inside
			// an otherwise excluded guild.
			if loc.ChannelID == "" || !contains(m.ChannelWhitelist, loc.ChannelID) {
				return false
			}
			return !contains(m.ChannelBlacklist, loc.ChannelID)
		}
	}

	if loc.ChannelID != "" {
		if contains(m.ChannelBlacklist, loc.ChannelID) {
			return false
		}
		if len(m.ChannelWhitelist) > 0 && !contains(m.ChannelWhitelist, loc.ChannelID) {
			return false
		}
	}

	return true
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

package enablement

import (
	"path/filepath"
	"testing"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/storage"
)

type staticCatalog map[string]plugin.Manifest

func (c staticCatalog) Descriptor(name string) (plugin.Manifest, bool) {
	m, ok := c[name]
	return m, ok
}

func newFilter(t *testing.T, catalog staticCatalog) (*Filter, *storage.Storage) {
	t.Helper()
	st, err := storage.New(filepath.Join(t.TempDir(), "test.json"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(catalog, st), st
}

var (
	inGuild = message.GuildChannel("c1", "g1", "owner")
	dm      = message.DirectMessage("dm1")
)

func TestDefaultsAndUnknown(t *testing.T) {
	f, _ := newFilter(t, staticCatalog{
		"music": {Name: "music", Enabled: true},
		"dark":  {Name: "dark", Enabled: false},
	})

	if !f.IsEnabled("music", inGuild) {
		t.Error("enabled plugin with no lists should be active")
	}
	if f.IsEnabled("dark", inGuild) {
		t.Error("globally disabled plugin should be inactive")
	}
	if f.IsEnabled("missing", inGuild) {
		t.Error("unknown plugin should be inactive")
	}
}

func TestDMHonorsGlobalFlag(t *testing.T) {
	f, _ := newFilter(t, staticCatalog{
		"dark":  {Name: "dark", Enabled: false},
		"music": {Name: "music", Enabled: true, GuildBlacklist: []string{"g1"}, ChannelWhitelist: []string{"c9"}},
	})
	if f.IsEnabled("dark", dm) {
		t.Error("globally disabled plugin must stay off in DMs")
	}
	// Location lists do not apply in DMs; the global flag does.
	if !f.IsEnabled("music", dm) {
		t.Error("enabled plugin should be active in DMs despite location lists")
	}
	if !f.IsEnabled("dark", message.Location{}) {
		t.Error("locationless events bypass enablement filtering")
	}
}

func TestGuildOverrides(t *testing.T) {
	f, st := newFilter(t, staticCatalog{
		"music": {Name: "music", Enabled: true, GuildBlacklist: []string{"g1"}},
		"dark":  {Name: "dark", Enabled: false},
	})

	if f.IsEnabled("music", inGuild) {
		t.Error("guild blacklist should disable")
	}
	// An enable override lifts only the global flag; the deny lists still
	// apply.
	if err := st.SetPluginOverride("g1", "music", storage.PluginEnabled); err != nil {
		t.Fatal(err)
	}
	if f.IsEnabled("music", inGuild) {
		t.Error("enable override must not bypass the guild blacklist")
	}

	if err := st.SetPluginOverride("g1", "dark", storage.PluginEnabled); err != nil {
		t.Fatal(err)
	}
	if !f.IsEnabled("dark", inGuild) {
		t.Error("explicit enable override should beat the global flag")
	}

	if err := st.SetPluginOverride("g1", "music", storage.PluginDisabled); err != nil {
		t.Fatal(err)
	}
	if f.IsEnabled("music", inGuild) {
		t.Error("explicit disable override should win")
	}

	if err := st.SetPluginOverride("g1", "dark", ""); err != nil {
		t.Fatal(err)
	}
	if f.IsEnabled("dark", inGuild) {
		t.Error("clearing the override should fall back to the global flag")
	}
}

func TestGuildWhitelist(t *testing.T) {
	f, _ := newFilter(t, staticCatalog{
		"beta": {Name: "beta", Enabled: true, GuildWhitelist: []string{"g2"}},
	})
	if f.IsEnabled("beta", inGuild) {
		t.Error("guild outside the whitelist should be inactive")
	}
	if !f.IsEnabled("beta", message.GuildChannel("c9", "g2", "owner2")) {
		t.Error("whitelisted guild should be active")
	}
}

func TestChannelWhitelistRescuesGuildMiss(t *testing.T) {
	f, _ := newFilter(t, staticCatalog{
		"beta": {
			Name: "beta", Enabled: true,
			GuildWhitelist:   []string{"g2"},
			ChannelWhitelist: []string{"c1"},
		},
	})
	// g1 misses the guild whitelist, but c1 is channel-whitelisted.
	if !f.IsEnabled("beta", inGuild) {
		t.Error("channel whitelist should rescue a guild whitelist miss")
	}
	if f.IsEnabled("beta", message.GuildChannel("c2", "g1", "owner")) {
		t.Error("other channels in the missing guild stay inactive")
	}
}

func TestChannelLists(t *testing.T) {
	f, _ := newFilter(t, staticCatalog{
		"music": {Name: "music", Enabled: true, ChannelBlacklist: []string{"c1"}},
		"radio": {Name: "radio", Enabled: true, ChannelWhitelist: []string{"c2"}},
	})
	if f.IsEnabled("music", inGuild) {
		t.Error("channel blacklist should disable")
	}
	if f.IsEnabled("radio", inGuild) {
		t.Error("channel whitelist miss should disable")
	}
	if !f.IsEnabled("radio", message.GuildChannel("c2", "g1", "owner")) {
		t.Error("channel whitelist hit should enable")
	}
}

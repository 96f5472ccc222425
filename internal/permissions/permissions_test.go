package permissions

import (
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/storage"
)

func newStore(t *testing.T, owners ...string) (*Store, *storage.Storage) {
	t.Helper()
	st, err := storage.New(filepath.Join(t.TempDir(), "test.json"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st, owners), st
}

var (
	guildLoc   = message.Guild("g1", "owner-g1")
	channelLoc = message.GuildChannel("c1", "g1", "owner-g1")
)

func TestGetPermissionDefaults(t *testing.T) {
	p, _ := newStore(t)
	p.Register("allowed_by_default", true, "test")
	p.Register("denied_by_default", false, "test")

	alice := message.Actor{ID: "alice"}
	if !p.GetPermission("allowed_by_default", alice, channelLoc) {
		t.Error("registered default true should allow")
	}
	if p.GetPermission("denied_by_default", alice, channelLoc) {
		t.Error("registered default false should deny")
	}
	if p.GetPermission("never_registered", alice, channelLoc) {
		t.Error("unregistered permission should deny")
	}
	if !p.GetPermission("none", alice, channelLoc) {
		t.Error("none should always allow")
	}
	if !p.GetPermission("", alice, channelLoc) {
		t.Error("empty name should always allow")
	}
}

func TestOwnerBypass(t *testing.T) {
	p, _ := newStore(t, "boss")
	boss := message.Actor{ID: "boss"}
	alice := message.Actor{ID: "alice"}

	if !p.GetPermission("owner", boss, channelLoc) {
		t.Error("owner should hold the owner permission")
	}
	if p.GetPermission("owner", alice, channelLoc) {
		t.Error("non-owner should never hold the owner permission")
	}
	// Owners bypass even unregistered names.
	if !p.GetPermission("never_registered", boss, channelLoc) {
		t.Error("owner should bypass registration checks")
	}
}

func TestChannelOverrideBeatsGuildOverride(t *testing.T) {
	p, _ := newStore(t)
	p.Register("post_images", true, "test")

	mod := message.Role{ID: "mod", Name: "Mod", Position: 5}
	alice := message.Actor{ID: "alice", Roles: []message.Role{mod}}

	// Guild role allows, channel user denies: channel wins.
	if err := p.SetGuild("g1", "mod", true, "post_images", OverrideAllow); err != nil {
		t.Fatal(err)
	}
	if err := p.SetChannel("c1", "alice", false, "post_images", OverrideDeny); err != nil {
		t.Fatal(err)
	}
	if p.GetPermission("post_images", alice, channelLoc) {
		t.Error("channel-user deny should beat guild-role allow")
	}
	// At guild scope the channel override does not apply.
	if !p.GetPermission("post_images", alice, guildLoc) {
		t.Error("guild-role allow should apply at guild scope")
	}
}

func TestSeniorRoleWins(t *testing.T) {
	p, _ := newStore(t)
	p.Register("post_images", false, "test")

	junior := message.Role{ID: "junior", Position: 1}
	senior := message.Role{ID: "senior", Position: 9}
	alice := message.Actor{ID: "alice", Roles: []message.Role{junior, senior}}

	if err := p.SetGuild("g1", "junior", true, "post_images", OverrideDeny); err != nil {
		t.Fatal(err)
	}
	if err := p.SetGuild("g1", "senior", true, "post_images", OverrideAllow); err != nil {
		t.Fatal(err)
	}
	if !p.GetPermission("post_images", alice, channelLoc) {
		t.Error("highest-position role override should win")
	}
}

func TestClearOverrideRestoresDefault(t *testing.T) {
	p, _ := newStore(t)
	p.Register("post_images", true, "test")
	alice := message.Actor{ID: "alice"}

	if err := p.SetGuild("g1", "alice", false, "post_images", OverrideDeny); err != nil {
		t.Fatal(err)
	}
	if p.GetPermission("post_images", alice, channelLoc) {
		t.Error("deny override should apply")
	}
	if err := p.SetGuild("g1", "alice", false, "post_images", OverrideUnset); err != nil {
		t.Fatal(err)
	}
	if !p.GetPermission("post_images", alice, channelLoc) {
		t.Error("clearing the override should restore the default")
	}
}

func TestDMAllowsRegistered(t *testing.T) {
	p, _ := newStore(t)
	p.Register("denied_by_default", false, "test")
	alice := message.Actor{ID: "alice"}
	dm := message.DirectMessage("dm1")

	if !p.GetPermission("denied_by_default", alice, dm) {
		t.Error("registered permissions should allow in DMs")
	}
	if p.GetPermission("owner", alice, dm) {
		t.Error("owner should still deny in DMs")
	}
}

func TestHasAnyPermission(t *testing.T) {
	p, _ := newStore(t)
	p.Register("a", false, "test")
	p.Register("b", true, "test")
	alice := message.Actor{ID: "alice"}

	if !p.HasAnyPermission(nil, alice, channelLoc) {
		t.Error("empty permission list should pass")
	}
	if !p.HasAnyPermission([]string{"a", "b"}, alice, channelLoc) {
		t.Error("one granted permission should be enough")
	}
	if p.HasAnyPermission([]string{"a"}, alice, channelLoc) {
		t.Error("all denied should fail")
	}
}

func TestRegisterSanitizesAndSorts(t *testing.T) {
	p, _ := newStore(t)
	p.Register("Manage Logs", false, "test")
	p.Register("check_id", true, "test")

	want := []string{"check_id", "managelogs"}
	if diff := cmp.Diff(want, p.Registered()); diff != "" {
		t.Errorf("registered names mismatch (-want +got):\n%s", diff)
	}
}

func TestBlacklistScopes(t *testing.T) {
	p, _ := newStore(t)
	alice := message.Actor{ID: "alice"}
	otherChannel := message.GuildChannel("c2", "g1", "owner-g1")
	otherGuild := message.GuildChannel("c9", "g2", "owner-g2")

	if err := p.Blacklist(alice.ID, guildLoc); err != nil {
		t.Fatal(err)
	}
	if !p.IsBlacklisted(alice.ID, channelLoc) {
		t.Error("guild blacklist should cover its channels")
	}
	if p.IsBlacklisted(alice.ID, otherGuild) {
		t.Error("guild blacklist should not leak into other guilds")
	}

	// Whitelisting one channel lets the user back in there only.
	if err := p.Whitelist(alice.ID, channelLoc); err != nil {
		t.Fatal(err)
	}
	if p.IsBlacklisted(alice.ID, channelLoc) {
		t.Error("channel whitelist should override the guild blacklist")
	}
	if !p.IsBlacklisted(alice.ID, otherChannel) {
		t.Error("whitelist should cover only its own channel")
	}

	if err := p.Unwhitelist(alice.ID, channelLoc); err != nil {
		t.Fatal(err)
	}
	if !p.IsBlacklisted(alice.ID, channelLoc) {
		t.Error("unwhitelist should restore the guild blacklist")
	}
}

func TestGlobalBlacklistSticky(t *testing.T) {
	p, _ := newStore(t)

	if err := p.Blacklist("alice", message.Location{}); err != nil {
		t.Fatal(err)
	}
	if !p.IsBlacklisted("alice", channelLoc) {
		t.Error("global blacklist should apply everywhere")
	}

	// Guild- and channel-scope removals must not touch the global token.
	if err := p.Unblacklist("alice", guildLoc); err != nil {
		t.Fatal(err)
	}
	if err := p.Unblacklist("alice", channelLoc); err != nil {
		t.Fatal(err)
	}
	if !p.IsBlacklisted("alice", channelLoc) {
		t.Error("scoped unblacklist should not clear a global entry")
	}

	if err := p.Unblacklist("alice", message.Location{}); err != nil {
		t.Fatal(err)
	}
	if p.IsBlacklisted("alice", channelLoc) {
		t.Error("global unblacklist should clear the entry")
	}
}

func TestOwnersCannotBeBlacklisted(t *testing.T) {
	p, _ := newStore(t, "boss")
	if err := p.Blacklist("boss", message.Location{}); err != nil {
		t.Fatal(err)
	}
	if p.IsBlacklisted("boss", channelLoc) {
		t.Error("owners must not be blacklistable")
	}
}

type staticResolver int64

func (r staticResolver) UserChannelPermissions(userID, channelID string) (int64, error) {
	return int64(r), nil
}

func TestNativeDecision(t *testing.T) {
	p, _ := newStore(t)
	alice := message.Actor{ID: "alice"}

	// Without a resolver every native lookup is unknown and denies.
	if got := p.NativeDecision("kick_members", alice, channelLoc); got != Unknown {
		t.Errorf("NativeDecision without resolver = %v, want Unknown", got)
	}
	if p.GetPermission("kick_members", alice, channelLoc) {
		t.Error("unknown native decision must not allow")
	}

	p.Native = staticResolver(0)
	if got := p.NativeDecision("kick_members", alice, channelLoc); got != Deny {
		t.Errorf("NativeDecision with no bits = %v, want Deny", got)
	}
	if got := p.NativeDecision("kick_members", alice, guildLoc); got != Unknown {
		t.Errorf("NativeDecision outside a guild channel = %v, want Unknown", got)
	}

	// manage_guild maps to the Manage Server bit.
	p.Native = staticResolver(discordgo.PermissionManageServer)
	if got := p.NativeDecision("manage_guild", alice, channelLoc); got != Allow {
		t.Errorf("NativeDecision manage_guild = %v, want Allow", got)
	}
}

func TestBlacklistedDeniesEverything(t *testing.T) {
	p, _ := newStore(t)
	p.Register("allowed_by_default", true, "test")
	alice := message.Actor{ID: "alice"}

	if err := p.Blacklist(alice.ID, guildLoc); err != nil {
		t.Fatal(err)
	}
	if p.GetPermission("allowed_by_default", alice, channelLoc) {
		t.Error("blacklisted users should hold no permissions")
	}
	if !p.GetPermission("none", alice, channelLoc) {
		t.Error("none short-circuits before the blacklist")
	}
}

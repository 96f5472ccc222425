// Package permissions resolves whether an actor may do something at a
// location. Resolution layers, most specific first: owner status, the
// blacklist, native transport permissions, channel-scope overrides (user
// then role), guild-scope overrides (user then role), and finally the
// permission's registered default.
package permissions

import (
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/storage"
)

// Decision is an explicit tri-state for permission lookups that may have
// no authoritative answer (native checks outside guild channels).
type Decision int8

const (
	Unknown Decision = iota
	Allow
	Deny
)

// Override values as stored: 1 allows, -1 denies, 0 is unset.
const (
	OverrideAllow = 1
	OverrideDeny  = -1
	OverrideUnset = 0
)

// NativeResolver computes transport-native channel permissions for a user.
// The Discord adapter backs it with the session state; the console surface
// leaves it nil.
type NativeResolver interface {
	UserChannelPermissions(userID, channelID string) (int64, error)
}

// nativeBits maps permission names to their transport-native permission
// bits. Names present here defer to the channel's own permission
// computation instead of the override tables.
var nativeBits = map[string]int64{
	"administrator":        discordgo.PermissionAdministrator,
	"manage_channels":      discordgo.PermissionManageChannels,
	"manage_guild":         discordgo.PermissionManageServer,
	"manage_messages":      discordgo.PermissionManageMessages,
	"manage_roles":         discordgo.PermissionManageRoles,
	"manage_nicknames":     discordgo.PermissionManageNicknames,
	"manage_webhooks":      discordgo.PermissionManageWebhooks,
	"kick_members":         discordgo.PermissionKickMembers,
	"ban_members":          discordgo.PermissionBanMembers,
	"moderate_members":     discordgo.PermissionModerateMembers,
	"mention_everyone":     discordgo.PermissionMentionEveryone,
	"mute_members":         discordgo.PermissionVoiceMuteMembers,
	"deafen_members":       discordgo.PermissionVoiceDeafenMembers,
	"move_members":         discordgo.PermissionVoiceMoveMembers,
	"view_channel":         discordgo.PermissionViewChannel,
	"send_messages":        discordgo.PermissionSendMessages,
	"read_message_history": discordgo.PermissionReadMessageHistory,
	"view_audit_logs":      discordgo.PermissionViewAuditLogs,
}

// IsNativeName reports whether name resolves through the transport rather
// than the override tables.
func IsNativeName(name string) bool {
	_, ok := nativeBits[strings.ToLower(name)]
	return ok
}

type registration struct {
	def      bool
	category string
}

// Store answers permission queries against durable overrides plus the
// in-memory registration table rebuilt by plugins on every start.
type Store struct {
	store  *storage.Storage
	owners map[string]bool

	mu         sync.RWMutex
	registered map[string]registration

	// Native is consulted for transport-level permission names. Nil means
	// every native lookup is Unknown.
	Native NativeResolver
}

func New(store *storage.Storage, owners []string) *Store {
	set := make(map[string]bool, len(owners))
	for _, id := range owners {
		set[id] = true
	}
	return &Store{
		store:      store,
		owners:     set,
		registered: make(map[string]registration),
	}
}

// Register declares a permission with its default value. Idempotent by
// name. Existing override storage needs no retrofit: absence already reads
// as unset for any name, so old records answer queries for new permissions
// immediately.
func (p *Store) Register(name string, def bool, category string) {
	name = sanitizeName(name)
	if name == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered[name] = registration{def: def, category: category}
}

func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range []string{" ", ";", "(", ")", "-", "\""} {
		name = strings.ReplaceAll(name, c, "")
	}
	return name
}

// Registered returns all registered permission names, sorted.
func (p *Store) Registered() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.registered))
	for name := range p.registered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a permission name is known.
func (p *Store) IsRegistered(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.registered[strings.ToLower(name)]
	return ok
}

// IsOwner reports whether a user is a configured bot owner.
func (p *Store) IsOwner(userID string) bool {
	return p.owners[userID]
}

// NativeDecision resolves a transport-native permission name. Outside a
// guild channel (or without a resolver) the answer is Unknown, which
// callers must treat as non-authoritative, never as allow.
func (p *Store) NativeDecision(name string, actor message.Actor, loc message.Location) Decision {
	bit, ok := nativeBits[strings.ToLower(name)]
	if !ok {
		return Unknown
	}
	if p.Native == nil || !loc.IsGuildChannel() {
		return Unknown
	}
	perms, err := p.Native.UserChannelPermissions(actor.ID, loc.ChannelID)
	if err != nil {
		log.Printf("[WARN] Native permission lookup failed for %s: %v", actor.ID, err)
		return Unknown
	}
	if perms&discordgo.PermissionAdministrator != 0 || perms&bit != 0 {
		return Allow
	}
	return Deny
}

// GetPermission reports whether an actor holds a permission at a location.
func (p *Store) GetPermission(name string, actor message.Actor, loc message.Location) bool {
	name = strings.ToLower(name)

	if name == "none" || name == "" {
		return true
	}
	if p.IsOwner(actor.ID) {
		return true
	}
	if name == "owner" {
		return false
	}
	if p.IsBlacklisted(actor.ID, loc) {
		return false
	}

	if IsNativeName(name) {
		return p.NativeDecision(name, actor, loc) == Allow
	}

	if loc.DM {
		return true
	}

	if name == "guild_owner" {
		if loc.GuildOwnerID != "" && actor.ID == loc.GuildOwnerID {
			return true
		}
	}

	p.mu.RLock()
	reg, known := p.registered[name]
	p.mu.RUnlock()
	if !known {
		return false
	}

	roles := rolesByPosition(actor.Roles)

	if loc.IsGuildChannel() {
		if v := p.store.ChannelOverride(loc.ChannelID, actor.ID, false, name); v != OverrideUnset {
			return v == OverrideAllow
		}
		for _, role := range roles {
			if v := p.store.ChannelOverride(loc.ChannelID, role.ID, true, name); v != OverrideUnset {
				return v == OverrideAllow
			}
		}
	}

	if loc.GuildID != "" {
		if v := p.store.GuildOverride(loc.GuildID, actor.ID, false, name); v != OverrideUnset {
			return v == OverrideAllow
		}
		for _, role := range roles {
			if v := p.store.GuildOverride(loc.GuildID, role.ID, true, name); v != OverrideUnset {
				return v == OverrideAllow
			}
		}
	}

	return reg.def
}

// HasAnyPermission reports whether the actor holds at least one of the
// named permissions (OR semantics). An empty list always passes.
func (p *Store) HasAnyPermission(names []string, actor message.Actor, loc message.Location) bool {
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if p.GetPermission(name, actor, loc) {
			return true
		}
	}
	return false
}

// AllPermissions evaluates every registered permission for an actor at a
// location, for permission report commands.
func (p *Store) AllPermissions(actor message.Actor, loc message.Location) map[string]bool {
	out := make(map[string]bool)
	for _, name := range p.Registered() {
		out[name] = p.GetPermission(name, actor, loc)
	}
	return out
}

// SetChannel writes a channel-scope override for a user or role.
func (p *Store) SetChannel(channelID, targetID string, targetIsRole bool, name string, value int) error {
	return p.store.SetChannelOverride(channelID, targetID, targetIsRole, strings.ToLower(name), value)
}

// SetGuild writes a guild-scope override for a user or role.
func (p *Store) SetGuild(guildID, targetID string, targetIsRole bool, name string, value int) error {
	return p.store.SetGuildOverride(guildID, targetID, targetIsRole, strings.ToLower(name), value)
}

// rolesByPosition sorts roles highest position first, so the most senior
// role's override wins.
func rolesByPosition(roles []message.Role) []message.Role {
	sorted := make([]message.Role, len(roles))
	copy(sorted, roles)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Position > sorted[j].Position
	})
	return sorted
}

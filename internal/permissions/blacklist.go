package permissions

import (
	"github.com/GreenLED99/PlasmaBot/internal/message"
)

// Blacklist location tokens. A user's entry is a set of these:
//
//	global        blacklisted everywhere, supersedes all others
//	S<guildID>    blacklisted in a guild
//	BC<channelID> blacklisted in one channel
//	WC<channelID> whitelisted in one channel, cancelling a guild token
const tokenGlobal = "global"

func guildToken(guildID string) string       { return "S" + guildID }
func chanDenyToken(channelID string) string  { return "BC" + channelID }
func chanAllowToken(channelID string) string { return "WC" + channelID }

func hasToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

func removeToken(tokens []string, token string) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if t != token {
			out = append(out, t)
		}
	}
	return out
}

// IsBlacklisted reports whether a user is blacklisted at a location.
func (p *Store) IsBlacklisted(userID string, loc message.Location) bool {
	tokens := p.store.BlacklistTokens(userID)
	if len(tokens) == 0 {
		return false
	}
	if hasToken(tokens, tokenGlobal) {
		return true
	}
	switch {
	case loc.IsGuildChannel():
		if hasToken(tokens, chanAllowToken(loc.ChannelID)) {
			return false
		}
		if hasToken(tokens, chanDenyToken(loc.ChannelID)) {
			return true
		}
		return hasToken(tokens, guildToken(loc.GuildID))
	case loc.IsGuild():
		return hasToken(tokens, guildToken(loc.GuildID))
	default:
		return false
	}
}

// Blacklist marks a user as blacklisted at a location: a channel, a guild,
// or (zero location) globally. Owners cannot be blacklisted.
func (p *Store) Blacklist(userID string, loc message.Location) error {
	if p.IsOwner(userID) {
		return nil
	}
	if p.IsBlacklisted(userID, loc) {
		return nil
	}
	tokens := p.store.BlacklistTokens(userID)
	switch {
	case loc.IsGuildChannel():
		if !hasToken(tokens, chanAllowToken(loc.ChannelID)) {
			tokens = append(tokens, chanDenyToken(loc.ChannelID))
		}
	case loc.IsGuild():
		tokens = append(tokens, guildToken(loc.GuildID))
	default:
		tokens = append(tokens, tokenGlobal)
	}
	return p.store.SetBlacklistTokens(userID, tokens)
}

// Unblacklist removes a per-location blacklist entry. The global token is
// sticky: only a global un-blacklist (zero location) removes it.
func (p *Store) Unblacklist(userID string, loc message.Location) error {
	tokens := p.store.BlacklistTokens(userID)
	if len(tokens) == 0 {
		return nil
	}
	switch {
	case loc.IsGuildChannel():
		if hasToken(tokens, tokenGlobal) {
			return nil
		}
		tokens = removeToken(tokens, chanDenyToken(loc.ChannelID))
	case loc.IsGuild():
		if hasToken(tokens, tokenGlobal) {
			return nil
		}
		tokens = removeToken(tokens, guildToken(loc.GuildID))
	default:
		tokens = removeToken(tokens, tokenGlobal)
	}
	return p.store.SetBlacklistTokens(userID, tokens)
}

// Whitelist grants a user a single channel back inside a guild they are
// otherwise blacklisted from. No-op for globally blacklisted users.
func (p *Store) Whitelist(userID string, loc message.Location) error {
	if !loc.IsGuildChannel() {
		return nil
	}
	guildLoc := message.Guild(loc.GuildID, loc.GuildOwnerID)
	if !p.IsBlacklisted(userID, guildLoc) {
		return nil
	}
	tokens := p.store.BlacklistTokens(userID)
	if hasToken(tokens, tokenGlobal) {
		return nil
	}
	tokens = removeToken(tokens, chanDenyToken(loc.ChannelID))
	if !hasToken(tokens, chanAllowToken(loc.ChannelID)) {
		tokens = append(tokens, chanAllowToken(loc.ChannelID))
	}
	return p.store.SetBlacklistTokens(userID, tokens)
}

// Unwhitelist removes a channel whitelist entry, returning the channel to
// the guild's blacklist default.
func (p *Store) Unwhitelist(userID string, loc message.Location) error {
	if !loc.IsGuildChannel() {
		return nil
	}
	tokens := p.store.BlacklistTokens(userID)
	if !hasToken(tokens, chanAllowToken(loc.ChannelID)) {
		return nil
	}
	tokens = removeToken(tokens, chanAllowToken(loc.ChannelID))
	return p.store.SetBlacklistTokens(userID, tokens)
}

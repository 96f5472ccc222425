// Package message defines transport-neutral message, actor and location
// types shared by the router, the permission store and the gateway adapters.
package message

import (
	"fmt"
	"time"
)

// Role is a guild role an actor may hold. Position orders roles within a
// guild; higher positions outrank lower ones.
type Role struct {
	ID       string
	Name     string
	Position int
}

// Mention returns the role's chat mention token.
func (r Role) Mention() string {
	return fmt.Sprintf("<@&%s>", r.ID)
}

// Actor is the author of a message or the target of a permission check.
type Actor struct {
	ID          string
	DisplayName string
	Bot         bool
	Roles       []Role
}

// Mention returns the actor's chat mention token.
func (a Actor) Mention() string {
	return fmt.Sprintf("<@%s>", a.ID)
}

// ChannelRef identifies a channel referenced in a message.
type ChannelRef struct {
	ID   string
	Name string
}

// Mention returns the channel's chat mention token.
func (c ChannelRef) Mention() string {
	return fmt.Sprintf("<#%s>", c.ID)
}

// Location is where an event happened: a guild channel, a whole guild, or a
// direct message. The zero Location means "no location".
type Location struct {
	ChannelID    string
	GuildID      string
	GuildOwnerID string
	DM           bool
}

// DirectMessage returns the location of a direct-message channel.
func DirectMessage(channelID string) Location {
	return Location{ChannelID: channelID, DM: true}
}

// GuildChannel returns the location of a channel within a guild.
func GuildChannel(channelID, guildID, ownerID string) Location {
	return Location{ChannelID: channelID, GuildID: guildID, GuildOwnerID: ownerID}
}

// Guild returns a guild-wide location with no specific channel.
func Guild(guildID, ownerID string) Location {
	return Location{GuildID: guildID, GuildOwnerID: ownerID}
}

// IsGuildChannel reports whether the location is a channel inside a guild.
func (l Location) IsGuildChannel() bool {
	return !l.DM && l.ChannelID != "" && l.GuildID != ""
}

// IsGuild reports whether the location is a guild without a channel.
func (l Location) IsGuild() bool {
	return !l.DM && l.ChannelID == "" && l.GuildID != ""
}

// IsZero reports whether the location is absent.
func (l Location) IsZero() bool {
	return l == Location{}
}

// Incoming is a received chat message, decoupled from the transport that
// delivered it so the router and tests do not depend on gateway types.
type Incoming struct {
	ID              string
	Location        Location
	Author          Actor
	Content         string
	UserMentions    []Actor
	RoleMentions    []Role
	ChannelMentions []ChannelRef
	Timestamp       time.Time
}

package plugin

import (
	"time"

	"github.com/GreenLED99/PlasmaBot/internal/message"
)

// Outgoing is a message the bot sends. Content must already be safe to
// send; the router neutralizes mass mentions before rendering.
type Outgoing struct {
	Content       string
	Embed         *Embed
	Expire        time.Duration
	AllowMentions bool
}

// Gateway is the outbound side of the chat transport. The Discord adapter
// implements it against a live session; tests substitute a recorder.
type Gateway interface {
	// SendMessage sends to a channel and returns the new message ID.
	SendMessage(channelID string, out *Outgoing) (string, error)
	EditMessage(channelID, messageID, content string) error
	DeleteMessage(channelID, messageID string) error
	// DirectMessage opens (or reuses) a DM channel with a user and sends.
	DirectMessage(userID string, out *Outgoing) (string, error)
	// SetChannelPermission writes a native channel permission overwrite.
	SetChannelPermission(channelID, targetID string, targetIsRole bool, allow, deny int64) error

	// BotMember resolves the bot's own member object in a guild.
	BotMember(guildID string) (message.Actor, bool)
	// MemberByToken resolves a console argument (mention, ID or name) to a
	// guild member.
	MemberByToken(guildID, token string) (message.Actor, bool)
	RoleByToken(guildID, token string) (message.Role, bool)
	ChannelByToken(guildID, token string) (message.ChannelRef, bool)
}

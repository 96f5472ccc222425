package plugin

import "github.com/GreenLED99/PlasmaBot/internal/message"

// Gateway event names as dispatched to hooks. Hook matching is
// case-insensitive; these are the canonical lowercase forms.
const (
	EventMessageCreate      = "message_create"
	EventMessageDelete      = "message_delete"
	EventMessageReactionAdd = "message_reaction_add"
	EventGuildMemberAdd     = "guild_member_add"
	EventGuildMemberRemove  = "guild_member_remove"
	EventTypingStart        = "typing_start"
	EventPresenceUpdate     = "presence_update"
	EventReady              = "ready"
)

// Event is what a hook receives: the canonical event name, the resolved
// location (zero when the event has none), and the event-specific payload.
type Event struct {
	Name     string
	Location message.Location
	Payload  any
}

// Message returns the payload as an incoming message, or nil.
func (e *Event) Message() *message.Incoming {
	m, _ := e.Payload.(*message.Incoming)
	return m
}

// MemberEvent is the payload of guild_member_add / guild_member_remove.
type MemberEvent struct {
	GuildID      string
	GuildOwnerID string
	Member       message.Actor
}

// ReactionEvent is the payload of message_reaction_add.
type ReactionEvent struct {
	Location  message.Location
	MessageID string
	Emoji     string
	User      message.Actor
}

// TypingEvent is the payload of typing_start.
type TypingEvent struct {
	Location message.Location
	User     message.Actor
}

// PresenceEvent is the payload of presence_update.
type PresenceEvent struct {
	GuildID string
	UserID  string
	Status  string
}

// DeletedMessage is the payload of message_delete.
type DeletedMessage struct {
	Location  message.Location
	MessageID string
}

package plugin

import (
	"time"

	"github.com/GreenLED99/PlasmaBot/internal/message"
)

// Context vocabulary: parameter names the router binds from the invocation
// context instead of from user-supplied arguments.
const (
	ParamMessage         = "message"
	ParamContent         = "content"
	ParamChannel         = "channel"
	ParamAuthor          = "author"
	ParamGuild           = "guild"
	ParamGuildMember     = "guild_member"
	ParamUserMentions    = "user_mentions"
	ParamChannelMentions = "channel_mentions"
	ParamRoleMentions    = "role_mentions"
	ParamArgs            = "args"
	ParamDatetime        = "datetime"
)

var contextVocabulary = map[string]bool{
	ParamMessage:         true,
	ParamContent:         true,
	ParamChannel:         true,
	ParamAuthor:          true,
	ParamGuild:           true,
	ParamGuildMember:     true,
	ParamUserMentions:    true,
	ParamChannelMentions: true,
	ParamRoleMentions:    true,
	ParamArgs:            true,
	ParamDatetime:        true,
}

// IsContextParam reports whether name belongs to the context vocabulary.
func IsContextParam(name string) bool {
	return contextVocabulary[name]
}

// Call carries everything a command handler may have declared as a
// parameter. Context-vocabulary parameters are pre-bound fields; positional
// parameters land in Values under their declared names.
type Call struct {
	// Message is the raw incoming message, nil on the console surface.
	Message  *message.Incoming
	Location message.Location
	Author   message.Actor

	// Content is the unsplit text after the handler token.
	Content string
	// Args is the full whitespace-split argument list.
	Args []string

	UserMentions    []message.Actor
	RoleMentions    []message.Role
	ChannelMentions []message.ChannelRef

	// GuildMember is the bot's own member object in the guild, zero in DMs.
	GuildMember message.Actor
	Now         time.Time

	// Values holds positionally bound parameters keyed by declared name.
	Values map[string]string
}

// Value returns the positionally bound parameter with the given name.
func (c *Call) Value(name string) string {
	return c.Values[name]
}

package router

import (
	"strings"
	"time"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/registry"
)

// bindChat builds a call record for a chat invocation. Context-vocabulary
// parameters are pre-bound from the message; the remaining declared names
// consume the argument list left to right. The returned missing name is
// empty on success.
func (r *Router) bindChat(cmd *registry.Command, msg *message.Incoming, body string, args []string) (*plugin.Call, string) {
	content := strings.TrimSpace(strings.TrimPrefix(body, strings.Fields(body)[0]))

	call := &plugin.Call{
		Message:         msg,
		Location:        msg.Location,
		Author:          msg.Author,
		Content:         content,
		Args:            append([]string(nil), args...),
		UserMentions:    msg.UserMentions,
		RoleMentions:    msg.RoleMentions,
		ChannelMentions: msg.ChannelMentions,
		Now:             time.Now(),
		Values:          map[string]string{},
	}
	if msg.Location.GuildID != "" {
		if member, ok := r.gateway.BotMember(msg.Location.GuildID); ok {
			call.GuildMember = member
		}
	}
	return bindPositional(call, cmd.Params)
}

// bindPositional fills Values for every non-context parameter. Defaults
// apply only once the argument list is exhausted; a required parameter
// left unbound aborts with its name.
func bindPositional(call *plugin.Call, params []plugin.Param) (*plugin.Call, string) {
	queue := append([]string(nil), call.Args...)
	for _, p := range params {
		if plugin.IsContextParam(p.Name) {
			continue
		}
		if len(queue) > 0 {
			call.Values[p.Name] = queue[0]
			queue = queue[1:]
			continue
		}
		if p.HasDefault {
			call.Values[p.Name] = p.Default
			continue
		}
		return call, p.Name
	}
	return call, ""
}

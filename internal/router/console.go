package router

import (
	"context"
	"strings"
	"time"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/registry"
)

// ConsoleWriter renders router output on the operator console.
type ConsoleWriter interface {
	Respond(text string)
	Warn(text string)
}

// operator is the synthetic actor behind console invocations. The console
// is a trusted local surface, so permission checks do not apply to it.
var operator = message.Actor{ID: "console", DisplayName: "Console"}

// DispatchConsole routes one console command line. body is the line with
// the console prefix already stripped; loc is the console's current
// attachment (zero when detached).
func (r *Router) DispatchConsole(ctx context.Context, body string, loc message.Location, w ConsoleWriter) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return
	}
	handler := strings.ToLower(fields[0])
	args := fields[1:]

	if handler == "help" {
		r.consoleHelp(w)
		return
	}

	cmd, ok := r.registry.Lookup(handler, plugin.SurfaceConsole)
	if !ok {
		w.Warn("Invalid Terminal Command.")
		return
	}

	// The console ignores per-guild overrides and location lists; only the
	// plugin's global flag applies.
	if m, ok := r.registry.Descriptor(cmd.Plugin); ok && !m.Enabled {
		w.Warn("Invalid Terminal Command.")
		return
	}

	call, missing := r.bindConsole(cmd, body, args, loc)
	if missing != "" {
		w.Warn(usageText(cmd, r.settings.ConsolePrefix()))
		return
	}

	resp, err := r.invoke(ctx, cmd, call, operator, loc, body)
	if err != nil && !plugin.IsControlSignal(err) {
		w.Warn("Command failed; see the log for details.")
		return
	}
	r.renderConsole(cmd, resp, w)
}

// bindConsole builds a call record for a console invocation. Mention
// parameters resolve argument tokens against the attached guild through
// the gateway.
func (r *Router) bindConsole(cmd *registry.Command, body string, args []string, loc message.Location) (*plugin.Call, string) {
	content := strings.TrimSpace(strings.TrimPrefix(body, strings.Fields(body)[0]))

	call := &plugin.Call{
		Location: loc,
		Author:   operator,
		Content:  content,
		Args:     append([]string(nil), args...),
		Now:      time.Now(),
		Values:   map[string]string{},
	}
	if loc.GuildID != "" {
		if member, ok := r.gateway.BotMember(loc.GuildID); ok {
			call.GuildMember = member
		}
		for _, p := range cmd.Params {
			switch p.Name {
			case plugin.ParamUserMentions:
				for _, tok := range args {
					if m, ok := r.gateway.MemberByToken(loc.GuildID, tok); ok {
						call.UserMentions = append(call.UserMentions, m)
					}
				}
			case plugin.ParamRoleMentions:
				for _, tok := range args {
					if role, ok := r.gateway.RoleByToken(loc.GuildID, tok); ok {
						call.RoleMentions = append(call.RoleMentions, role)
					}
				}
			case plugin.ParamChannelMentions:
				for _, tok := range args {
					if ch, ok := r.gateway.ChannelByToken(loc.GuildID, tok); ok {
						call.ChannelMentions = append(call.ChannelMentions, ch)
					}
				}
			}
		}
	}
	return bindPositional(call, cmd.Params)
}

func (r *Router) renderConsole(cmd *registry.Command, resp *plugin.Response, w ConsoleWriter) {
	if resp == nil {
		return
	}
	if resp.Kind == plugin.RespondHelp {
		w.Respond(usageText(cmd, r.settings.ConsolePrefix()))
		return
	}
	if resp.Content != "" {
		w.Respond(resp.Content)
	}
	if resp.Embed != nil {
		w.Respond(embedText(resp.Embed))
	}
}

// embedText flattens an embed into indented console text.
func embedText(e *plugin.Embed) string {
	var b strings.Builder
	if e.Title != "" {
		b.WriteString(e.Title + "\n")
	}
	if e.Description != "" {
		b.WriteString(e.Description + "\n")
	}
	for _, f := range e.Fields {
		b.WriteString("  " + f.Name + ": " + f.Value + "\n")
	}
	if e.Footer != "" {
		b.WriteString(e.Footer + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

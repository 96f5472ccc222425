package router

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/registry"
)

// helpExpire keeps help listings around longer than normal replies.
const helpExpire = 60 * time.Second

// chatHelp renders either the command index or one command's usage card.
// The index only lists what the caller could actually run here: hidden
// commands, DM-blocked commands in DMs and commands the caller lacks
// permissions for are omitted.
func (r *Router) chatHelp(ctx context.Context, msg *message.Incoming, args []string) {
	prefix := r.settings.Prefix()

	if len(args) > 0 {
		handler := strings.ToLower(args[0])
		cmd, ok := r.registry.Lookup(handler, plugin.SurfaceChat)
		if !ok || !r.visibleTo(cmd, msg.Author, msg.Location) {
			r.sendChat(msg.Location.ChannelID, plugin.Send("No such command: `"+handler+"`"))
			return
		}
		r.sendChat(msg.Location.ChannelID, usageCard(cmd, prefix))
		return
	}

	byPlugin := map[string][]string{}
	for _, cmd := range r.registry.Commands(plugin.SurfaceChat) {
		if !r.visibleTo(cmd, msg.Author, msg.Location) {
			continue
		}
		if !r.filter.IsEnabled(cmd.Plugin, msg.Location) {
			continue
		}
		display := cmd.PluginDisplay
		if display == "" {
			display = cmd.Plugin
		}
		line := "`" + prefix + cmd.Handler + "`"
		if cmd.Description != "" {
			line += " - " + cmd.Description
		}
		byPlugin[display] = append(byPlugin[display], line)
	}

	if len(byPlugin) == 0 {
		r.sendChat(msg.Location.ChannelID, plugin.Send("No commands available here."))
		return
	}

	groups := make([]string, 0, len(byPlugin))
	for name := range byPlugin {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	embed := &plugin.Embed{
		Title:  r.settings.BotName() + " Commands",
		Footer: "Use " + prefix + "help <command> for details.",
	}
	for _, name := range groups {
		embed.Fields = append(embed.Fields, plugin.EmbedField{
			Name:  name,
			Value: strings.Join(byPlugin[name], "\n"),
		})
	}
	r.sendChat(msg.Location.ChannelID, plugin.SendEmbed(embed).WithExpire(helpExpire))
}

func (r *Router) visibleTo(cmd *registry.Command, actor message.Actor, loc message.Location) bool {
	if cmd.Hidden {
		return false
	}
	if loc.DM && !cmd.AllowDM {
		return false
	}
	return r.perms.HasAnyPermission(cmd.Permissions, actor, loc)
}

// consoleHelp lists every console command as plain text.
func (r *Router) consoleHelp(w ConsoleWriter) {
	prefix := r.settings.ConsolePrefix()
	var b strings.Builder
	b.WriteString("Terminal commands:\n")
	for _, cmd := range r.registry.Commands(plugin.SurfaceConsole) {
		if m, ok := r.registry.Descriptor(cmd.Plugin); ok && !m.Enabled {
			continue
		}
		b.WriteString("  " + prefix + cmd.Handler)
		if u := usageString(cmd); u != "" {
			b.WriteString(" " + u)
		}
		if cmd.Description != "" {
			b.WriteString(" - " + cmd.Description)
		}
		b.WriteString("\n")
	}
	w.Respond(strings.TrimRight(b.String(), "\n"))
}

// usageCard is the embed shown for misuse and explicit help requests.
func usageCard(cmd *registry.Command, prefix string) *plugin.Response {
	embed := &plugin.Embed{
		Title:       prefix + cmd.Handler,
		Description: cmd.Description,
	}
	if u := usageString(cmd); u != "" {
		embed.Fields = append(embed.Fields, plugin.EmbedField{
			Name:  "Usage",
			Value: "`" + prefix + cmd.Handler + " " + u + "`",
		})
	}
	return plugin.SendEmbed(embed)
}

// usageText is the plain-text usage card for the console surface.
func usageText(cmd *registry.Command, prefix string) string {
	line := "Usage: " + prefix + cmd.Handler
	if u := usageString(cmd); u != "" {
		line += " " + u
	}
	if cmd.Description != "" {
		line += "\n" + cmd.Description
	}
	return line
}

// usageString prefers the declared usage line, falling back to a synthesis
// from the positional parameter declarations.
func usageString(cmd *registry.Command) string {
	if cmd.Usage != "" {
		return cmd.Usage
	}
	var parts []string
	for _, p := range cmd.Params {
		if plugin.IsContextParam(p.Name) {
			continue
		}
		if p.HasDefault {
			parts = append(parts, "["+p.Name+"]")
		} else {
			parts = append(parts, "<"+p.Name+">")
		}
	}
	return strings.Join(parts, " ")
}

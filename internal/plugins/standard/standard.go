// Package standard contributes the core commands every install gets:
// ping, id, prefix management, process control and the console
// attachment commands.
package standard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

// Attacher is the console attachment surface the channel/guild/detach
// commands operate on.
type Attacher interface {
	Attach(loc message.Location)
	Detach()
	Attachment() (message.Location, bool)
}

type Plugin struct {
	rt      *plugin.Runtime
	console Attacher
	started time.Time
}

func New(console Attacher) *Plugin {
	return &Plugin{console: console, started: time.Now()}
}

func (p *Plugin) Init(rt *plugin.Runtime) error {
	p.rt = rt
	rt.Permissions.Register("check_id", true, "standard")
	return nil
}

func (p *Plugin) Manifest() plugin.Manifest {
	return plugin.Manifest{
		Name:        "standard",
		DisplayName: "Standard Commands",
		Enabled:     true,
		Commands: []plugin.CommandSpec{
			{
				Handler:     "ping",
				Surface:     plugin.SurfaceChat,
				Description: "Measure the bot's round-trip latency.",
				AllowDM:     true,
				Run:         p.ping,
			},
			{
				Handler:     "id",
				Surface:     plugin.SurfaceChat,
				Description: "Show the IDs behind a message and its mentions.",
				AllowDM:     true,
				Permissions: []string{"check_id"},
				Params:      []plugin.Param{plugin.P(plugin.ParamUserMentions), plugin.P(plugin.ParamChannelMentions)},
				Run:         p.id,
			},
			{
				Handler:     "uptime",
				Surface:     plugin.SurfaceChat,
				Description: "Show how long the bot has been running.",
				AllowDM:     true,
				Run:         p.uptime,
			},
			{
				Handler:     "prefix",
				Surface:     plugin.SurfaceChat,
				Description: "Change the command prefix.",
				Permissions: []string{"administrator", "owner"},
				Params:      []plugin.Param{plugin.P("new_prefix")},
				Run:         p.setPrefix,
			},
			{
				Handler:     "plugin",
				Surface:     plugin.SurfaceChat,
				Description: "Enable or disable a plugin in this guild.",
				Usage:       "<enable|disable|reset> <plugin>",
				Permissions: []string{"administrator", "manage_guild"},
				Params:      []plugin.Param{plugin.P("action"), plugin.P("plugin_name")},
				Run:         p.pluginOverride,
			},
			{
				Handler:     "shutdown",
				Surface:     plugin.SurfaceChat,
				Description: "Stop the bot.",
				Hidden:      true,
				AllowDM:     true,
				Permissions: []string{"owner"},
				Run:         p.shutdown,
			},
			{
				Handler:     "restart",
				Surface:     plugin.SurfaceChat,
				Description: "Restart the bot.",
				Hidden:      true,
				AllowDM:     true,
				Permissions: []string{"owner"},
				Run:         p.restart,
			},
			{
				Handler:     "shutdown",
				Surface:     plugin.SurfaceConsole,
				Description: "Stop the bot.",
				Run:         p.shutdown,
			},
			{
				Handler:     "restart",
				Surface:     plugin.SurfaceConsole,
				Description: "Restart the bot.",
				Run:         p.restart,
			},
			{
				Handler:     "channel",
				Surface:     plugin.SurfaceConsole,
				Description: "Attach the console to a channel.",
				Params:      []plugin.Param{plugin.P("channel")},
				Run:         p.attachChannel,
			},
			{
				Handler:     "guild",
				Surface:     plugin.SurfaceConsole,
				Description: "Attach the console to a guild.",
				Params:      []plugin.Param{plugin.P("guild_id")},
				Run:         p.attachGuild,
			},
			{
				Handler:     "detach",
				Surface:     plugin.SurfaceConsole,
				Description: "Detach the console.",
				Run:         p.detach,
			},
			{
				Handler:     "delete",
				Surface:     plugin.SurfaceConsole,
				Description: "Delete a message in the attached channel.",
				Params:      []plugin.Param{plugin.P("message_id")},
				Run:         p.deleteMessage,
			},
			{
				Handler:     "edit",
				Surface:     plugin.SurfaceConsole,
				Description: "Edit a bot message in the attached channel.",
				Params:      []plugin.Param{plugin.P("message_id"), plugin.P(plugin.ParamArgs)},
				Run:         p.editMessage,
			},
		},
	}
}

// ping sends a reply, then edits the measured round trip into it. The
// handler manages its own send so it can edit afterwards.
func (p *Plugin) ping(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	start := time.Now()
	id, err := p.rt.Gateway.SendMessage(call.Location.ChannelID, &plugin.Outgoing{
		Content: "Pong!",
		Expire:  10 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	latency := time.Since(start).Round(time.Millisecond)
	if err := p.rt.Gateway.EditMessage(call.Location.ChannelID, id, fmt.Sprintf("Pong! `%s`", latency)); err != nil {
		return nil, err
	}
	return nil, nil
}

func (p *Plugin) id(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	var lines []string
	lines = append(lines, fmt.Sprintf("Your ID: `%s`", call.Author.ID))
	lines = append(lines, fmt.Sprintf("Channel ID: `%s`", call.Location.ChannelID))
	if call.Location.GuildID != "" {
		lines = append(lines, fmt.Sprintf("Guild ID: `%s`", call.Location.GuildID))
	}
	for _, u := range call.UserMentions {
		lines = append(lines, fmt.Sprintf("%s: `%s`", u.DisplayName, u.ID))
	}
	for _, ch := range call.ChannelMentions {
		lines = append(lines, fmt.Sprintf("#%s: `%s`", ch.Name, ch.ID))
	}
	return plugin.Send(strings.Join(lines, "\n")), nil
}

func (p *Plugin) uptime(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return plugin.Send(fmt.Sprintf("Up for %s.", time.Since(p.started).Round(time.Second))), nil
}

func (p *Plugin) setPrefix(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	prefix := call.Value("new_prefix")
	if err := p.rt.Settings.SetPrefix(prefix); err != nil {
		return nil, err
	}
	return plugin.Send(fmt.Sprintf("Command prefix is now `%s`.", prefix)), nil
}

// pluginOverride writes the per-guild enablement override consulted ahead
// of a plugin's own defaults.
func (p *Plugin) pluginOverride(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	if call.Location.GuildID == "" {
		return plugin.Send("That command only works inside a guild."), nil
	}
	name := strings.ToLower(call.Value("plugin_name"))
	var state string
	switch strings.ToLower(call.Value("action")) {
	case "enable":
		state = "enabled"
	case "disable":
		state = "disabled"
	case "reset":
		state = ""
	default:
		return plugin.Help(), nil
	}
	if err := p.rt.Storage.SetPluginOverride(call.Location.GuildID, name, state); err != nil {
		return nil, err
	}
	if state == "" {
		return plugin.Send(fmt.Sprintf("Plugin `%s` reset to its defaults here.", name)), nil
	}
	return plugin.Send(fmt.Sprintf("Plugin `%s` is now %s in this guild.", name, state)), nil
}

func (p *Plugin) shutdown(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return plugin.Send("Shutting down."), plugin.ErrShutdown
}

func (p *Plugin) restart(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return plugin.Send("Restarting."), plugin.ErrRestart
}

// attachChannel points the console at a channel, resolving the token
// against the attached guild when there is one and falling back to a raw
// channel ID otherwise.
func (p *Plugin) attachChannel(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	token := call.Value("channel")
	if call.Location.GuildID != "" {
		if ch, ok := p.rt.Gateway.ChannelByToken(call.Location.GuildID, token); ok {
			p.console.Attach(message.GuildChannel(ch.ID, call.Location.GuildID, call.Location.GuildOwnerID))
			return plugin.Send(fmt.Sprintf("Attached to #%s.", ch.Name)), nil
		}
		return plugin.Send(fmt.Sprintf("No channel matching %q here.", token)), nil
	}
	p.console.Attach(message.Location{ChannelID: token})
	return plugin.Send(fmt.Sprintf("Attached to channel %s.", token)), nil
}

func (p *Plugin) attachGuild(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	guildID := call.Value("guild_id")
	if _, ok := p.rt.Gateway.BotMember(guildID); !ok {
		return plugin.Send(fmt.Sprintf("Not a member of guild %s.", guildID)), nil
	}
	p.console.Attach(message.Guild(guildID, ""))
	return plugin.Send(fmt.Sprintf("Attached to guild %s.", guildID)), nil
}

func (p *Plugin) detach(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	p.console.Detach()
	return plugin.Send("Detached."), nil
}

func (p *Plugin) deleteMessage(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	loc, ok := p.console.Attachment()
	if !ok || loc.ChannelID == "" {
		return plugin.Send("Not attached to a channel."), nil
	}
	if err := p.rt.Gateway.DeleteMessage(loc.ChannelID, call.Value("message_id")); err != nil {
		return nil, err
	}
	return plugin.Send("Deleted."), nil
}

func (p *Plugin) editMessage(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	loc, ok := p.console.Attachment()
	if !ok || loc.ChannelID == "" {
		return plugin.Send("Not attached to a channel."), nil
	}
	text := strings.Join(call.Args[1:], " ")
	if err := p.rt.Gateway.EditMessage(loc.ChannelID, call.Value("message_id"), text); err != nil {
		return nil, err
	}
	return plugin.Send("Edited."), nil
}

// Package custom contributes per-guild custom commands: a stored response
// keyed by a command word, matched by a message hook so the catalog stays
// static.
package custom

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

type Plugin struct {
	rt *plugin.Runtime
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Init(rt *plugin.Runtime) error {
	p.rt = rt
	return nil
}

func (p *Plugin) Manifest() plugin.Manifest {
	return plugin.Manifest{
		Name:        "custom",
		DisplayName: "Custom Commands",
		Enabled:     true,
		Commands: []plugin.CommandSpec{
			{
				Handler:     "customcreate",
				Surface:     plugin.SurfaceChat,
				Description: "Create a custom command for this guild.",
				Usage:       "<name> <response...>",
				Permissions: []string{"administrator", "manage_guild"},
				Params:      []plugin.Param{plugin.P("name"), plugin.P(plugin.ParamArgs)},
				Run:         p.create,
			},
			{
				Handler:     "customdelete",
				Surface:     plugin.SurfaceChat,
				Description: "Delete a custom command.",
				Usage:       "<name>",
				Permissions: []string{"administrator", "manage_guild"},
				Params:      []plugin.Param{plugin.P("name")},
				Run:         p.delete,
			},
			{
				Handler:     "customlist",
				Surface:     plugin.SurfaceChat,
				Description: "List this guild's custom commands.",
				Run:         p.list,
			},
		},
		Hooks: []plugin.HookSpec{
			{Event: plugin.EventMessageCreate, Run: p.onMessage},
		},
	}
}

func (p *Plugin) create(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	if call.Location.GuildID == "" {
		return plugin.Send("Custom commands live inside a guild."), nil
	}
	name := strings.ToLower(call.Value("name"))
	if len(call.Args) < 2 {
		return plugin.Help(), nil
	}
	response := strings.Join(call.Args[1:], " ")
	if err := p.rt.Storage.SetCustomCommand(call.Location.GuildID, name, response); err != nil {
		return plugin.Send(fmt.Sprintf("Could not create `%s`: %v", name, err)), nil
	}
	return plugin.Send(fmt.Sprintf("Custom command `%s` created.", name)), nil
}

func (p *Plugin) delete(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	if call.Location.GuildID == "" {
		return plugin.Send("Custom commands live inside a guild."), nil
	}
	name := strings.ToLower(call.Value("name"))
	if err := p.rt.Storage.DeleteCustomCommand(call.Location.GuildID, name); err != nil {
		return plugin.Send(fmt.Sprintf("Could not delete `%s`: %v", name, err)), nil
	}
	return plugin.Send(fmt.Sprintf("Custom command `%s` deleted.", name)), nil
}

func (p *Plugin) list(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	if call.Location.GuildID == "" {
		return plugin.Send("Custom commands live inside a guild."), nil
	}
	commands := p.rt.Storage.CustomCommands(call.Location.GuildID)
	if len(commands) == 0 {
		return plugin.Send("No custom commands here yet."), nil
	}
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, "`"+name+"`")
	}
	sort.Strings(names)
	return plugin.Send("Custom commands: " + strings.Join(names, ", ")), nil
}

// onMessage answers prefixed words that match a stored custom command.
// Registered commands win: the router matched them before this hook runs,
// and a stored name can shadow nothing because creation is free-form text.
func (p *Plugin) onMessage(ctx context.Context, ev *plugin.Event) error {
	msg := ev.Message()
	if msg == nil || msg.Author.Bot || msg.Location.GuildID == "" {
		return nil
	}
	prefix := p.rt.Settings.Prefix()
	if prefix == "" || !strings.HasPrefix(msg.Content, prefix) {
		return nil
	}
	fields := strings.Fields(strings.TrimPrefix(msg.Content, prefix))
	if len(fields) == 0 {
		return nil
	}
	response, ok := p.rt.Storage.CustomCommand(msg.Location.GuildID, strings.ToLower(fields[0]))
	if !ok {
		return nil
	}
	_, err := p.rt.Gateway.SendMessage(msg.Location.ChannelID, &plugin.Outgoing{
		Content: plugin.NeutralizeMentions(response),
	})
	return err
}

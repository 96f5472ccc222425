// Package moderation contributes the moderation log: a per-guild channel
// that receives deletion notices and moderator actions.
package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

type Plugin struct {
	rt *plugin.Runtime
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Init(rt *plugin.Runtime) error {
	p.rt = rt
	rt.Permissions.Register("manage_logs", false, "moderation")
	return nil
}

func (p *Plugin) Manifest() plugin.Manifest {
	return plugin.Manifest{
		Name:        "moderation",
		DisplayName: "Moderation",
		Enabled:     true,
		Commands: []plugin.CommandSpec{
			{
				Handler:     "modlog",
				Surface:     plugin.SurfaceChat,
				Description: "Set, show or clear this guild's moderation log channel.",
				Usage:       "[#channel|off]",
				Permissions: []string{"administrator", "manage_logs"},
				Params:      []plugin.Param{plugin.P(plugin.ParamChannelMentions), plugin.P(plugin.ParamArgs)},
				Run:         p.modlog,
			},
			{
				Handler:     "silence",
				Surface:     plugin.SurfaceChat,
				Description: "Stop the mentioned users from posting in this channel.",
				Usage:       "<@user>...",
				Permissions: []string{"administrator", "manage_messages"},
				Params:      []plugin.Param{plugin.P(plugin.ParamUserMentions)},
				Run:         p.silence,
			},
			{
				Handler:     "unsilence",
				Surface:     plugin.SurfaceChat,
				Description: "Let the mentioned users post in this channel again.",
				Usage:       "<@user>...",
				Permissions: []string{"administrator", "manage_messages"},
				Params:      []plugin.Param{plugin.P(plugin.ParamUserMentions)},
				Run:         p.unsilence,
			},
		},
		Hooks: []plugin.HookSpec{
			{Event: plugin.EventMessageDelete, Run: p.onMessageDelete},
		},
	}
}

// modlog with a channel mention sets the log channel, with "off" clears
// it, and with no arguments reports the current one.
func (p *Plugin) modlog(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	guildID := call.Location.GuildID
	if guildID == "" {
		return plugin.Send("That command only works inside a guild."), nil
	}

	if len(call.ChannelMentions) > 0 {
		ch := call.ChannelMentions[0]
		if err := p.rt.Storage.SetModLogChannel(guildID, ch.ID); err != nil {
			return nil, err
		}
		return plugin.Send(fmt.Sprintf("Moderation log set to <#%s>.", ch.ID)), nil
	}

	if len(call.Args) > 0 && call.Args[0] == "off" {
		if err := p.rt.Storage.ClearModLogChannel(guildID); err != nil {
			return nil, err
		}
		return plugin.Send("Moderation log disabled."), nil
	}

	if channelID, ok := p.rt.Storage.ModLogChannel(guildID); ok {
		return plugin.Send(fmt.Sprintf("Moderation log is <#%s>.", channelID)), nil
	}
	return plugin.Send("No moderation log configured. Mention a channel to set one."), nil
}

// silence writes a channel permission overwrite denying sends for each
// mentioned user, and records the action in the moderation log.
func (p *Plugin) silence(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return p.setSendOverwrite(call, 0, discordgo.PermissionSendMessages, "Silenced")
}

// unsilence neutralizes the overwrite again.
func (p *Plugin) unsilence(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return p.setSendOverwrite(call, 0, 0, "Unsilenced")
}

func (p *Plugin) setSendOverwrite(call *plugin.Call, allow, deny int64, verb string) (*plugin.Response, error) {
	if !call.Location.IsGuildChannel() {
		return plugin.Send("That command only works inside a guild channel."), nil
	}
	if len(call.UserMentions) == 0 {
		return plugin.Help(), nil
	}
	var names []string
	for _, u := range call.UserMentions {
		if err := p.rt.Gateway.SetChannelPermission(call.Location.ChannelID, u.ID, false, allow, deny); err != nil {
			return nil, err
		}
		names = append(names, u.DisplayName)
	}
	if logChannel, ok := p.rt.Storage.ModLogChannel(call.Location.GuildID); ok {
		_, _ = p.rt.Gateway.SendMessage(logChannel, &plugin.Outgoing{
			Content: fmt.Sprintf("%s %s in <#%s> by %s.", verb, strings.Join(names, ", "), call.Location.ChannelID, call.Author.DisplayName),
		})
	}
	return plugin.Send(fmt.Sprintf("%s %s.", verb, strings.Join(names, ", "))), nil
}

// onMessageDelete posts a deletion notice to the guild's log channel.
// Deletions inside the log channel itself are skipped to avoid loops.
func (p *Plugin) onMessageDelete(ctx context.Context, ev *plugin.Event) error {
	del, ok := ev.Payload.(*plugin.DeletedMessage)
	if !ok || del.Location.GuildID == "" {
		return nil
	}
	channelID, ok := p.rt.Storage.ModLogChannel(del.Location.GuildID)
	if !ok || channelID == del.Location.ChannelID {
		return nil
	}
	_, err := p.rt.Gateway.SendMessage(channelID, &plugin.Outgoing{
		Content: fmt.Sprintf("Message `%s` deleted in <#%s>.", del.MessageID, del.Location.ChannelID),
	})
	return err
}

// Package permsplugin contributes the commands that inspect and edit the
// permission overrides and the blacklist.
package permsplugin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/permissions"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

type Plugin struct {
	rt *plugin.Runtime
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Init(rt *plugin.Runtime) error {
	p.rt = rt
	rt.Permissions.Register("manage_extended_permissions", false, "permissions")
	return nil
}

func (p *Plugin) Manifest() plugin.Manifest {
	return plugin.Manifest{
		Name:        "permissions",
		DisplayName: "Permissions",
		Enabled:     true,
		Commands: []plugin.CommandSpec{
			{
				Handler:     "perms",
				Surface:     plugin.SurfaceChat,
				Description: "Show effective permissions for you or a mentioned user.",
				Usage:       "[@user]",
				Params:      []plugin.Param{plugin.P(plugin.ParamUserMentions)},
				Run:         p.view,
			},
			{
				Handler:     "setperm",
				Surface:     plugin.SurfaceChat,
				Description: "Write a permission override for the mentioned users or roles.",
				Usage:       "<guild|channel> <allow|deny|clear> <permission> <@user|@role>...",
				Permissions: []string{"administrator", "manage_extended_permissions"},
				Params: []plugin.Param{
					plugin.P("scope"), plugin.P("value"), plugin.P("permission"),
					plugin.P(plugin.ParamUserMentions), plugin.P(plugin.ParamRoleMentions),
				},
				Run: p.setPerm,
			},
			{
				Handler:     "blacklist",
				Surface:     plugin.SurfaceChat,
				Description: "Blacklist the mentioned users here, guild-wide or globally.",
				Usage:       "<@user>... [channel|guild|global]",
				Permissions: []string{"administrator"},
				Params:      []plugin.Param{plugin.P(plugin.ParamUserMentions), plugin.P(plugin.ParamArgs)},
				Run:         p.blacklist,
			},
			{
				Handler:     "unblacklist",
				Surface:     plugin.SurfaceChat,
				Description: "Lift a blacklist on the mentioned users.",
				Usage:       "<@user>... [channel|guild|global]",
				Permissions: []string{"administrator"},
				Params:      []plugin.Param{plugin.P(plugin.ParamUserMentions), plugin.P(plugin.ParamArgs)},
				Run:         p.unblacklist,
			},
			{
				Handler:     "whitelist",
				Surface:     plugin.SurfaceChat,
				Description: "Let a guild-blacklisted user back into this channel.",
				Usage:       "<@user>...",
				Permissions: []string{"administrator"},
				Params:      []plugin.Param{plugin.P(plugin.ParamUserMentions)},
				Run:         p.whitelist,
			},
			{
				Handler:     "unwhitelist",
				Surface:     plugin.SurfaceChat,
				Description: "Remove a channel whitelist entry for the mentioned users.",
				Usage:       "<@user>...",
				Permissions: []string{"administrator"},
				Params:      []plugin.Param{plugin.P(plugin.ParamUserMentions)},
				Run:         p.unwhitelist,
			},
		},
	}
}

func (p *Plugin) view(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	target := call.Author
	if len(call.UserMentions) > 0 {
		target = call.UserMentions[0]
	}
	report := p.rt.Permissions.AllPermissions(target, call.Location)

	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)

	var granted, denied []string
	for _, name := range names {
		if report[name] {
			granted = append(granted, name)
		} else {
			denied = append(denied, name)
		}
	}
	embed := &plugin.Embed{Title: "Permissions for " + target.DisplayName}
	if len(granted) > 0 {
		embed.Fields = append(embed.Fields, plugin.EmbedField{Name: "Granted", Value: strings.Join(granted, ", ")})
	}
	if len(denied) > 0 {
		embed.Fields = append(embed.Fields, plugin.EmbedField{Name: "Denied", Value: strings.Join(denied, ", ")})
	}
	return plugin.SendEmbed(embed), nil
}

func (p *Plugin) setPerm(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	scope := strings.ToLower(call.Value("scope"))
	value := strings.ToLower(call.Value("value"))
	perm := strings.ToLower(call.Value("permission"))

	if scope != "guild" && scope != "channel" {
		return plugin.Help(), nil
	}
	override, ok := map[string]int{
		"allow": permissions.OverrideAllow,
		"deny":  permissions.OverrideDeny,
		"clear": permissions.OverrideUnset,
	}[value]
	if !ok {
		return plugin.Help(), nil
	}
	if permissions.IsNativeName(perm) {
		return plugin.Send(fmt.Sprintf("`%s` is a native permission; manage it through your server settings.", perm)), nil
	}
	if !p.rt.Permissions.IsRegistered(perm) {
		return plugin.Send(fmt.Sprintf("Unknown permission `%s`.", perm)), nil
	}
	if len(call.UserMentions) == 0 && len(call.RoleMentions) == 0 {
		return plugin.Help(), nil
	}
	if call.Location.GuildID == "" {
		return plugin.Send("That command only works inside a guild."), nil
	}

	write := func(targetID string, isRole bool) error {
		if scope == "channel" {
			return p.rt.Permissions.SetChannel(call.Location.ChannelID, targetID, isRole, perm, override)
		}
		return p.rt.Permissions.SetGuild(call.Location.GuildID, targetID, isRole, perm, override)
	}
	count := 0
	for _, u := range call.UserMentions {
		if err := write(u.ID, false); err != nil {
			return nil, err
		}
		count++
	}
	for _, role := range call.RoleMentions {
		if err := write(role.ID, true); err != nil {
			return nil, err
		}
		count++
	}
	return plugin.Send(fmt.Sprintf("Updated `%s` (%s %s) for %d target(s).", perm, scope, value, count)), nil
}

// scopeLocation maps a blacklist scope word to the location the entry
// applies at. Global scope is owner-only.
func (p *Plugin) scopeLocation(scope string, call *plugin.Call) (message.Location, bool) {
	switch scope {
	case "channel":
		return call.Location, true
	case "guild":
		return message.Guild(call.Location.GuildID, call.Location.GuildOwnerID), true
	case "global":
		if !p.rt.Permissions.IsOwner(call.Author.ID) {
			return message.Location{}, false
		}
		return message.Location{}, true
	default:
		return message.Location{}, false
	}
}

func (p *Plugin) blacklist(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return p.editBlacklist(call, p.rt.Permissions.Blacklist, "Blacklisted")
}

func (p *Plugin) unblacklist(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return p.editBlacklist(call, p.rt.Permissions.Unblacklist, "Unblacklisted")
}

// blacklistScope finds the scope keyword in the raw argument list. Mention
// tokens stay in Args, so the keyword can sit anywhere after the mentions;
// absent a keyword the scope is the guild.
func blacklistScope(args []string) string {
	for _, arg := range args {
		switch word := strings.ToLower(arg); word {
		case "channel", "guild", "global":
			return word
		}
	}
	return "guild"
}

func (p *Plugin) editBlacklist(call *plugin.Call, apply func(string, message.Location) error, verb string) (*plugin.Response, error) {
	if len(call.UserMentions) == 0 {
		return plugin.Help(), nil
	}
	scope := blacklistScope(call.Args)
	loc, ok := p.scopeLocation(scope, call)
	if !ok {
		if scope == "global" {
			return plugin.Send("Only bot owners can change the global blacklist."), nil
		}
		return plugin.Help(), nil
	}
	var names []string
	for _, u := range call.UserMentions {
		if err := apply(u.ID, loc); err != nil {
			return nil, err
		}
		names = append(names, u.DisplayName)
	}
	return plugin.Send(fmt.Sprintf("%s %s (%s).", verb, strings.Join(names, ", "), scope)), nil
}

func (p *Plugin) whitelist(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return p.editWhitelist(call, p.rt.Permissions.Whitelist, "Whitelisted")
}

func (p *Plugin) unwhitelist(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	return p.editWhitelist(call, p.rt.Permissions.Unwhitelist, "Unwhitelisted")
}

func (p *Plugin) editWhitelist(call *plugin.Call, apply func(string, message.Location) error, verb string) (*plugin.Response, error) {
	if len(call.UserMentions) == 0 {
		return plugin.Help(), nil
	}
	if !call.Location.IsGuildChannel() {
		return plugin.Send("That command only works inside a guild channel."), nil
	}
	var names []string
	for _, u := range call.UserMentions {
		if err := apply(u.ID, call.Location); err != nil {
			return nil, err
		}
		names = append(names, u.DisplayName)
	}
	return plugin.Send(fmt.Sprintf("%s %s in this channel.", verb, strings.Join(names, ", "))), nil
}

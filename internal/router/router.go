// Package router parses incoming command text, gates it through the
// blacklist, enablement and permission layers, binds handler parameters
// and renders handler responses back to the invoking surface.
package router

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"github.com/GreenLED99/PlasmaBot/internal/config"
	"github.com/GreenLED99/PlasmaBot/internal/enablement"
	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/permissions"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/registry"
)

// ErrorLogger receives handler failures for out-of-band reporting. The
// Discord adapter posts them to the configured error-log channel.
type ErrorLogger interface {
	LogError(actor message.Actor, loc message.Location, input string, trace string)
}

// Router dispatches chat messages and console lines to registered
// commands.
type Router struct {
	registry *registry.Registry
	perms    *permissions.Store
	filter   *enablement.Filter
	settings *config.Settings
	gateway  plugin.Gateway
	errlog   ErrorLogger

	signals chan error
	selfID  string
}

func New(reg *registry.Registry, perms *permissions.Store, filter *enablement.Filter, settings *config.Settings, gateway plugin.Gateway) *Router {
	return &Router{
		registry: reg,
		perms:    perms,
		filter:   filter,
		settings: settings,
		gateway:  gateway,
		signals:  make(chan error, 1),
	}
}

// SetErrorLogger wires the out-of-band failure reporter.
func (r *Router) SetErrorLogger(el ErrorLogger) { r.errlog = el }

// SetSelfID records the bot's own user ID so its messages are ignored.
func (r *Router) SetSelfID(id string) { r.selfID = id }

// Signals delivers shutdown and restart requests raised by handlers.
func (r *Router) Signals() <-chan error { return r.signals }

// DispatchMessage routes one incoming chat message. Non-command messages
// and messages from the bot itself return without effect.
func (r *Router) DispatchMessage(ctx context.Context, msg *message.Incoming) {
	if msg == nil || msg.Author.ID == r.selfID || msg.Author.Bot {
		return
	}
	if msg.Location.GuildID != "" && r.settings.GuildBlacklisted(msg.Location.GuildID) {
		return
	}
	if r.perms.IsBlacklisted(msg.Author.ID, msg.Location) {
		return
	}

	prefix := r.settings.Prefix()
	if prefix == "" || !strings.HasPrefix(msg.Content, prefix) {
		return
	}
	body := strings.TrimSpace(strings.TrimPrefix(msg.Content, prefix))
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return
	}
	handler := strings.ToLower(fields[0])
	args := fields[1:]

	if handler == "help" {
		r.chatHelp(ctx, msg, args)
		return
	}

	cmd, ok := r.registry.Lookup(handler, plugin.SurfaceChat)
	if !ok {
		// Unmatched chat input stays silent; the prefix may be shared
		// with other bots.
		return
	}

	if !r.filter.IsEnabled(cmd.Plugin, msg.Location) {
		return
	}

	// Hidden commands can mute their refusals, but never their usage
	// cards: a caller who got far enough to misuse one should see how.
	muted := cmd.Hidden && r.settings.MuteHidden()

	if msg.Location.DM && !cmd.AllowDM {
		if !muted {
			r.sendChat(msg.Location.ChannelID, plugin.Send("That command does not work in direct messages."))
		}
		return
	}

	if !r.perms.HasAnyPermission(cmd.Permissions, msg.Author, msg.Location) {
		if !muted {
			r.sendChat(msg.Location.ChannelID, plugin.Send(deniedMessage(cmd.Permissions)))
		}
		return
	}

	call, missing := r.bindChat(cmd, msg, body, args)
	if missing != "" {
		r.sendChat(msg.Location.ChannelID, usageCard(cmd, r.settings.Prefix()))
		return
	}

	resp, err := r.invoke(ctx, cmd, call, msg.Author, msg.Location, msg.Content)
	if err != nil && !plugin.IsControlSignal(err) {
		return
	}
	// Control signals still render their farewell response.
	r.renderChat(cmd, msg.Location.ChannelID, resp)
}

// invoke runs a handler with panic isolation. Control signals are routed
// to the signals channel and reported as handled; other errors go to the
// error logger.
func (r *Router) invoke(ctx context.Context, cmd *registry.Command, call *plugin.Call, actor message.Actor, loc message.Location, input string) (resp *plugin.Response, err error) {
	if cmd.Run == nil {
		return nil, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERR] Command %s panicked: %v", cmd.Handler, rec)
			r.reportError(actor, loc, input, fmt.Sprintf("panic: %v\n%s", rec, debug.Stack()))
			resp, err = nil, fmt.Errorf("command %s panicked", cmd.Handler)
		}
	}()

	resp, err = cmd.Run(ctx, call)
	if err != nil {
		if plugin.IsControlSignal(err) {
			select {
			case r.signals <- err:
			default:
			}
			return resp, err
		}
		log.Printf("[ERR] Command %s failed: %v", cmd.Handler, err)
		r.reportError(actor, loc, input, err.Error())
	}
	return resp, err
}

func (r *Router) reportError(actor message.Actor, loc message.Location, input, trace string) {
	if r.errlog != nil {
		r.errlog.LogError(actor, loc, input, trace)
	}
}

// renderChat sends a handler response to the invoking channel.
func (r *Router) renderChat(cmd *registry.Command, channelID string, resp *plugin.Response) {
	if resp == nil {
		return
	}
	if resp.Kind == plugin.RespondHelp {
		r.sendChat(channelID, usageCard(cmd, r.settings.Prefix()))
		return
	}
	r.sendChat(channelID, resp)
}

func (r *Router) sendChat(channelID string, resp *plugin.Response) {
	out := &plugin.Outgoing{
		Content:       resp.Content,
		Embed:         resp.Embed,
		Expire:        resp.Expire,
		AllowMentions: resp.AllowMentions,
	}
	if !resp.AllowMentions {
		out.Content = plugin.NeutralizeMentions(out.Content)
		out.Embed = neutralizeEmbed(out.Embed)
	}
	if _, err := r.gateway.SendMessage(channelID, out); err != nil {
		log.Printf("[WARN] Failed to send response to %s: %v", channelID, err)
	}
}

func neutralizeEmbed(e *plugin.Embed) *plugin.Embed {
	if e == nil {
		return nil
	}
	clean := *e
	clean.Title = plugin.NeutralizeMentions(e.Title)
	clean.Description = plugin.NeutralizeMentions(e.Description)
	clean.Footer = plugin.NeutralizeMentions(e.Footer)
	clean.Fields = make([]plugin.EmbedField, len(e.Fields))
	for i, f := range e.Fields {
		clean.Fields[i] = plugin.EmbedField{
			Name:   plugin.NeutralizeMentions(f.Name),
			Value:  plugin.NeutralizeMentions(f.Value),
			Inline: f.Inline,
		}
	}
	return &clean
}

// deniedMessage names the permissions that would have allowed the call.
func deniedMessage(names []string) string {
	return fmt.Sprintf("You need the %s permission to do that.", joinOr(names))
}

func joinOr(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
	}
}

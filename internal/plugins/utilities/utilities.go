// Package utilities contributes small quality-of-life commands, currently
// the away marker.
package utilities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/storage"
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
		Name:        "utilities",
		DisplayName: "Utilities",
		Enabled:     true,
		Commands: []plugin.CommandSpec{
			{
				Handler:     "afk",
				Surface:     plugin.SurfaceChat,
				Description: "Mark yourself away, with an optional message.",
				Usage:       "[message]",
				AllowDM:     false,
				Params:      []plugin.Param{plugin.P(plugin.ParamContent)},
				Run:         p.afk,
			},
		},
		Hooks: []plugin.HookSpec{
			{Event: plugin.EventMessageCreate, Run: p.onMessage},
		},
	}
}

func (p *Plugin) afk(ctx context.Context, call *plugin.Call) (*plugin.Response, error) {
	state := storage.AFKState{Message: call.Content, Since: call.Now}
	if err := p.rt.Storage.SetAFK(call.Author.ID, state); err != nil {
		return nil, err
	}
	if call.Content != "" {
		return plugin.Send(fmt.Sprintf("%s is now away: %s", call.Author.DisplayName, call.Content)), nil
	}
	return plugin.Send(fmt.Sprintf("%s is now away.", call.Author.DisplayName)), nil
}

// onMessage clears the author's away state on any non-command message and
// answers mentions of away users with their message.
func (p *Plugin) onMessage(ctx context.Context, ev *plugin.Event) error {
	msg := ev.Message()
	if msg == nil || msg.Author.Bot {
		return nil
	}
	prefix := p.rt.Settings.Prefix()
	isCommand := prefix != "" && strings.HasPrefix(msg.Content, prefix)

	if !isCommand {
		if p.rt.Storage.ClearAFK(msg.Author.ID) {
			_, err := p.rt.Gateway.SendMessage(msg.Location.ChannelID, &plugin.Outgoing{
				Content: fmt.Sprintf("Welcome back, %s.", msg.Author.DisplayName),
				Expire:  10 * time.Second,
			})
			if err != nil {
				return err
			}
		}
	}

	for _, mentioned := range msg.UserMentions {
		state, ok := p.rt.Storage.AFK(mentioned.ID)
		if !ok {
			continue
		}
		away := fmt.Sprintf("%s is away (since %s).", mentioned.DisplayName, state.Since.Format("15:04 MST"))
		if state.Message != "" {
			away = fmt.Sprintf("%s is away: %s", mentioned.DisplayName, state.Message)
		}
		if _, err := p.rt.Gateway.SendMessage(msg.Location.ChannelID, &plugin.Outgoing{
			Content: away,
			Expire:  15 * time.Second,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Package dispatcher fans gateway events out to the command router and to
// plugin event hooks, tracking every spawned handler so shutdown can drain
// them.
package dispatcher

import (
	"context"
	"log"
	"runtime/debug"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/GreenLED99/PlasmaBot/internal/enablement"
	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/registry"
	"github.com/GreenLED99/PlasmaBot/internal/router"
)

// locationFor extracts the location of each event kind. Events absent from
// the table have no location and skip enablement filtering.
var locationFor = map[string]func(payload any) (message.Location, bool){
	plugin.EventMessageCreate: func(p any) (message.Location, bool) {
		if m, ok := p.(*message.Incoming); ok {
			return m.Location, true
		}
		return message.Location{}, false
	},
	plugin.EventMessageDelete: func(p any) (message.Location, bool) {
		if d, ok := p.(*plugin.DeletedMessage); ok {
			return d.Location, true
		}
		return message.Location{}, false
	},
	plugin.EventMessageReactionAdd: func(p any) (message.Location, bool) {
		if rx, ok := p.(*plugin.ReactionEvent); ok {
			return rx.Location, true
		}
		return message.Location{}, false
	},
	plugin.EventGuildMemberAdd:    memberLocation,
	plugin.EventGuildMemberRemove: memberLocation,
	plugin.EventTypingStart: func(p any) (message.Location, bool) {
		if t, ok := p.(*plugin.TypingEvent); ok {
			return t.Location, true
		}
		return message.Location{}, false
	},
	plugin.EventPresenceUpdate: func(p any) (message.Location, bool) {
		if pr, ok := p.(*plugin.PresenceEvent); ok {
			return message.Guild(pr.GuildID, ""), true
		}
		return message.Location{}, false
	},
}

func memberLocation(p any) (message.Location, bool) {
	if m, ok := p.(*plugin.MemberEvent); ok {
		return message.Guild(m.GuildID, m.GuildOwnerID), true
	}
	return message.Location{}, false
}

// Dispatcher routes events concurrently, one goroutine per hook, all of
// them tracked by a single group so Wait can drain in-flight work.
type Dispatcher struct {
	registry *registry.Registry
	filter   *enablement.Filter
	router   *router.Router
	group    errgroup.Group
}

func New(reg *registry.Registry, filter *enablement.Filter, rt *router.Router) *Dispatcher {
	return &Dispatcher{registry: reg, filter: filter, router: rt}
}

// Dispatch delivers one gateway event. The command router always sees
// message_create first, regardless of which plugins hook it; each matching
// hook then runs in its own tracked goroutine, gated by enablement when
// the event carries a location.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, payload any) {
	name = strings.ToLower(name)

	loc, hasLoc := message.Location{}, false
	if extract, ok := locationFor[name]; ok {
		loc, hasLoc = extract(payload)
	}

	if name == plugin.EventMessageCreate {
		if msg, ok := payload.(*message.Incoming); ok {
			d.group.Go(func() error {
				d.router.DispatchMessage(ctx, msg)
				return nil
			})
		}
	}

	ev := &plugin.Event{Name: name, Location: loc, Payload: payload}
	for _, hook := range d.registry.Hooks(name) {
		if hasLoc && !loc.IsZero() && !d.filter.IsEnabled(hook.Plugin, loc) {
			continue
		}
		hook := hook
		d.group.Go(func() error {
			d.runHook(ctx, hook, ev)
			return nil
		})
	}
}

// runHook isolates one hook invocation: a panic or error is logged and
// never disturbs sibling hooks.
func (d *Dispatcher) runHook(ctx context.Context, hook *registry.Hook, ev *plugin.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERR] Event hook %s/%s panicked: %v\n%s", hook.Plugin, ev.Name, rec, debug.Stack())
		}
	}()
	if err := hook.Run(ctx, ev); err != nil {
		if plugin.IsControlSignal(err) {
			// Hooks have no business stopping the process.
			log.Printf("[WARN] Event hook %s/%s returned a control signal, ignoring", hook.Plugin, ev.Name)
			return
		}
		log.Printf("[ERR] Event hook %s/%s failed: %v", hook.Plugin, ev.Name, err)
	}
}

// Wait blocks until every spawned handler has returned.
func (d *Dispatcher) Wait() {
	if err := d.group.Wait(); err != nil {
		log.Printf("[WARN] Dispatcher drained with error: %v", err)
	}
}

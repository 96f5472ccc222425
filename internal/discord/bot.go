// Package discord adapts the Discord gateway to the transport-neutral
// dispatch core: it converts gateway events into message types, implements
// the outbound Gateway interface and backs native permission lookups with
// the session state.
package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/GreenLED99/PlasmaBot/internal/config"
	"github.com/GreenLED99/PlasmaBot/internal/dispatcher"
	"github.com/GreenLED99/PlasmaBot/internal/router"
)

// Bot owns the Discord session and feeds its events to the dispatcher.
type Bot struct {
	dg     *discordgo.Session
	cfg    *config.Config
	sender *Sender

	dispatch *dispatcher.Dispatcher
	router   *router.Router
}

// New creates the session without opening it, so the outbound gateway can
// be handed to plugins before the first event arrives.
func New(cfg *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll
	dg.State.TrackMembers = true
	dg.State.TrackRoles = true
	dg.State.TrackChannels = true

	b := &Bot{dg: dg, cfg: cfg}
	b.sender = newSender(dg)
	return b, nil
}

// Gateway returns the outbound transport for plugins and the router.
func (b *Bot) Gateway() *Sender { return b.sender }

// NativeResolver backs transport-native permission checks.
func (b *Bot) NativeResolver() *Resolver { return &Resolver{dg: b.dg} }

// ErrorLogger posts handler failures to the configured error-log channel.
func (b *Bot) ErrorLogger() *ErrorLog {
	return &ErrorLog{sender: b.sender, channelID: b.cfg.ErrorLogChannel}
}

// Run opens the session and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context, d *dispatcher.Dispatcher, rt *router.Router) error {
	b.dispatch = d
	b.router = rt

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onMessageDelete)
	b.dg.AddHandler(b.onMessageReactionAdd)
	b.dg.AddHandler(b.onGuildMemberAdd)
	b.dg.AddHandler(b.onGuildMemberRemove)
	b.dg.AddHandler(b.onTypingStart)
	b.dg.AddHandler(b.onPresenceUpdate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Closing Discord session...")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.router.SetSelfID(r.User.ID)
	log.Printf("[INFO] Logged in as %s#%s (%d guild(s))", r.User.Username, r.User.Discriminator, len(r.Guilds))
	b.dispatch.Dispatch(context.Background(), "ready", nil)
}

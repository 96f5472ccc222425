// Package console runs the local operator terminal: a stdin loop that
// routes prefixed lines to console commands and relays everything else to
// the attached chat channel.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/GreenLED99/PlasmaBot/internal/config"
	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/router"
)

// Console is the operator surface. It implements router.ConsoleWriter for
// its own dispatches and keeps the channel attachment commands operate on.
type Console struct {
	router   *router.Router
	settings *config.Settings
	gateway  plugin.Gateway
	in       io.Reader
	out      io.Writer

	mu       sync.Mutex
	attach   message.Location
	attached bool
}

func New(rt *router.Router, settings *config.Settings, gateway plugin.Gateway, in io.Reader, out io.Writer) *Console {
	return &Console{router: rt, settings: settings, gateway: gateway, in: in, out: out}
}

// Attach points the console at a chat location. Guild-wide attachments
// allow guild-scope commands but not plain relays.
func (c *Console) Attach(loc message.Location) {
	c.mu.Lock()
	c.attach, c.attached = loc, true
	c.mu.Unlock()
	if loc.ChannelID != "" {
		if err := c.settings.SetConsoleChannel(loc.ChannelID); err != nil {
			log.Printf("[WARN] Failed to persist console attachment: %v", err)
		}
	}
}

// Detach clears the attachment.
func (c *Console) Detach() {
	c.mu.Lock()
	c.attach, c.attached = message.Location{}, false
	c.mu.Unlock()
	if err := c.settings.SetConsoleChannel(""); err != nil {
		log.Printf("[WARN] Failed to clear console attachment: %v", err)
	}
}

// Attachment returns the current attachment, if any.
func (c *Console) Attachment() (message.Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attach, c.attached
}

// Respond implements router.ConsoleWriter.
func (c *Console) Respond(text string) {
	fmt.Fprintln(c.out, text)
}

// Warn implements router.ConsoleWriter.
func (c *Console) Warn(text string) {
	fmt.Fprintln(c.out, "[!] "+text)
}

// Run reads operator input until ctx is cancelled or stdin closes. Lines
// starting with the console prefix dispatch as commands; anything else is
// relayed verbatim to the attached channel.
func (c *Console) Run(ctx context.Context) {
	// Restore the last attachment so a restart keeps the operator's place.
	if id := c.settings.ConsoleChannel(); id != "" {
		c.mu.Lock()
		c.attach, c.attached = message.Location{ChannelID: id}, true
		c.mu.Unlock()
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			log.Printf("[WARN] Console input closed: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			c.handle(ctx, strings.TrimSpace(line))
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) {
	if line == "" {
		return
	}
	prefix := c.settings.ConsolePrefix()
	if prefix != "" && strings.HasPrefix(line, prefix) {
		loc, _ := c.Attachment()
		c.router.DispatchConsole(ctx, strings.TrimPrefix(line, prefix), loc, c)
		return
	}

	loc, ok := c.Attachment()
	if !ok || loc.ChannelID == "" {
		c.Warn("Not attached to a channel. Use " + prefix + "channel first.")
		return
	}
	if _, err := c.gateway.SendMessage(loc.ChannelID, &plugin.Outgoing{Content: line, AllowMentions: true}); err != nil {
		c.Warn("Failed to send: " + err.Error())
	}
}

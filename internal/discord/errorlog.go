package discord

import (
	"fmt"
	"log"
	"time"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

const traceLimit = 1000

// ErrorLog posts handler failures as embeds to a dedicated channel, so
// operators see tracebacks without tailing the process log.
type ErrorLog struct {
	sender    *Sender
	channelID string
}

// LogError implements router.ErrorLogger. Posting is skipped when no
// channel is configured or when the failure happened in the error-log
// channel itself.
func (e *ErrorLog) LogError(actor message.Actor, loc message.Location, input string, trace string) {
	if e.channelID == "" || e.channelID == loc.ChannelID {
		return
	}
	if len(trace) > traceLimit {
		trace = trace[:traceLimit] + "\n...(truncated)"
	}
	embed := &plugin.Embed{
		Title: "Command error",
		Fields: []plugin.EmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", actor.DisplayName, actor.ID), Inline: true},
			{Name: "Location", Value: locationLabel(loc), Inline: true},
			{Name: "Input", Value: "```\n" + input + "\n```"},
			{Name: "Trace", Value: "```\n" + trace + "\n```"},
		},
		Footer: time.Now().UTC().Format(time.RFC1123),
	}
	if _, err := e.sender.SendMessage(e.channelID, &plugin.Outgoing{Embed: embed}); err != nil {
		log.Printf("[WARN] Failed to post to error-log channel: %v", err)
	}
}

func locationLabel(loc message.Location) string {
	switch {
	case loc.DM:
		return "DM " + loc.ChannelID
	case loc.IsGuildChannel():
		return fmt.Sprintf("<#%s> in guild %s", loc.ChannelID, loc.GuildID)
	case loc.IsGuild():
		return "guild " + loc.GuildID
	default:
		return "console"
	}
}

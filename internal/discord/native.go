package discord

import "github.com/bwmarrin/discordgo"

// Resolver computes native channel permissions from the session state.
type Resolver struct {
	dg *discordgo.Session
}

func (r *Resolver) UserChannelPermissions(userID, channelID string) (int64, error) {
	return r.dg.UserChannelPermissions(userID, channelID)
}

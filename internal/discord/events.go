package discord

import (
	"context"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

var channelMentionRe = regexp.MustCompile(`<#(\d+)>`)

// locationOf resolves where a gateway event happened. An empty guild ID
// means a direct-message channel.
func (b *Bot) locationOf(channelID, guildID string) message.Location {
	if guildID == "" {
		return message.DirectMessage(channelID)
	}
	ownerID := ""
	if g, err := b.dg.State.Guild(guildID); err == nil {
		ownerID = g.OwnerID
	}
	return message.GuildChannel(channelID, guildID, ownerID)
}

// actorOf builds a transport-neutral actor with resolved role positions.
func (b *Bot) actorOf(guildID string, user *discordgo.User, member *discordgo.Member) message.Actor {
	if user == nil {
		return message.Actor{}
	}
	actor := message.Actor{
		ID:          user.ID,
		DisplayName: user.Username,
		Bot:         user.Bot,
	}
	if member != nil && member.Nick != "" {
		actor.DisplayName = member.Nick
	}
	if member != nil && guildID != "" {
		if g, err := b.dg.State.Guild(guildID); err == nil {
			for _, roleID := range member.Roles {
				for _, role := range g.Roles {
					if role.ID == roleID {
						actor.Roles = append(actor.Roles, message.Role{
							ID:       role.ID,
							Name:     role.Name,
							Position: role.Position,
						})
						break
					}
				}
			}
		}
	}
	return actor
}

// toIncoming converts a gateway message into the neutral form the router
// consumes. Channel mentions are parsed from the raw content because the
// gateway does not deliver them as entities.
func (b *Bot) toIncoming(m *discordgo.Message) *message.Incoming {
	loc := b.locationOf(m.ChannelID, m.GuildID)

	in := &message.Incoming{
		ID:        m.ID,
		Location:  loc,
		Author:    b.actorOf(m.GuildID, m.Author, m.Member),
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	for _, u := range m.Mentions {
		member, _ := b.dg.State.Member(m.GuildID, u.ID)
		in.UserMentions = append(in.UserMentions, b.actorOf(m.GuildID, u, member))
	}
	if m.GuildID != "" {
		if g, err := b.dg.State.Guild(m.GuildID); err == nil {
			for _, roleID := range m.MentionRoles {
				for _, role := range g.Roles {
					if role.ID == roleID {
						in.RoleMentions = append(in.RoleMentions, message.Role{
							ID:       role.ID,
							Name:     role.Name,
							Position: role.Position,
						})
						break
					}
				}
			}
		}
	}
	for _, match := range channelMentionRe.FindAllStringSubmatch(m.Content, -1) {
		ref := message.ChannelRef{ID: match[1]}
		if ch, err := b.dg.State.Channel(match[1]); err == nil {
			ref.Name = ch.Name
		}
		in.ChannelMentions = append(in.ChannelMentions, ref)
	}
	return in
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	b.dispatch.Dispatch(context.Background(), plugin.EventMessageCreate, b.toIncoming(m.Message))
}

func (b *Bot) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	b.dispatch.Dispatch(context.Background(), plugin.EventMessageDelete, &plugin.DeletedMessage{
		Location:  b.locationOf(m.ChannelID, m.GuildID),
		MessageID: m.ID,
	})
}

func (b *Bot) onMessageReactionAdd(s *discordgo.Session, m *discordgo.MessageReactionAdd) {
	member, _ := b.dg.State.Member(m.GuildID, m.UserID)
	var user *discordgo.User
	if member != nil {
		user = member.User
	} else {
		user = &discordgo.User{ID: m.UserID}
	}
	b.dispatch.Dispatch(context.Background(), plugin.EventMessageReactionAdd, &plugin.ReactionEvent{
		Location:  b.locationOf(m.ChannelID, m.GuildID),
		MessageID: m.MessageID,
		Emoji:     m.Emoji.Name,
		User:      b.actorOf(m.GuildID, user, member),
	})
}

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	b.dispatch.Dispatch(context.Background(), plugin.EventGuildMemberAdd, b.memberEvent(m.GuildID, m.Member))
}

func (b *Bot) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	b.dispatch.Dispatch(context.Background(), plugin.EventGuildMemberRemove, b.memberEvent(m.GuildID, m.Member))
}

func (b *Bot) memberEvent(guildID string, m *discordgo.Member) *plugin.MemberEvent {
	ownerID := ""
	if g, err := b.dg.State.Guild(guildID); err == nil {
		ownerID = g.OwnerID
	}
	return &plugin.MemberEvent{
		GuildID:      guildID,
		GuildOwnerID: ownerID,
		Member:       b.actorOf(guildID, m.User, m),
	}
}

func (b *Bot) onTypingStart(s *discordgo.Session, t *discordgo.TypingStart) {
	member, _ := b.dg.State.Member(t.GuildID, t.UserID)
	var user *discordgo.User
	if member != nil {
		user = member.User
	} else {
		user = &discordgo.User{ID: t.UserID}
	}
	b.dispatch.Dispatch(context.Background(), plugin.EventTypingStart, &plugin.TypingEvent{
		Location: b.locationOf(t.ChannelID, t.GuildID),
		User:     b.actorOf(t.GuildID, user, member),
	})
}

func (b *Bot) onPresenceUpdate(s *discordgo.Session, p *discordgo.PresenceUpdate) {
	b.dispatch.Dispatch(context.Background(), plugin.EventPresenceUpdate, &plugin.PresenceEvent{
		GuildID: p.GuildID,
		UserID:  p.User.ID,
		Status:  string(p.Status),
	})
}

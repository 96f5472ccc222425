package discord

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/GreenLED99/PlasmaBot/internal/message"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
)

var (
	userTokenRe = regexp.MustCompile(`^<@!?(\d+)>$`)
	roleTokenRe = regexp.MustCompile(`^<@&(\d+)>$`)
	chanTokenRe = regexp.MustCompile(`^<#(\d+)>$`)
	snowflakeRe = regexp.MustCompile(`^\d+$`)
)

// Sender implements the outbound Gateway against a live session. Sends are
// rate limited below the gateway's global ceiling so bursts of expiring
// replies cannot trip it.
type Sender struct {
	dg      *discordgo.Session
	limiter *rate.Limiter
}

func newSender(dg *discordgo.Session) *Sender {
	return &Sender{
		dg:      dg,
		limiter: rate.NewLimiter(rate.Every(time.Second/4), 4),
	}
}

// SendMessage sends to a channel and returns the new message ID. A
// positive Expire schedules the message's own deletion.
func (s *Sender) SendMessage(channelID string, out *plugin.Outgoing) (string, error) {
	if err := s.limiter.Wait(context.Background()); err != nil {
		return "", err
	}
	send := &discordgo.MessageSend{Content: out.Content}
	if out.Embed != nil {
		send.Embed = toDiscordEmbed(out.Embed)
	}
	if !out.AllowMentions {
		send.AllowedMentions = &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{
				discordgo.AllowedMentionTypeUsers,
				discordgo.AllowedMentionTypeRoles,
			},
		}
	}
	msg, err := s.dg.ChannelMessageSendComplex(channelID, send)
	if err != nil {
		return "", err
	}
	if out.Expire > 0 {
		s.expireAfter(channelID, msg.ID, out.Expire)
	}
	return msg.ID, nil
}

func (s *Sender) expireAfter(channelID, messageID string, d time.Duration) {
	time.AfterFunc(d, func() {
		if err := s.dg.ChannelMessageDelete(channelID, messageID); err != nil {
			log.Printf("[WARN] Failed to expire message %s: %v", messageID, err)
		}
	})
}

func (s *Sender) EditMessage(channelID, messageID, content string) error {
	_, err := s.dg.ChannelMessageEdit(channelID, messageID, content)
	return err
}

func (s *Sender) DeleteMessage(channelID, messageID string) error {
	return s.dg.ChannelMessageDelete(channelID, messageID)
}

// DirectMessage opens (or reuses) a DM channel with a user and sends.
func (s *Sender) DirectMessage(userID string, out *plugin.Outgoing) (string, error) {
	ch, err := s.dg.UserChannelCreate(userID)
	if err != nil {
		return "", err
	}
	return s.SendMessage(ch.ID, out)
}

// SetChannelPermission writes a native channel permission overwrite.
func (s *Sender) SetChannelPermission(channelID, targetID string, targetIsRole bool, allow, deny int64) error {
	kind := discordgo.PermissionOverwriteTypeMember
	if targetIsRole {
		kind = discordgo.PermissionOverwriteTypeRole
	}
	return s.dg.ChannelPermissionSet(channelID, targetID, kind, allow, deny)
}

// BotMember resolves the bot's own member object in a guild.
func (s *Sender) BotMember(guildID string) (message.Actor, bool) {
	if s.dg.State.User == nil {
		return message.Actor{}, false
	}
	member, err := s.dg.State.Member(guildID, s.dg.State.User.ID)
	if err != nil {
		return message.Actor{}, false
	}
	return s.memberActor(guildID, member), true
}

// MemberByToken resolves a console argument (mention, ID or name) to a
// guild member.
func (s *Sender) MemberByToken(guildID, token string) (message.Actor, bool) {
	g, err := s.dg.State.Guild(guildID)
	if err != nil {
		return message.Actor{}, false
	}
	id := token
	if m := userTokenRe.FindStringSubmatch(token); m != nil {
		id = m[1]
	}
	for _, member := range g.Members {
		if member.User == nil {
			continue
		}
		if member.User.ID == id && snowflakeRe.MatchString(id) {
			return s.memberActor(guildID, member), true
		}
		if strings.EqualFold(member.User.Username, token) || strings.EqualFold(member.Nick, token) {
			return s.memberActor(guildID, member), true
		}
	}
	return message.Actor{}, false
}

func (s *Sender) RoleByToken(guildID, token string) (message.Role, bool) {
	g, err := s.dg.State.Guild(guildID)
	if err != nil {
		return message.Role{}, false
	}
	id := token
	if m := roleTokenRe.FindStringSubmatch(token); m != nil {
		id = m[1]
	}
	for _, role := range g.Roles {
		if role.ID == id || strings.EqualFold(role.Name, token) {
			return message.Role{ID: role.ID, Name: role.Name, Position: role.Position}, true
		}
	}
	return message.Role{}, false
}

func (s *Sender) ChannelByToken(guildID, token string) (message.ChannelRef, bool) {
	g, err := s.dg.State.Guild(guildID)
	if err != nil {
		return message.ChannelRef{}, false
	}
	id := token
	if m := chanTokenRe.FindStringSubmatch(token); m != nil {
		id = m[1]
	}
	for _, ch := range g.Channels {
		if ch.ID == id || strings.EqualFold(ch.Name, strings.TrimPrefix(token, "#")) {
			return message.ChannelRef{ID: ch.ID, Name: ch.Name}, true
		}
	}
	return message.ChannelRef{}, false
}

func (s *Sender) memberActor(guildID string, member *discordgo.Member) message.Actor {
	actor := message.Actor{}
	if member.User != nil {
		actor.ID = member.User.ID
		actor.DisplayName = member.User.Username
		actor.Bot = member.User.Bot
	}
	if member.Nick != "" {
		actor.DisplayName = member.Nick
	}
	if g, err := s.dg.State.Guild(guildID); err == nil {
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
	return actor
}

func toDiscordEmbed(e *plugin.Embed) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if e.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	return embed
}

package config

import "github.com/GreenLED99/PlasmaBot/internal/storage"

// Setting keys. Values live in storage so edits take effect on the next
// message without a restart.
const (
	keyPrefix         = "presence.prefix"
	keyConsolePrefix  = "console.prefix"
	keyMuteHidden     = "commands.mute-hidden"
	keyConsoleChannel = "console.channel"
)

// Settings reads live settings through storage on every call, falling back
// to the static config defaults. Nothing here is cached.
type Settings struct {
	store    *storage.Storage
	defaults *Config
}

func NewSettings(store *storage.Storage, defaults *Config) *Settings {
	return &Settings{store: store, defaults: defaults}
}

// BotName is static; it only changes with a restart.
func (s *Settings) BotName() string {
	return s.defaults.BotName
}

// GuildBlacklisted reports whether a guild is refused service outright.
func (s *Settings) GuildBlacklisted(guildID string) bool {
	for _, id := range s.defaults.GuildBlacklist {
		if id == guildID {
			return true
		}
	}
	return false
}

// Prefix is the chat command prefix.
func (s *Settings) Prefix() string {
	return s.store.GetSetting(keyPrefix, s.defaults.Prefix)
}

func (s *Settings) SetPrefix(prefix string) error {
	return s.store.SetSetting(keyPrefix, prefix)
}

// ConsolePrefix is the operator console command prefix.
func (s *Settings) ConsolePrefix() string {
	return s.store.GetSetting(keyConsolePrefix, s.defaults.ConsolePrefix)
}

// MuteHidden reports whether permission and DM errors on hidden commands
// are silently dropped.
func (s *Settings) MuteHidden() bool {
	def := "false"
	if s.defaults.MuteHidden {
		def = "true"
	}
	return s.store.GetSetting(keyMuteHidden, def) == "true"
}

func (s *Settings) SetMuteHidden(mute bool) error {
	v := "false"
	if mute {
		v = "true"
	}
	return s.store.SetSetting(keyMuteHidden, v)
}

// ConsoleChannel is the channel the operator console is attached to.
func (s *Settings) ConsoleChannel() string {
	return s.store.GetSetting(keyConsoleChannel, "")
}

func (s *Settings) SetConsoleChannel(channelID string) error {
	return s.store.SetSetting(keyConsoleChannel, channelID)
}

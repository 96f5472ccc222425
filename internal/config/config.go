// Package config loads process configuration from the environment and
// exposes the live, storage-backed settings the router reads per dispatch.
package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config is the static, process-lifetime configuration.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"data/plasmabot.json"`

	BotName string   `env:"BOT_NAME" envDefault:"PlasmaBot"`
	Owners  []string `env:"BOT_OWNERS" envSeparator:","`

	// Defaults for the live settings; storage values win once set.
	Prefix        string `env:"COMMAND_PREFIX" envDefault:"!"`
	ConsolePrefix string `env:"CONSOLE_PREFIX" envDefault:"/"`
	MuteHidden    bool   `env:"MUTE_HIDDEN_ERRORS" envDefault:"true"`

	// ErrorLogChannel receives traceback embeds when set.
	ErrorLogChannel string `env:"ERROR_LOG_CHANNEL"`

	GuildBlacklist []string `env:"GUILD_BLACKLIST" envSeparator:","`
}

// New parses the environment. Missing required values are fatal; the bot
// cannot run without credentials.
func New() *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		log.Fatalf("[ERR] Invalid configuration: %v", err)
	}
	return &cfg
}

// IsOwner reports whether a user ID is in the configured owner list.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.Owners {
		if id == userID {
			return true
		}
	}
	return false
}

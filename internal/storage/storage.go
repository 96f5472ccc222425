// Package storage persists the bot's durable state on a datastore-backed
// JSON file: permission overrides, blacklist entries, per-guild plugin
// overrides, live settings and plugin data. Command/plugin catalogs are
// deliberately not stored here; they are rebuilt in memory every start.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keshon/datastore"
)

// Storage wraps the datastore with typed accessors. The datastore locks per
// statement; callers get read-modify-write helpers that keep each mutation
// inside a single record.
type Storage struct {
	ds *datastore.DataStore

	// cancel stops the datastore's background save loop; Close cancels it
	// before flushing so the final save is the last write.
	cancel context.CancelFunc
}

// AFKState marks a user as away with an optional message.
type AFKState struct {
	Message string    `json:"message"`
	Since   time.Time `json:"since"`
}

// GuildRecord is everything stored per guild under the guild ID key.
type GuildRecord struct {
	// PluginOverrides maps plugin name to "enabled" or "disabled"; absent
	// means unset.
	PluginOverrides map[string]string `json:"plugin_overrides,omitempty"`
	ModLogChannel   string            `json:"modlog_channel,omitempty"`
	CustomCommands  map[string]string `json:"custom_commands,omitempty"`
}

func New(filePath string) (*Storage, error) {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create dir %q: %w", dir, err)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	ds, err := datastore.New(ctx, filePath, datastore.WithSaveInterval(time.Minute))
	if err != nil {
		cancel()
		return nil, err
	}
	return &Storage{ds: ds, cancel: cancel}, nil
}

// Close stops the save loop and flushes the store to disk. Idempotent.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

func guildKey(guildID string) string {
	return "guild:" + guildID
}

func (s *Storage) getGuildRecord(guildID string) (*GuildRecord, error) {
	record := &GuildRecord{}
	if _, err := s.ds.Get(guildKey(guildID), record); err != nil {
		return nil, err
	}
	if record.PluginOverrides == nil {
		record.PluginOverrides = map[string]string{}
	}
	if record.CustomCommands == nil {
		record.CustomCommands = map[string]string{}
	}
	return record, nil
}

func (s *Storage) putGuildRecord(guildID string, record *GuildRecord) error {
	return s.ds.Set(guildKey(guildID), record)
}

package storage

// Per-guild plugin overrides, layered above each plugin's own
// whitelist/blacklist defaults by the enablement filter.

const (
	PluginEnabled  = "enabled"
	PluginDisabled = "disabled"
)

// PluginOverride returns "enabled", "disabled" or "" (unset) for a plugin
// in a guild.
func (s *Storage) PluginOverride(guildID, pluginName string) string {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return ""
	}
	return record.PluginOverrides[pluginName]
}

// SetPluginOverride writes a per-guild plugin override; empty state clears
// it back to unset.
func (s *Storage) SetPluginOverride(guildID, pluginName, state string) error {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return err
	}
	if state == "" {
		delete(record.PluginOverrides, pluginName)
	} else {
		record.PluginOverrides[pluginName] = state
	}
	return s.putGuildRecord(guildID, record)
}

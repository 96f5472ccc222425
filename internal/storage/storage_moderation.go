package storage

// ModLogChannel returns the guild's moderation log channel ID, if set.
func (s *Storage) ModLogChannel(guildID string) (string, bool) {
	record, err := s.getGuildRecord(guildID)
	if err != nil || record.ModLogChannel == "" {
		return "", false
	}
	return record.ModLogChannel, true
}

// SetModLogChannel sets the guild's moderation log channel.
func (s *Storage) SetModLogChannel(guildID, channelID string) error {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.ModLogChannel = channelID
	return s.putGuildRecord(guildID, record)
}

// ClearModLogChannel removes the guild's moderation log channel.
func (s *Storage) ClearModLogChannel(guildID string) error {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.ModLogChannel = ""
	return s.putGuildRecord(guildID, record)
}

package storage

import "fmt"

// CustomCommand returns the stored response text for a guild's custom
// command.
func (s *Storage) CustomCommand(guildID, name string) (string, bool) {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return "", false
	}
	response, ok := record.CustomCommands[name]
	return response, ok
}

// CustomCommands returns all custom commands for a guild.
func (s *Storage) CustomCommands(guildID string) map[string]string {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return nil
	}
	return record.CustomCommands
}

// SetCustomCommand creates a custom command; it refuses to overwrite an
// existing one.
func (s *Storage) SetCustomCommand(guildID, name, response string) error {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return err
	}
	if _, exists := record.CustomCommands[name]; exists {
		return fmt.Errorf("custom command %q already exists", name)
	}
	record.CustomCommands[name] = response
	return s.putGuildRecord(guildID, record)
}

// DeleteCustomCommand removes a custom command.
func (s *Storage) DeleteCustomCommand(guildID, name string) error {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return err
	}
	if _, exists := record.CustomCommands[name]; !exists {
		return fmt.Errorf("custom command %q does not exist", name)
	}
	delete(record.CustomCommands, name)
	return s.putGuildRecord(guildID, record)
}

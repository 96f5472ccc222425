package storage

const settingsKey = "settings"

// GetSetting returns a live setting value, or def when unset.
func (s *Storage) GetSetting(key, def string) string {
	table := map[string]string{}
	if _, err := s.ds.Get(settingsKey, &table); err != nil {
		return def
	}
	if v, ok := table[key]; ok {
		return v
	}
	return def
}

// SetSetting writes a live setting value.
func (s *Storage) SetSetting(key, value string) error {
	table := map[string]string{}
	if _, err := s.ds.Get(settingsKey, &table); err != nil {
		return err
	}
	table[key] = value
	return s.ds.Set(settingsKey, table)
}

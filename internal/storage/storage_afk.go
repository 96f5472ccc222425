package storage

const afkKey = "afk"

func (s *Storage) afkTable() map[string]AFKState {
	table := map[string]AFKState{}
	if _, err := s.ds.Get(afkKey, &table); err != nil {
		return map[string]AFKState{}
	}
	return table
}

// AFK returns a user's away state, if any.
func (s *Storage) AFK(userID string) (AFKState, bool) {
	state, ok := s.afkTable()[userID]
	return state, ok
}

// SetAFK marks a user as away.
func (s *Storage) SetAFK(userID string, state AFKState) error {
	table := s.afkTable()
	table[userID] = state
	return s.ds.Set(afkKey, table)
}

// ClearAFK removes a user's away state. It reports whether one existed.
func (s *Storage) ClearAFK(userID string) bool {
	table := s.afkTable()
	if _, ok := table[userID]; !ok {
		return false
	}
	delete(table, userID)
	return s.ds.Set(afkKey, table) == nil
}

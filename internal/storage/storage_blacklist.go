package storage

const blacklistKey = "blacklist"

// BlacklistTokens returns the location tokens a user is blacklisted under
// (see permissions for the token grammar). Empty when not blacklisted.
func (s *Storage) BlacklistTokens(userID string) []string {
	table := map[string][]string{}
	if _, err := s.ds.Get(blacklistKey, &table); err != nil {
		return nil
	}
	return table[userID]
}

// SetBlacklistTokens replaces a user's blacklist token set. An empty set
// removes the user's entry.
func (s *Storage) SetBlacklistTokens(userID string, tokens []string) error {
	table := map[string][]string{}
	if _, err := s.ds.Get(blacklistKey, &table); err != nil {
		return err
	}
	if len(tokens) == 0 {
		delete(table, userID)
	} else {
		table[userID] = tokens
	}
	return s.ds.Set(blacklistKey, table)
}

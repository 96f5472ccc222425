package storage

// Permission override storage. Overrides are tri-state integers: 1 allows,
// -1 denies, absence means unset. A newly registered permission therefore
// needs no migration: every existing override set already answers "unset"
// for it.

// OverrideSet holds the per-target override maps for one scope key
// (a channel or a guild).
type OverrideSet struct {
	Users map[string]map[string]int `json:"users,omitempty"`
	Roles map[string]map[string]int `json:"roles,omitempty"`
}

func channelPermsKey(channelID string) string {
	return "perms:channel:" + channelID
}

func guildPermsKey(guildID string) string {
	return "perms:guild:" + guildID
}

func (s *Storage) getOverrideSet(key string) (*OverrideSet, error) {
	set := &OverrideSet{}
	if _, err := s.ds.Get(key, set); err != nil {
		return nil, err
	}
	if set.Users == nil {
		set.Users = map[string]map[string]int{}
	}
	if set.Roles == nil {
		set.Roles = map[string]map[string]int{}
	}
	return set, nil
}

func (s *Storage) overrideValue(key, targetID string, targetIsRole bool, permission string) int {
	set, err := s.getOverrideSet(key)
	if err != nil {
		return 0
	}
	table := set.Users
	if targetIsRole {
		table = set.Roles
	}
	return table[targetID][permission]
}

func (s *Storage) setOverrideValue(key, targetID string, targetIsRole bool, permission string, value int) error {
	set, err := s.getOverrideSet(key)
	if err != nil {
		return err
	}
	table := set.Users
	if targetIsRole {
		table = set.Roles
	}
	if value == 0 {
		delete(table[targetID], permission)
		if len(table[targetID]) == 0 {
			delete(table, targetID)
		}
	} else {
		if table[targetID] == nil {
			table[targetID] = map[string]int{}
		}
		table[targetID][permission] = value
	}
	return s.ds.Set(key, set)
}

// ChannelOverride returns the channel-scope override for a user or role:
// 1 allow, -1 deny, 0 unset.
func (s *Storage) ChannelOverride(channelID, targetID string, targetIsRole bool, permission string) int {
	return s.overrideValue(channelPermsKey(channelID), targetID, targetIsRole, permission)
}

// GuildOverride returns the guild-scope override for a user or role.
func (s *Storage) GuildOverride(guildID, targetID string, targetIsRole bool, permission string) int {
	return s.overrideValue(guildPermsKey(guildID), targetID, targetIsRole, permission)
}

// SetChannelOverride writes a channel-scope override; 0 clears it.
func (s *Storage) SetChannelOverride(channelID, targetID string, targetIsRole bool, permission string, value int) error {
	return s.setOverrideValue(channelPermsKey(channelID), targetID, targetIsRole, permission, value)
}

// SetGuildOverride writes a guild-scope override; 0 clears it.
func (s *Storage) SetGuildOverride(guildID, targetID string, targetIsRole bool, permission string, value int) error {
	return s.setOverrideValue(guildPermsKey(guildID), targetID, targetIsRole, permission, value)
}

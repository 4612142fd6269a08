// Package state owns the bot's persisted aggregate: allow-lists, the ban-list,
// per-user model preferences and usage counters.
package state

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// FileName is the default name of the state file.
const FileName = "bot_data.json"

// IDSet is a set of Telegram user or chat ids.
// It is persisted as a sorted JSON array of integers.
type IDSet map[int64]struct{}

// Has reports whether id is a member.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether the set changed.
func (s IDSet) Add(id int64) bool {
	if s.Has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether the set changed.
func (s IDSet) Remove(id int64) bool {
	if !s.Has(id) {
		return false
	}
	delete(s, id)
	return true
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MarshalJSON encodes the set as a sorted array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of ids. Duplicates collapse; null yields an empty set.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*s = set
	return nil
}

func (s IDSet) clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Preference is a user's stored settings.
type Preference struct {
	// Model is the completion model the user selected.
	Model string `json:"model"`
}

// ModelUsage counts requests and tokens for one model.
type ModelUsage struct {
	Requests int64 `json:"requests"`
	Tokens   int64 `json:"tokens"`
}

// Usage holds a user's cumulative counters.
// TotalRequests and TotalTokens always equal the sums over ByModel.
type Usage struct {
	TotalRequests int64                 `json:"total_requests"`
	TotalTokens   int64                 `json:"total_tokens"`
	ByModel       map[string]ModelUsage `json:"by_model"`
}

// Clone returns a deep copy.
func (u Usage) Clone() Usage {
	c := Usage{
		TotalRequests: u.TotalRequests,
		TotalTokens:   u.TotalTokens,
		ByModel:       make(map[string]ModelUsage, len(u.ByModel)),
	}
	for m, mu := range u.ByModel {
		c.ByModel[m] = mu
	}
	return c
}

// State is the whole persisted aggregate.
// Field order matches the on-disk layout.
type State struct {
	AuthorizedUsers  IDSet                `json:"authorized_users"`
	AuthorizedGroups IDSet                `json:"authorized_groups"`
	Preferences      map[int64]Preference `json:"user_preferences"`
	Usage            map[int64]Usage      `json:"usage_stats"`
	BannedUsers      IDSet                `json:"banned_users"`
}

// New returns an empty aggregate with every collection allocated.
func New() *State {
	return &State{
		AuthorizedUsers:  IDSet{},
		AuthorizedGroups: IDSet{},
		Preferences:      map[int64]Preference{},
		Usage:            map[int64]Usage{},
		BannedUsers:      IDSet{},
	}
}

// Clone returns a deep copy that shares nothing with s.
func (s *State) Clone() *State {
	c := &State{
		AuthorizedUsers:  s.AuthorizedUsers.clone(),
		AuthorizedGroups: s.AuthorizedGroups.clone(),
		Preferences:      make(map[int64]Preference, len(s.Preferences)),
		Usage:            make(map[int64]Usage, len(s.Usage)),
		BannedUsers:      s.BannedUsers.clone(),
	}
	for id, p := range s.Preferences {
		c.Preferences[id] = p
	}
	for id, u := range s.Usage {
		c.Usage[id] = u.Clone()
	}
	return c
}

// normalize allocates any collection a hand-edited file left out.
func (s *State) normalize() {
	if s.AuthorizedUsers == nil {
		s.AuthorizedUsers = IDSet{}
	}
	if s.AuthorizedGroups == nil {
		s.AuthorizedGroups = IDSet{}
	}
	if s.Preferences == nil {
		s.Preferences = map[int64]Preference{}
	}
	if s.Usage == nil {
		s.Usage = map[int64]Usage{}
	}
	if s.BannedUsers == nil {
		s.BannedUsers = IDSet{}
	}
	for id, u := range s.Usage {
		if u.ByModel == nil {
			u.ByModel = map[string]ModelUsage{}
			s.Usage[id] = u
		}
	}
}

// reconcileBans drops banned users from the allow-list and returns their
// ids in order. Files from older releases list a banned user on both.
func (s *State) reconcileBans() []int64 {
	var ids []int64
	for _, id := range s.BannedUsers.Sorted() {
		if s.AuthorizedUsers.Remove(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Validate checks the schema invariants that JSON decoding alone cannot.
func (s *State) Validate() error {
	for id := range s.BannedUsers {
		if s.AuthorizedUsers.Has(id) {
			return fmt.Errorf("user %d is both authorized and banned", id)
		}
	}

	for id, p := range s.Preferences {
		if p.Model == "" {
			return fmt.Errorf("user %d has an empty model preference", id)
		}
	}

	for id, u := range s.Usage {
		var requests, tokens int64
		for model, mu := range u.ByModel {
			if mu.Requests < 0 || mu.Tokens < 0 {
				return fmt.Errorf("user %d model %q has negative counters", id, model)
			}
			requests += mu.Requests
			tokens += mu.Tokens
		}
		if u.TotalRequests != requests {
			return fmt.Errorf("user %d total_requests = %d, by_model sums to %d", id, u.TotalRequests, requests)
		}
		if u.TotalTokens != tokens {
			return fmt.Errorf("user %d total_tokens = %d, by_model sums to %d", id, u.TotalTokens, tokens)
		}
	}

	return nil
}

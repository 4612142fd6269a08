package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Repair fixes in place every violation Validate would report and returns a
// line per change. A user on both lists stays banned. Usage totals are
// recomputed from the per-model counters after negative counters are zeroed.
// Empty model preferences are dropped so the default applies again.
func (s *State) Repair() []string {
	var changes []string

	for _, id := range s.BannedUsers.Sorted() {
		if s.AuthorizedUsers.Remove(id) {
			changes = append(changes, banKeptChange(id))
		}
	}

	for _, id := range sortedKeys(s.Preferences) {
		if s.Preferences[id].Model == "" {
			delete(s.Preferences, id)
			changes = append(changes, fmt.Sprintf("user %d had an empty model preference; removed", id))
		}
	}

	for _, id := range sortedKeys(s.Usage) {
		u := s.Usage[id]

		var requests, tokens int64
		for model, mu := range u.ByModel {
			if mu.Requests < 0 || mu.Tokens < 0 {
				mu.Requests = max(mu.Requests, 0)
				mu.Tokens = max(mu.Tokens, 0)
				u.ByModel[model] = mu
				changes = append(changes, fmt.Sprintf("user %d model %q had negative counters; clamped to zero", id, model))
			}
			requests += mu.Requests
			tokens += mu.Tokens
		}

		if u.TotalRequests != requests || u.TotalTokens != tokens {
			changes = append(changes, fmt.Sprintf("user %d totals %d/%d recomputed as %d/%d",
				id, u.TotalRequests, u.TotalTokens, requests, tokens))
			u.TotalRequests = requests
			u.TotalTokens = tokens
		}
		s.Usage[id] = u
	}

	return changes
}

// RepairFile takes the lock on path, repairs the aggregate and writes it back
// if anything changed. A file that cannot be decoded at all is left alone.
func RepairFile(path string) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	lock, err := tryLock(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	st, reconciled, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	var changes []string
	for _, id := range reconciled {
		changes = append(changes, banKeptChange(id))
	}
	changes = append(changes, st.Repair()...)
	if len(changes) == 0 {
		return nil, nil
	}
	if err := st.Validate(); err != nil {
		return changes, fmt.Errorf("%w: still invalid after repair: %v", ErrCorruptState, err)
	}
	if err := Save(path, st); err != nil {
		return changes, err
	}
	return changes, nil
}

func banKeptChange(id int64) string {
	return fmt.Sprintf("user %d was authorized and banned; kept the ban", id)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRepairFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		changes int
	}{
		{"authorized and banned", `{"authorized_users": [7, 8], "banned_users": [7]}`, 1},
		{"empty model", `{"user_preferences": {"1": {"model": ""}, "2": {"model": "gpt-4o"}}}`, 1},
		{"request total mismatch", `{"usage_stats": {"1": {"total_requests": 2, "total_tokens": 10, "by_model": {"m": {"requests": 1, "tokens": 10}}}}}`, 1},
		{"negative counters", `{"usage_stats": {"1": {"total_requests": 1, "total_tokens": -5, "by_model": {"m": {"requests": 1, "tokens": -5}}}}}`, 2},
		{"already valid", `{"authorized_users": [7]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			changes, err := RepairFile(path)
			if err != nil {
				t.Fatalf("RepairFile: %v", err)
			}
			if len(changes) != tt.changes {
				t.Errorf("changes = %q, want %d", changes, tt.changes)
			}

			if _, err := Load(path); err != nil {
				t.Errorf("Load after repair: %v", err)
			}
		})
	}
}

func TestRepairKeepsBanAndRecomputesTotals(t *testing.T) {
	st := New()
	st.AuthorizedUsers.Add(7)
	st.BannedUsers.Add(7)
	st.Usage[1] = Usage{
		TotalRequests: 9,
		TotalTokens:   9,
		ByModel: map[string]ModelUsage{
			"a": {Requests: 1, Tokens: 10},
			"b": {Requests: 2, Tokens: -3},
		},
	}

	st.Repair()

	if st.AuthorizedUsers.Has(7) || !st.BannedUsers.Has(7) {
		t.Error("ban should win over the allow-list")
	}
	u := st.Usage[1]
	if u.TotalRequests != 3 || u.TotalTokens != 10 {
		t.Errorf("totals = %d/%d, want 3/10", u.TotalRequests, u.TotalTokens)
	}
	if u.ByModel["b"].Tokens != 0 {
		t.Errorf("negative tokens should clamp to 0, got %d", u.ByModel["b"].Tokens)
	}
	if err := st.Validate(); err != nil {
		t.Errorf("Validate after Repair: %v", err)
	}
}

func TestRepairFileUndecodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := RepairFile(path); !errors.Is(err, ErrCorruptState) {
		t.Errorf("expected ErrCorruptState, got: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "{not json" {
		t.Error("undecodable file must be left untouched")
	}
}

func TestRepairFileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := RepairFile(path); !errors.Is(err, ErrStoreLocked) {
		t.Errorf("expected ErrStoreLocked, got: %v", err)
	}
}

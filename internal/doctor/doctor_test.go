package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksteinfeldt/askbot/internal/config"
	"github.com/ksteinfeldt/askbot/internal/state"
)

func testContext(t *testing.T) *CheckContext {
	t.Helper()
	cfg := config.Default()
	cfg.Store.DataDir = t.TempDir()
	cfg.Telegram.Token = "123:abc"
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Bot.OwnerID = 1000
	return &CheckContext{Context: context.Background(), Config: cfg}
}

func findResult(t *testing.T, r *Report, name string) *CheckResult {
	t.Helper()
	for _, res := range r.Results {
		if res.Name == name {
			return res
		}
	}
	t.Fatalf("no result for %q", name)
	return nil
}

func TestHealthyInstall(t *testing.T) {
	report := New().Run(testContext(t), false)

	if report.HasErrors() {
		for _, res := range report.Results {
			t.Logf("%s: %s %s %v", res.Name, res.Status, res.Message, res.Details)
		}
		t.Fatal("fresh install should have no errors")
	}
	if len(report.Results) != 4 {
		t.Errorf("expected 4 results, got %d", len(report.Results))
	}
}

func TestConfigCheckMissingOwner(t *testing.T) {
	ctx := testContext(t)
	ctx.Config.Bot.OwnerID = 0

	res := NewConfigCheck().Run(ctx)
	if res.Status != StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	if res.FixHint == "" {
		t.Error("expected a fix hint")
	}
}

func TestStateFileCheckAndFix(t *testing.T) {
	ctx := testContext(t)
	path := state.Path(ctx.Config.Store.DataDir)
	content := `{"usage_stats": {"1": {"total_requests": 2, "total_tokens": 10, "by_model": {"m": {"requests": 1, "tokens": 10}}}}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d := &Doctor{}
	d.Register(NewStateFileCheck())

	report := d.Run(ctx, false)
	if res := findResult(t, report, "state-file"); res.Status != StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}

	report = d.Run(ctx, true)
	if res := findResult(t, report, "state-file"); res.Status != StatusOK {
		t.Errorf("after fix status = %s (%v)", res.Status, res.Details)
	}
	if len(report.Fixed["state-file"]) != 1 {
		t.Errorf("fixed = %v", report.Fixed)
	}

	st, err := state.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if u := st.Usage[1]; u.TotalRequests != 1 || u.TotalTokens != 10 {
		t.Errorf("totals after repair = %d/%d, want 1/10", u.TotalRequests, u.TotalTokens)
	}
}

func TestStateFileCheckAcceptsBannedAllowListedUser(t *testing.T) {
	ctx := testContext(t)
	path := state.Path(ctx.Config.Store.DataDir)
	if err := os.WriteFile(path, []byte(`{"authorized_users": [7, 8], "banned_users": [7]}`), 0644); err != nil {
		t.Fatal(err)
	}

	res := NewStateFileCheck().Run(ctx)
	if res.Status != StatusOK {
		t.Errorf("status = %s (%s %v), want ok", res.Status, res.Message, res.Details)
	}
}

func TestStateFileFixLeavesGarbage(t *testing.T) {
	ctx := testContext(t)
	path := state.Path(ctx.Config.Store.DataDir)
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	d := &Doctor{}
	d.Register(NewStateFileCheck())
	report := d.Run(ctx, true)

	res := findResult(t, report, "state-file")
	if res.Status != StatusError {
		t.Errorf("status = %s, want error", res.Status)
	}
	if len(res.Details) < 2 {
		t.Errorf("expected fix failure in details, got %v", res.Details)
	}
}

func TestStoreLockCheck(t *testing.T) {
	ctx := testContext(t)

	if res := NewStoreLockCheck().Run(ctx); res.Status != StatusOK {
		t.Errorf("free store: status = %s", res.Status)
	}

	s, err := state.Open(filepath.Join(ctx.Config.Store.DataDir, state.FileName))
	if err != nil {
		t.Fatal(err)
	}

	if res := NewStoreLockCheck().Run(ctx); res.Status != StatusWarning {
		t.Errorf("held store: status = %s, want warning", res.Status)
	}

	s.Close()
	if res := NewStoreLockCheck().Run(ctx); res.Status != StatusOK {
		t.Errorf("released store: status = %s", res.Status)
	}
}

func TestStoreLockCheckCreatesNothing(t *testing.T) {
	ctx := testContext(t)
	ctx.Config.Store.DataDir = filepath.Join(t.TempDir(), "not-yet")

	report := New().Run(ctx, false)

	if res := findResult(t, report, "store-lock"); res.Status != StatusOK {
		t.Errorf("status = %s (%s)", res.Status, res.Message)
	}
	if _, err := os.Stat(ctx.Config.Store.DataDir); !os.IsNotExist(err) {
		t.Errorf("doctor created %s", ctx.Config.Store.DataDir)
	}
}

func TestTelegramCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": true, "result": {"id": 1, "is_bot": true, "first_name": "Ask", "username": "ask_bot"}}`))
	}))
	defer server.Close()

	ctx := testContext(t)
	ctx.Config.Telegram.APIURL = server.URL

	if res := NewTelegramCheck().Run(ctx); res.Status != StatusOK || res.Message != "Skipped (pass --online to contact Telegram)" {
		t.Errorf("offline: %+v", res)
	}

	ctx.Online = true
	res := NewTelegramCheck().Run(ctx)
	if res.Status != StatusOK || res.Message != "Token valid for @ask_bot" {
		t.Errorf("online: %+v", res)
	}
}

func TestTelegramCheckRejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok": false, "error_code": 401, "description": "Unauthorized"}`))
	}))
	defer server.Close()

	ctx := testContext(t)
	ctx.Config.Telegram.APIURL = server.URL
	ctx.Online = true

	res := NewTelegramCheck().Run(ctx)
	if res.Status != StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	for _, d := range res.Details {
		if strings.Contains(d, ctx.Config.Telegram.Token) {
			t.Errorf("details leak the token: %q", d)
		}
	}
}

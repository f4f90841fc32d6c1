package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]string
}

func newServer(t *testing.T, status int, reply string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method, rec.path, rec.query = r.Method, r.URL.Path, r.URL.RawQuery
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestChatCommand(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"reply":"Logos start at $1,500.","sessionId":"s-1"}`)

	out, err := run(t, "--server", srv.URL, "chat", "how", "much", "is", "a", "logo?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/api/v1/chat" {
		t.Errorf("request = %s %s", rec.method, rec.path)
	}
	if rec.body["message"] != "how much is a logo?" {
		t.Errorf("message = %q", rec.body["message"])
	}
	if !strings.Contains(out, "Logos start at $1,500.") || !strings.Contains(out, "--session s-1") {
		t.Errorf("output = %q", out)
	}
}

func TestChatCommandWithSession(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"reply":"ok","sessionId":"abc"}`)

	out, err := run(t, "--server", srv.URL+"/", "chat", "hi", "--session", "abc")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if rec.body["sessionId"] != "abc" || rec.path != "/api/v1/chat" {
		t.Errorf("body = %v path = %s", rec.body, rec.path)
	}
	if strings.Contains(out, "Session:") {
		t.Errorf("session hint printed for an existing session: %q", out)
	}
}

func TestChatCommandServerError(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadRequest, `{"error":"message is required"}`)

	if _, err := run(t, "--server", srv.URL, "chat", "x"); err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("err = %v, want status 400", err)
	}
}

func TestAnalyticsCommands(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"date":"2026-03-01","totalMessages":6,"conversionRate":"33.3"}`)

	out, err := run(t, "--server", srv.URL, "analytics", "daily", "--date", "2026-03-01")
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if rec.path != "/api/v1/analytics/daily" || rec.query != "date=2026-03-01" {
		t.Errorf("request = %s?%s", rec.path, rec.query)
	}
	if !strings.Contains(out, `"conversionRate": "33.3"`) {
		t.Errorf("output = %q", out)
	}

	srv2, rec2 := newServer(t, http.StatusOK, `{"sessionId":"s 1","interactions":2}`)
	out, err = run(t, "--server", srv2.URL, "analytics", "session", "s 1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if rec2.path != "/api/v1/analytics/sessions/s 1" {
		t.Errorf("path = %q", rec2.path)
	}
	if !strings.Contains(out, `"interactions": 2`) {
		t.Errorf("output = %q", out)
	}
}

func TestSeedCommand(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"chunks":2}`)
	path := filepath.Join(t.TempDir(), "pricing.md")
	if err := os.WriteFile(path, []byte("Logo packages start at $1,500."), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--server", srv.URL, "seed", path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if rec.path != "/api/v1/knowledge/seed" || rec.body["source"] != "pricing.md" {
		t.Errorf("path = %s body = %v", rec.path, rec.body)
	}
	if !strings.Contains(rec.body["text"], "$1,500") {
		t.Errorf("text = %q", rec.body["text"])
	}
	if !strings.Contains(out, "Seeded 2 chunks from pricing.md") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "--server", srv.URL, "seed", path, "--source", "rates"); err != nil {
		t.Fatal(err)
	}
	if rec.body["source"] != "rates" {
		t.Errorf("source = %q", rec.body["source"])
	}
}

func TestSeedCommandMissingFile(t *testing.T) {
	if _, err := run(t, "seed", filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Fatal("expected error")
	}
}

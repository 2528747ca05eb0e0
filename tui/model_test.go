package tui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"shortsbot/types"
)

func TestUpdateStatus(t *testing.T) {
	m := NewModel("http://unused")
	status := &types.StatusResponse{
		State:      types.StateComplete,
		RunID:      "r1",
		ClipCount:  4,
		Logs:       []types.LogEntry{{Message: "📤 Uploaded"}},
		LastResult: &types.RunResult{Title: "TOP CLIPS", VideoID: "abc", VideoPath: "output/final_short.mp4"},
	}

	next, _ := m.Update(StatusUpdateMsg{Status: status})
	view := next.(Model).View()
	for _, want := range []string{"COMPLETE", "r1", "Clips: 4", "📤 Uploaded", "TOP CLIPS", "shorts/abc"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	next, _ = next.Update(StatusUpdateMsg{Err: errors.New("connection refused")})
	if next.(Model).Connected || !strings.Contains(next.(Model).View(), "connection refused") {
		t.Fatal("poll error should mark the model disconnected")
	}
}

func TestStartKeyOnlyWhenIdle(t *testing.T) {
	m := NewModel("http://unused")
	m.Connected = true
	m.Status.State = types.StateDownloading

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); cmd != nil {
		t.Fatal("start should be ignored while a run is active")
	}
	m.Status.State = types.StateComplete
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); cmd == nil {
		t.Fatal("start should be issued when idle")
	}
}

func TestStatusClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/runs/current":
			w.Write([]byte(`{"state":"composing","run_id":"r9","logs":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/runs":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"busy"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewStatusClient(srv.URL)
	status, err := c.GetStatus()
	if err != nil || status.State != types.StateComposing || status.RunID != "r9" {
		t.Fatalf("status = %+v, %v", status, err)
	}
	if err := c.StartRun(); err == nil || !strings.Contains(err.Error(), "409") {
		t.Fatalf("StartRun err = %v", err)
	}
}

package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/skylark-downloader/internal/config"
	"github.com/handiism/skylark-downloader/internal/status"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "--:--"},
		{59, "0:59"},
		{61, "1:01"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := formatCount(tt.n); got != tt.want {
			t.Errorf("formatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func press(t *testing.T, m Model, key tea.KeyType) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: key})
	return next.(Model)
}

func TestStartWithoutSavePathAsksForDirectory(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	defer m.manager.Close()

	m = press(t, m, tea.KeyCtrlS)
	if m.state != StateQueue {
		t.Fatalf("state = %v, want queue on empty start", m.state)
	}
	if len(m.logs) != 1 || m.logs[0].Level != status.LevelWarning {
		t.Fatalf("logs = %+v, want one warning", m.logs)
	}

	if _, err := m.manager.Store().Add("https://youtu.be/abc"); err != nil {
		t.Fatal(err)
	}
	m = press(t, m, tea.KeyCtrlS)
	if m.state != StateChooseDir {
		t.Fatalf("state = %v, want choose dir", m.state)
	}
	m = press(t, m, tea.KeyEsc)
	if m.state != StateQueue {
		t.Errorf("state = %v, want queue after esc", m.state)
	}
}

func TestVerboseEventsAreFiltered(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	defer m.manager.Close()

	m.applyEvent(status.Event{Kind: status.KindMessage, Level: status.LevelVerbose, Message: "hidden"})
	m.applyEvent(status.Event{Kind: status.KindMessage, Level: status.LevelInfo, Message: "shown"})
	if len(m.logs) != 1 || m.logs[0].Message != "shown" {
		t.Fatalf("logs = %+v", m.logs)
	}

	m.verbose = true
	m.applyEvent(status.Event{Kind: status.KindProgress, Message: "Downloading... (1/2) complete", Completed: 1, Total: 2})
	if m.completed != 1 || m.total != 2 || len(m.logs) != 2 {
		t.Errorf("completed=%d total=%d logs=%d", m.completed, m.total, len(m.logs))
	}
}

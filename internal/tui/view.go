package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/status"
)

var (
	accent = lipgloss.Color("#E4572E")
	teal   = lipgloss.Color("#17BEBB")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	taglineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#76B041")).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(teal)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A7F87"))
	rowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC914"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(teal).
			Padding(1, 2)
)

// levelStyles maps status levels to a line prefix and colour.
var levelStyles = map[status.Level]struct {
	prefix string
	style  lipgloss.Style
}{
	status.LevelError:   {"✗", lipgloss.NewStyle().Foreground(accent)},
	status.LevelWarning: {"!", lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC914"))},
	status.LevelSuccess: {"✓", lipgloss.NewStyle().Foreground(lipgloss.Color("#76B041"))},
	status.LevelInfo:    {"›", lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))},
	status.LevelVerbose: {"•", mutedStyle},
}

var helpText = map[State]string{
	StateQueue:       "enter: add • ctrl+s: download • ctrl+r: retry details • ctrl+x: clear • ctrl+l: verbose • esc: quit",
	StateChooseDir:   "enter: confirm • esc: back",
	StateDownloading: "esc: cancel",
	StateComplete:    "r: new batch • q: quit",
	StateError:       "r: new batch • q: quit",
}

// View renders the UI.
func (m Model) View() string {
	var body string
	switch m.state {
	case StateQueue:
		body = m.viewQueue()
	case StateChooseDir:
		body = m.viewChooseDir()
	case StateDownloading:
		body = m.viewDownloading()
	case StateComplete:
		body = m.viewComplete()
	case StateError:
		body = m.viewError()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Skylark Downloader"),
		taglineStyle.Render("Queue videos and playlists, then fetch them as MP4 or MP3"),
		body,
		mutedStyle.Render(helpText[m.state]),
	)
}

func (m Model) viewQueue() string {
	parts := []string{
		labelStyle.Render("Enter URL(s):"),
		"",
		m.textInput.View(),
		"",
	}
	if m.resolving > 0 {
		parts = append(parts,
			m.spinner.View()+" "+labelStyle.Render(fmt.Sprintf("Fetching info for %d URL(s)...", m.resolving)),
			"",
		)
	}
	parts = append(parts,
		m.renderQueue(),
		mutedStyle.Render(fmt.Sprintf("Format: %s | Quality: %s | Downloads at once: %d",
			m.settings.Format, m.settings.VideoQuality, model.ClampConcurrency(m.settings.ConcurrentDownloads))),
		"",
		m.renderLogs(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewChooseDir() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Save downloads to:"),
		"",
		m.textInput.View(),
		"",
	)
}

func (m Model) viewDownloading() string {
	var percent float64
	if m.total > 0 {
		percent = float64(m.completed) / float64(m.total)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.spinner.View()+" "+labelStyle.Render(fmt.Sprintf("Downloading... (%d/%d) complete", m.completed, m.total)),
		"",
		m.progress.ViewAs(percent),
		"",
		m.renderLogs(),
	)
}

func (m Model) viewComplete() string {
	lines := []string{
		"All downloads completed!",
		"",
		fmt.Sprintf("Succeeded: %d", m.report.Succeeded),
		fmt.Sprintf("Failed: %d", m.report.Failed),
		fmt.Sprintf("Time: %s", m.report.Elapsed.Round(time.Second)),
	}
	if n := len(m.finished.Playlists); n > 0 {
		lines = append(lines, fmt.Sprintf("Playlists: %d", n))
	}
	lines = append(lines, m.report.OutputDirs...)

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(strings.Join(lines, "\n")),
		"",
		m.renderLogs(),
	)
}

func (m Model) viewError() string {
	msg := ""
	if m.err != nil {
		msg = "  " + m.err.Error()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		levelStyles[status.LevelError].style.Render("Error occurred:"),
		"",
		msg,
		"",
		m.renderLogs(),
	)
}

func (m Model) renderQueue() string {
	items := m.manager.Store().Snapshot()
	if len(items) == 0 {
		return mutedStyle.Render("Queue is empty.") + "\n"
	}

	rows := []string{levelStyles[status.LevelSuccess].style.Render(fmt.Sprintf("Queue (%d):", len(items)))}
	for i, item := range items {
		if i == maxQueueRows {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  ... and %d more", len(items)-maxQueueRows)))
			break
		}
		rows = append(rows, rowStyle.Render(fmt.Sprintf("  %2d. %s", i+1, truncate(item.Title, 50)))+
			mutedStyle.Render(" "+itemMeta(item)))
	}
	return strings.Join(rows, "\n") + "\n"
}

// itemMeta summarizes resolved metadata for a queue row.
func itemMeta(item *model.QueueItem) string {
	switch item.DetailStatus {
	case model.DetailPending, model.DetailFetching:
		return "(loading details...)"
	case model.DetailFailed:
		return "(details unavailable)"
	}
	meta := fmt.Sprintf("%s | %s | %s views", item.UploaderName, formatDuration(item.DurationSeconds), formatCount(item.ViewCount))
	if item.HasPlaylist() {
		meta += " | " + truncate(item.PlaylistTitle, 20)
	}
	return "(" + meta + ")"
}

func (m Model) renderLogs() string {
	lines := make([]string, 0, len(m.logs))
	for _, entry := range m.logs {
		ls, ok := levelStyles[entry.Level]
		if !ok {
			ls = levelStyles[status.LevelVerbose]
		}
		lines = append(lines, ls.style.Render(ls.prefix+" "+entry.Message))
	}
	return strings.Join(lines, "\n")
}

// Package tui provides a Bubble Tea terminal user interface for skylark-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/skylark-downloader/internal/config"
	"github.com/handiism/skylark-downloader/internal/download"
	"github.com/handiism/skylark-downloader/internal/resolver"
	"github.com/handiism/skylark-downloader/internal/status"
)

// maxLogs is how many status lines stay on screen.
const maxLogs = 10

// maxQueueRows is how many queue rows are rendered before "... and N more".
const maxQueueRows = 12

// State represents the current UI state.
type State int

const (
	StateQueue State = iota
	StateChooseDir
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   status.Level
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager     *download.Manager
	events      <-chan status.Event
	unsubscribe func()

	// resolving counts adds still listing.
	resolving int

	completed int
	total     int
	report    download.BatchReport
	finished  download.FinishSummary

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model backed by a fresh session.
func NewModel(settings *config.Settings, logger *slog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	reporter := status.NewReporter()
	events, unsubscribe := reporter.Subscribe(256)
	manager := download.NewManager(settings,
		download.WithEvents(reporter),
		download.WithManagerLogger(logger),
		download.WithPreviews(true),
	)

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:       StateQueue,
		textInput:   ti,
		spinner:     sp,
		progress:    prog,
		settings:    settings,
		logs:        make([]LogEntry, 0),
		ctx:         ctx,
		cancel:      cancel,
		manager:     manager,
		events:      events,
		unsubscribe: unsubscribe,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

// Message types
type (
	// EventMsg carries one status event.
	EventMsg struct {
		Event status.Event
	}

	// AddDoneMsg is sent when an add finishes listing.
	AddDoneMsg struct {
		Summary resolver.Summary
		Err     error
	}

	// RetryDoneMsg is sent when a detail retry pass finishes.
	RetryDoneMsg struct {
		Resolved int
	}

	// DownloadDoneMsg is sent when a batch and its post-processing complete.
	DownloadDoneMsg struct {
		Report   download.BatchReport
		Finished download.FinishSummary
		Err      error
	}
)

// waitForEvent returns a command that delivers the next status event.
func waitForEvent(events <-chan status.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		m = next

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		cmds = append(cmds, m.applyEvent(msg.Event), waitForEvent(m.events))

	case AddDoneMsg:
		m.resolving--

	case RetryDoneMsg:
		m.appendLog(LogEntry{
			Message: fmt.Sprintf("Retry resolved %d item(s).", msg.Resolved),
			Level:   status.LevelInfo,
		})

	case DownloadDoneMsg:
		m.report = msg.Report
		m.finished = msg.Finished
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errors.New("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateQueue || m.state == StateChooseDir {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes key presses. handled reports that the key must not
// reach the text input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.shutdown()
		return m, tea.Quit, true

	case "esc":
		switch m.state {
		case StateQueue:
			m.shutdown()
			return m, tea.Quit, true
		case StateChooseDir:
			m.state = StateQueue
			m.textInput.SetValue("")
			m.textInput.Placeholder = "https://www.youtube.com/watch?v=..."
			return m, nil, true
		case StateDownloading:
			// Running jobs are torn down; every job still reports a result.
			m.cancel()
			return m, nil, true
		}

	case "enter":
		switch m.state {
		case StateQueue:
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil, true
			}
			m.textInput.SetValue("")
			m.resolving++
			return m, m.addURLs(input), true
		case StateChooseDir:
			dir := strings.TrimSpace(m.textInput.Value())
			if dir == "" {
				return m, nil, true
			}
			return m.startBatch(dir)
		}

	case "ctrl+s":
		if m.state == StateQueue {
			if m.manager.Store().Len() == 0 {
				m.appendLog(LogEntry{Message: "Queue is empty.", Level: status.LevelWarning})
				return m, nil, true
			}
			if dir, err := m.manager.OutputDir(""); err == nil {
				return m.startBatch(dir)
			}
			m.state = StateChooseDir
			m.textInput.SetValue("")
			m.textInput.Placeholder = "/path/to/save/folder"
			return m, nil, true
		}

	case "ctrl+x":
		if m.state == StateQueue {
			m.manager.Store().Clear()
			return m, nil, true
		}

	case "ctrl+r":
		if m.state == StateQueue {
			return m, m.retryFailed(), true
		}

	case "ctrl+l":
		if m.state == StateQueue {
			m.verbose = !m.verbose
			return m, nil, true
		}

	case "q":
		if m.state == StateComplete || m.state == StateError {
			m.shutdown()
			return m, tea.Quit, true
		}

	case "r":
		if m.state == StateComplete || m.state == StateError {
			m.state = StateQueue
			m.err = nil
			m.completed, m.total = 0, 0
			m.report = download.BatchReport{}
			m.finished = download.FinishSummary{}
			m.ctx, m.cancel = context.WithCancel(context.Background())
			m.textInput.SetValue("")
			m.textInput.Placeholder = "https://www.youtube.com/watch?v=..."
			m.textInput.Focus()
			return m, m.progress.SetPercent(0), true
		}
	}
	return m, nil, false
}

func (m Model) startBatch(dir string) (Model, tea.Cmd, bool) {
	m.state = StateDownloading
	m.completed = 0
	m.total = m.manager.Store().Len()
	m.textInput.Blur()
	return m, tea.Batch(m.startDownload(dir), m.spinner.Tick), true
}

// applyEvent folds a status event into the model.
func (m *Model) applyEvent(ev status.Event) tea.Cmd {
	switch ev.Kind {
	case status.KindItemAdded, status.KindItemUpdated, status.KindItemRemoved, status.KindQueueCleared:
		// The queue view reads the store directly.
		return nil
	case status.KindBatchStarted:
		m.total = ev.Total
	case status.KindProgress:
		m.completed = ev.Completed
		m.total = ev.Total
		var percent float64
		if ev.Total > 0 {
			percent = float64(ev.Completed) / float64(ev.Total)
		}
		m.appendLog(LogEntry{Message: ev.Message, Level: status.LevelVerbose})
		return m.progress.SetPercent(percent)
	}

	if ev.Message == "" {
		return nil
	}
	m.appendLog(LogEntry{Message: ev.Message, Level: ev.Level})
	return nil
}

func (m *Model) appendLog(entry LogEntry) {
	if entry.Level == status.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, entry)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) shutdown() {
	m.cancel()
	m.manager.Close()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// addURLs resolves input into the queue in the background.
func (m Model) addURLs(input string) tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		summary, err := manager.Initialize(ctx, input)
		return AddDoneMsg{Summary: summary, Err: err}
	}
}

func (m Model) retryFailed() tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		return RetryDoneMsg{Resolved: manager.Resolver().RetryFailed(ctx)}
	}
}

// startDownload runs the batch in the background.
func (m Model) startDownload(dir string) tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		report, finished, err := manager.StartDownloads(ctx, dir)
		return DownloadDoneMsg{Report: report, Finished: finished, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger *slog.Logger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

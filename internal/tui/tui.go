// Package tui provides a Bubble Tea terminal user interface for camsync.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	stdsync "sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/camsync/internal/config"
	"github.com/handiism/camsync/internal/download"
	"github.com/handiism/camsync/internal/ledger"
	"github.com/handiism/camsync/internal/sync"
	"github.com/handiism/camsync/internal/upnp"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateSearching State = iota
	StateSyncing
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// eventBuffer collects progress events from the sync goroutines; the
// model drains it on every tick.
type eventBuffer struct {
	mu     stdsync.Mutex
	events []download.ProgressEvent
}

func (b *eventBuffer) add(event download.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *eventBuffer) drain() []download.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.events
	b.events = nil
	return events
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	err      error

	// Sync context
	ctx    context.Context
	cancel context.CancelFunc

	// Sync machinery
	led        *ledger.Ledger
	downloader *download.Downloader
	controller *sync.Controller
	watcher    *upnp.Watcher
	events     *eventBuffer

	// Sync progress
	receivedBytes   int64
	downloadedFiles int32
	skippedFiles    int32
	failedFiles     int32

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model and the sync machinery behind it.
// Opening the ledger fails fast here, before the alternate screen is
// entered.
func NewModel(settings *config.Settings, verbose bool) (Model, error) {
	led, err := ledger.Open(settings.LedgerPath())
	if err != nil {
		return Model{}, err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	events := &eventBuffer{}
	dl := download.NewDownloader(settings, led, events.add)
	ctl := sync.NewController(settings.CameraModel, settings.Daemon, dl, events.add)
	watcher := upnp.NewWatcher(settings.InterfaceName, time.Duration(settings.DiscoverPollSecs)*time.Second, events.add)

	return Model{
		state:      StateSearching,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		verbose:    verbose,
		ctx:        ctx,
		cancel:     cancel,
		led:        led,
		downloader: dl,
		controller: ctl,
		watcher:    watcher,
		events:     events,
	}, nil
}

// Init starts the sync and the UI tickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.runSync(), m.spinner.Tick, m.tickProgress())
}

// Message types
type (
	// SyncDoneMsg is sent when the sync run finishes.
	SyncDoneMsg struct {
		Err error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateSearching || m.state == StateSyncing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "v":
			m.verbose = !m.verbose

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case SyncDoneMsg:
		m.drainEvents()
		m.pollProgress()
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil && m.state != StateError {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else if m.state != StateError {
			m.state = StateComplete
		}

	case TickMsg:
		m.drainEvents()
		m.pollProgress()
		if m.state == StateSearching || m.state == StateSyncing {
			cmds = append(cmds, m.tickProgress())
		}
	}

	return m, tea.Batch(cmds...)
}

// drainEvents moves buffered progress events into the visible log.
func (m *Model) drainEvents() {
	for _, event := range m.events.drain() {
		if event.Level == download.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	}
	// Keep only last 10 logs
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
}

// pollProgress refreshes counters and the UI state from the sync
// machinery.
func (m *Model) pollProgress() {
	m.receivedBytes, m.downloadedFiles, m.skippedFiles, m.failedFiles = m.downloader.Progress()

	if m.state == StateSearching && m.controller.State() == sync.StateSyncing {
		m.state = StateSyncing
	}
	if m.state == StateSyncing && m.controller.State() == sync.StateWaitingForDevice {
		m.state = StateSearching
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// runSync runs the watcher and the controller until completion or
// cancellation.
func (m Model) runSync() tea.Cmd {
	return func() tea.Msg {
		defer m.led.Close()

		ctx, cancel := context.WithCancel(m.ctx)
		g, ctx := errgroup.WithContext(ctx)

		deviceCh := make(chan sync.Device, 4)
		g.Go(func() error {
			return m.watcher.Watch(ctx, deviceCh)
		})
		g.Go(func() error {
			defer cancel()
			return m.controller.Run(ctx, deviceCh)
		})

		err := g.Wait()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		return SyncDoneMsg{Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("📷 camsync"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Sync photos from a UPnP camera"))
	b.WriteString("\n\n")

	switch m.state {
	case StateSearching:
		b.WriteString(m.viewSearching())
	case StateSyncing:
		b.WriteString(m.viewSyncing())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewSearching() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf(
		"Waiting for %q on %s...", m.settings.CameraModel, m.settings.InterfaceName)))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s", m.settings.BasePath)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewSyncing() string {
	var b strings.Builder

	b.WriteString(successStyle.Render("Camera connected, syncing..."))
	b.WriteString("\n\n")

	processed := m.downloadedFiles + m.skippedFiles + m.failedFiles
	b.WriteString(m.progress.ViewAs(progressFraction(m.downloadedFiles, processed)))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Downloaded: %d | Skipped: %d | Failed: %d | %.2f MB",
		m.downloadedFiles,
		m.skippedFiles,
		m.failedFiles,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

// progressFraction maps the processed-item counters to a bar fraction.
// The total item count is unknown until the traversal ends, so the bar
// shows the downloaded share of items handled so far.
func progressFraction(downloaded, processed int32) float64 {
	if processed == 0 {
		return 0
	}
	return float64(downloaded) / float64(processed)
}

func (m Model) viewComplete() string {
	box := boxStyle.Render(fmt.Sprintf(
		"✨ Sync Complete!\n\n"+
			"Downloaded: %d\n"+
			"Skipped: %d\n"+
			"Failed: %d\n"+
			"Size: %.2f MB",
		m.downloadedFiles,
		m.skippedFiles,
		m.failedFiles,
		float64(m.receivedBytes)/1024/1024,
	))
	return box
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateSearching, StateSyncing:
		return "v: verbose • esc: cancel"
	case StateComplete, StateError:
		return "q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, verbose bool) error {
	model, err := NewModel(settings, verbose)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

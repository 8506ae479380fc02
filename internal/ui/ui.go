package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/avelara/portify/internal/pipeline"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunningView ViewState = iota
	ResultView
)

// feedSize caps the rolling per-track outcome feed.
const feedSize = 8

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine *pipeline.Engine
	opts   pipeline.Options

	width  int
	height int

	spinner spinner.Model
	bar     progress.Model
	feed    []string

	progressChan chan pipeline.ProgressUpdate
	progress     pipeline.ProgressUpdate

	report *pipeline.Report
	err    error

	help help.Model
	keys keyMap
}

type progressUpdateMsg pipeline.ProgressUpdate

type runCompleteMsg struct {
	report *pipeline.Report
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *pipeline.Engine, opts pipeline.Options) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	return &Model{
		ctx:     ctx,
		view:    RunningView,
		engine:  engine,
		opts:    opts,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the migration run and begins listening for progress.
func (m *Model) Init() tea.Cmd {
	m.progressChan = make(chan pipeline.ProgressUpdate, 50)

	go func() {
		report, err := m.engine.Run(m.ctx, m.opts, m.progressChan)
		m.report = report
		m.err = err
		close(m.progressChan)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = pipeline.ProgressUpdate(msg)
		if m.progress.Phase == pipeline.SearchTracks && m.progress.Message != "" {
			m.feed = append(m.feed, m.progress.Message)
			if len(m.feed) > feedSize {
				m.feed = m.feed[len(m.feed)-feedSize:]
			}
		}
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.report = msg.report
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunningView:
		return m.renderRunning()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return runCompleteMsg{report: m.report, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRunning() string {
	title := styles.title.Render("Migrating Playlist")

	var phase string
	switch m.progress.Phase {
	case pipeline.FetchSource:
		phase = "Fetching source playlist..."
	case pipeline.SearchTracks:
		phase = fmt.Sprintf("Matching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case pipeline.CreatePlaylist:
		phase = "Creating destination playlist..."
	case pipeline.AppendTracks:
		phase = "Adding tracks..."
	default:
		phase = "Starting..."
	}

	var bar string
	if m.progress.Phase == pipeline.SearchTracks && m.progress.Total > 0 {
		bar = m.bar.ViewAs(float64(m.progress.Step) / float64(m.progress.Total))
	}

	feed := ""
	if len(m.feed) > 0 {
		feed = "\n" + styles.help.Render(strings.Join(m.feed, "\n"))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	return fmt.Sprintf("%s\n%s %s\n%s%s\n\n%s", title, m.spinner.View(), phase, bar, feed, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Migration failed: %v", m.err))
		if m.report != nil {
			body += "\n\n" + pipeline.Summarize(m.report)
		}
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	if m.report == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No report available"), helpView)
	}

	title := styles.ok.Render("✓ Migration Complete")
	summary := pipeline.Summarize(m.report)

	var warn string
	if len(m.report.Unmatched) > 0 {
		warn = styles.warn.Render(fmt.Sprintf("%d tracks could not be matched", len(m.report.Unmatched))) + "\n"
	}

	return fmt.Sprintf("%s\n%s%s\n%s", title, warn, summary, helpView)
}

// Report returns the final report once the run has completed.
func (m *Model) Report() (*pipeline.Report, error) {
	return m.report, m.err
}

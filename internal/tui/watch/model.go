// Package watch provides a TUI dashboard over a search run's state
// directory: checkpoint progress, results found so far, and the run
// log tail, refreshed live as the files change on disk.
package watch

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shipsearch/sss/internal/checkpoint"
	"github.com/shipsearch/sss/internal/results"
	"github.com/shipsearch/sss/internal/rle"
	"github.com/shipsearch/sss/internal/runlock"
	"github.com/shipsearch/sss/internal/runlog"
)

// eventTail is how many run log events one refresh reads.
const eventTail = 200

// refreshEvery is the fallback refresh period. It covers directories
// the file watcher could not register, e.g. ones created after start.
const refreshEvery = 2 * time.Second

// runState is one consistent read of the run's on-disk state.
type runState struct {
	checkpoint *checkpoint.Checkpoint // nil when none exists yet
	lockStatus string
	events     []runlog.Event
	results    []results.Result
	preview    string // decoded lightest pattern, empty when none
}

// Model is the bubbletea model for the watch TUI.
type Model struct {
	stateDir   string
	resultsDir string

	state runState
	err   error

	eventsViewport viewport.Model

	// UI state
	keys        KeyMap
	help        help.Model
	showHelp    bool
	showPreview bool
	width       int
	height      int

	// Change source
	changes   <-chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewModel creates a watch model over the given directories.
func NewModel(stateDir, resultsDir string) *Model {
	h := help.New()
	h.ShowAll = false

	return &Model{
		stateDir:       stateDir,
		resultsDir:     resultsDir,
		eventsViewport: viewport.New(0, 0),
		keys:           DefaultKeyMap(),
		help:           h,
		showPreview:    true,
		done:           make(chan struct{}),
	}
}

// SetChangeChannel connects the file watcher feeding live refreshes.
func (m *Model) SetChangeChannel(ch <-chan struct{}) {
	m.changes = ch
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		m.waitForChange(),
		tick(),
		tea.SetWindowTitle("sss watch"),
	)
}

// refreshMsg carries a fresh read of the on-disk run state.
type refreshMsg struct {
	state runState
	err   error
}

// changeMsg is sent when a watched file changes.
type changeMsg struct{}

// tickMsg fires the periodic fallback refresh.
type tickMsg time.Time

// refresh returns a command that reads the run state in the background.
func (m *Model) refresh() tea.Cmd {
	stateDir, resultsDir := m.stateDir, m.resultsDir
	return func() tea.Msg {
		state, err := loadState(stateDir, resultsDir)
		return refreshMsg{state: state, err: err}
	}
}

// waitForChange returns a command that blocks until a watched file
// changes.
func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	// Capture channels to avoid race with Model mutations
	changes := m.changes
	done := m.done
	return func() tea.Msg {
		select {
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			return changeMsg{}
		case <-done:
			return nil
		}
	}
}

// tick returns a command for the periodic fallback refresh.
func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadState reads checkpoint, lock, run log, and results. Partial
// failures still return whatever loaded so the dashboard degrades
// instead of going blank.
func loadState(stateDir, resultsDir string) (runState, error) {
	var s runState
	var firstErr error

	cp, err := checkpoint.Load(stateDir)
	if err != nil {
		firstErr = fmt.Errorf("reading checkpoint: %w", err)
	}
	s.checkpoint = cp

	s.lockStatus = runlock.Status(stateDir)

	if events, err := runlog.TailEvents(stateDir, eventTail); err == nil {
		s.events = events
	} else if firstErr == nil {
		firstErr = fmt.Errorf("reading run log: %w", err)
	}

	if found, err := results.Scan(resultsDir); err == nil {
		s.results = found
	} else if firstErr == nil {
		firstErr = fmt.Errorf("scanning results: %w", err)
	}

	if len(s.results) > 0 {
		s.preview = loadPreview(s.results[0].Path)
	}

	return s, firstErr
}

// loadPreview decodes the newest pattern block of a result file.
// Preview failures are cosmetic and render as nothing.
func loadPreview(path string) string {
	block, err := results.Latest(path)
	if err != nil {
		return ""
	}
	g, _, err := rle.Decode(block)
	if err != nil {
		return ""
	}
	return g.String()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeViewport()

	case refreshMsg:
		m.state = msg.state
		m.err = msg.err
		// Top panel height depends on the data, so recompute sizes too
		m.resizeViewport()

	case changeMsg:
		cmds = append(cmds, m.refresh(), m.waitForChange())

	case tickMsg:
		cmds = append(cmds, m.refresh(), tick())
	}

	var cmd tea.Cmd
	m.eventsViewport, cmd = m.eventsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes key presses.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeOnce.Do(func() { close(m.done) })
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resizeViewport()
		return m, nil

	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview
		m.resizeViewport()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	}

	// Pass scrolling keys to the events viewport
	var cmd tea.Cmd
	m.eventsViewport, cmd = m.eventsViewport.Update(msg)
	return m, cmd
}

// resizeViewport gives the events viewport whatever height the top
// panels and footer leave over.
func (m *Model) resizeViewport() {
	top := lineCount(m.renderTop())
	footer := 1 // help line
	if m.showHelp {
		footer = 3
	}

	h := m.height - top - footer - 1
	if h < 3 {
		h = 3
	}
	w := m.width
	if w < 20 {
		w = 20
	}

	m.eventsViewport.Width = w
	m.eventsViewport.Height = h
	m.updateViewContent()
}

// updateViewContent refreshes the events viewport, keeping it pinned
// to the newest entries unless the user scrolled away.
func (m *Model) updateViewContent() {
	atBottom := m.eventsViewport.AtBottom()
	m.eventsViewport.SetContent(m.renderEvents())
	if atBottom {
		m.eventsViewport.GotoBottom()
	}
}

// View renders the TUI.
func (m *Model) View() string {
	return m.renderView()
}

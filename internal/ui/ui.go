package ui

import (
	"context"
	"fmt"

	"github.com/NinoBlz/dzx/internal/services"
	"github.com/NinoBlz/dzx/internal/tasks"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DirectionView ViewState = iota
	PlaylistListView
	ConfirmView
	ConvertView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx              context.Context
	view             ViewState
	source           services.Service
	dest             services.Service
	engine           tasks.ConversionEngine
	width            int
	height           int
	directionList    list.Model
	playlistList     list.Model
	playlists        []services.Playlist
	selectedPlaylist *services.Playlist
	progressChan     chan tasks.ProgressUpdate
	progress         tasks.ProgressUpdate
	report           *tasks.ConversionReport
	err              error
	help             help.Model
	keys             keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.yes, k.no},
		{k.restart, k.quit},
	}
}

type playlistsFetchedMsg struct {
	playlists []services.Playlist
	err       error
}

type progressUpdateMsg tasks.ProgressUpdate

type convertCompleteMsg struct {
	report *tasks.ConversionReport
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// spotify and deezer are both offered as sources; the start screen picks the
// direction.
func NewModel(ctx context.Context, spotify, deezer services.Service, engine tasks.ConversionEngine) *Model {
	directions := []list.Item{
		directionItem{label: "Spotify → Deezer", source: spotify, dest: deezer},
		directionItem{label: "Deezer → Spotify", source: deezer, dest: spotify},
	}

	directionList := list.New(directions, list.NewDefaultDelegate(), 0, 0)
	directionList.Title = "Conversion Direction"
	directionList.SetShowStatusBar(false)
	directionList.SetFilteringEnabled(false)

	return &Model{
		ctx:           ctx,
		view:          DirectionView,
		engine:        engine,
		directionList: directionList,
		help:          help.New(),
		keys:          newKeyMap(),
	}
}

// Init initializes the TUI.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.directionList.SetSize(msg.Width-4, msg.Height-8)
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case DirectionView:
			return m.handleDirectionKeys(msg)
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = fmt.Sprintf("%s Playlists", m.source.Name())
		m.playlistList.SetSize(m.width-4, m.height-8)
		m.view = PlaylistListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case convertCompleteMsg:
		m.report = msg.report
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case DirectionView:
		return m.renderDirection()
	case PlaylistListView:
		return m.renderPlaylistList()
	case ConfirmView:
		return m.renderConfirm()
	case ConvertView:
		return m.renderConvert()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleDirectionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected, ok := m.directionList.SelectedItem().(directionItem); ok {
			m.source = selected.source
			m.dest = selected.dest
			return m, m.fetchPlaylists()
		}
	}

	var cmd tea.Cmd
	m.directionList, cmd = m.directionList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = DirectionView
		return m, nil
	case "enter":
		if selected, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			pl := selected.playlist
			m.selectedPlaylist = &pl
			m.view = ConfirmView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PlaylistListView
		return m, nil
	case "y", "enter":
		m.view = ConvertView
		return m, m.startConversion()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = DirectionView
		m.selectedPlaylist = nil
		m.report = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case DirectionView:
		m.directionList, cmd = m.directionList.Update(msg)
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.source.GetPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) startConversion() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		report, err := m.engine.Convert(m.ctx, m.progressChan, m.source, m.dest, m.selectedPlaylist.ID, "")
		m.report = report
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return convertCompleteMsg{report: m.report, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return convertCompleteMsg{report: m.report, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderDirection() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.directionList.View(), helpView)
}

func (m *Model) renderPlaylistList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Convert '%s' to %s?", m.selectedPlaylist.Name, m.dest.Name()))
	info := fmt.Sprintf("\nPlaylist: %s\nTracks: %d\n", m.selectedPlaylist.Name, m.selectedPlaylist.TrackCount)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderConvert() string {
	title := styles.title.Render("Converting Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchSource:
		phase = fmt.Sprintf("Fetching source playlist from %s...", m.source.Name())
	case tasks.SearchTracks:
		phase = fmt.Sprintf("Searching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CreatePlaylist:
		phase = fmt.Sprintf("Creating playlist on %s...", m.dest.Name())
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil && m.report == nil {
		return styles.err.Render(fmt.Sprintf("Conversion failed: %v\n\nPress r to restart, q to quit", m.err))
	}

	if m.report == nil {
		return styles.err.Render("No result available\n\nPress r to restart, q to quit")
	}

	var title string
	switch m.report.Status {
	case tasks.StatusDone:
		title = styles.ok.Render("✓ Conversion Complete!")
	case tasks.StatusPartial:
		title = styles.warn.Render("Playlist created, but adding tracks failed")
	default:
		title = styles.warn.Render("Conversion aborted: nothing to convert")
	}

	info := fmt.Sprintf(
		"\nSource: %s\nDestination: %s\nResolved: %d/%d (%.1f%%)",
		m.report.SourceName,
		m.report.DestName,
		m.report.ResolvedCount,
		m.report.TotalTracks,
		m.report.MatchPercentage(),
	)
	if m.report.PlaylistID != "" {
		info += fmt.Sprintf("\nPlaylist: %s (ID: %s)", m.report.PlaylistName, m.report.PlaylistID)
	}

	var failed string
	if len(m.report.Unresolved) > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Not found (%d):", len(m.report.Unresolved))))
		for _, name := range m.report.Unresolved {
			failed += fmt.Sprintf("\n  • %s", name)
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tracklist/internal/formatter"
	"github.com/desertthunder/tracklist/internal/library"
	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	ExportView
	ResultView
)

// Library is the playlist store the browser reads and deletes from.
type Library interface {
	ListPlaylists(ctx context.Context, ownerID string) ([]*models.Playlist, error)
	ListPlaylistTracks(ctx context.Context, playlistID string) ([]models.PlaylistEntry, error)
	DeletePlaylist(ctx context.Context, name, ownerID string) (*library.Result, error)
}

// Options configure a [Model].
type Options struct {
	OwnerID   string
	Owner     string                // Display name of the owner
	Engine    *tasks.PlaylistEngine // Enables exporting when set
	Format    formatter.Format
	OutputDir string
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	library      Library
	opts         Options
	width        int
	height       int
	playlistList list.Model
	trackList    list.Model
	selected     *models.Playlist
	entries      []models.PlaylistEntry
	progressChan chan tasks.ProgressUpdate
	exportDone   chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.BulkExportResult
	notice       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model browsing the playlists of opts.OwnerID.
func NewModel(ctx context.Context, lib Library, opts Options) *Model {
	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		library:      lib,
		opts:         opts,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		trackList:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the TUI by fetching the owner's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ExportView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.playlists))
		for i, pl := range data.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		cmd := m.playlistList.SetItems(items)
		m.playlistList.Title = m.playlistTitle()
		return m, cmd

	case MsgTracksFetched:
		data := msg.data.(tracksFetched)
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selected = data.playlist
		m.entries = data.entries
		items := make([]list.Item, len(data.entries))
		for i, entry := range data.entries {
			items[i] = trackItem{entry: entry}
		}
		cmd := m.trackList.SetItems(items)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", data.playlist.Name())
		m.view = TrackListView
		return m, cmd

	case MsgPlaylistDeleted:
		data := msg.data.(playlistDeleted)
		m.view = PlaylistListView
		m.selected = nil
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.notice = ""
		for _, n := range data.result.Notices {
			m.notice = string(n)
		}
		return m, m.fetchPlaylists()

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgExportComplete:
		data := msg.data.(exportComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.exportDone = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) selectedPlaylist() *models.Playlist {
	if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
		return item.playlist
	}
	return nil
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl := m.selectedPlaylist(); pl != nil {
			m.notice = ""
			return m, m.fetchTracks(pl)
		}
	case key.Matches(msg, m.keys.remove):
		if pl := m.selectedPlaylist(); pl != nil {
			m.selected = pl
			m.view = ConfirmView
			return m, nil
		}
	case key.Matches(msg, m.keys.export):
		if pl := m.selectedPlaylist(); pl != nil && m.opts.Engine != nil {
			m.selected = pl
			m.view = ExportView
			return m, m.startExport(pl)
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.remove):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		return m, m.deletePlaylist(m.selected)
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlaylistListView
		m.selected = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.library.ListPlaylists(m.ctx, m.opts.OwnerID)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchTracks(pl *models.Playlist) tea.Cmd {
	return func() tea.Msg {
		entries, err := m.library.ListPlaylistTracks(m.ctx, pl.ID())
		return tracksFetchedMsg(pl, entries, err)
	}
}

func (m *Model) deletePlaylist(pl *models.Playlist) tea.Cmd {
	if pl == nil {
		return nil
	}
	return func() tea.Msg {
		result, err := m.library.DeletePlaylist(m.ctx, pl.Name(), m.opts.OwnerID)
		return playlistDeletedMsg(result, err)
	}
}

// startExport runs the export in the background; completion arrives once the progress channel closes.
func (m *Model) startExport(pl *models.Playlist) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress

	go func() {
		result, err := m.opts.Engine.BulkExport(m.ctx, progress, m.opts.OwnerID, tasks.BulkExportOpts{
			Format:      m.opts.Format,
			OutputDir:   m.opts.OutputDir,
			PlaylistIDs: []string{pl.ID()},
		})
		done <- exportCompleteMsg(result, err)
		close(progress)
	}()

	m.exportDone = done
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.exportDone
	return func() tea.Msg {
		if progress != nil {
			if update, ok := <-progress; ok {
				return progressUpdateMsg(update)
			}
		}
		return <-done
	}
}

func (m *Model) playlistTitle() string {
	if m.opts.Owner != "" {
		return fmt.Sprintf("%s's playlists", m.opts.Owner)
	}
	return "Playlists"
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.remove}
	if m.opts.Engine != nil {
		helpKeys = append(helpKeys, m.keys.export)
	}
	helpKeys = append(helpKeys, m.keys.quit)
	helpView := m.help.ShortHelpView(helpKeys)

	view := m.playlistList.View()
	if m.notice != "" {
		view = styles.ok.Render(m.notice) + "\n\n" + view
	}
	return fmt.Sprintf("%s\n\n%s", view, helpView)
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.remove, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	summary := styles.help.Render("This playlist is empty.")
	if len(m.entries) > 0 {
		export := models.PlaylistExport{Tracks: m.entries}
		avg := models.Rating(export.AverageRating() + 0.5)
		summary = styles.Rating(avg).Render(fmt.Sprintf("%d tracks • average rating %.1f", len(m.entries), export.AverageRating()))
	}
	return fmt.Sprintf("%s\n%s\n\n%s", m.trackList.View(), summary, helpView)
}

func (m *Model) renderConfirm() string {
	if m.selected == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.selected.Name()))
	info := styles.warn.Render("\nThe playlist and its track list will be removed. Tracks stay in your library.\n")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPlaylists:
		phase = "Fetching playlists..."
	case tasks.ExportPlaylist:
		phase = fmt.Sprintf("Exporting (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render("✓ Export Complete!"))
	fmt.Fprintf(&b, "\n\nOutput: %s\n", m.result.OutputDirectory)

	for _, res := range m.result.Results {
		if !res.Success {
			b.WriteString(styles.warn.Render(fmt.Sprintf("\n✗ %s: %v", res.PlaylistName, res.Error)))
			continue
		}
		for _, f := range res.Files {
			fmt.Fprintf(&b, "\n  • %s", f)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	fmt.Fprintf(&b, "\n\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

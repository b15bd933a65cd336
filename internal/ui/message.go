package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tracklist/internal/library"
	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgTracksFetched
	MsgPlaylistDeleted
	MsgProgressUpdate
	MsgExportComplete
)

type playlistsFetched struct {
	playlists []*models.Playlist
	err       error
}

type tracksFetched struct {
	playlist *models.Playlist
	entries  []models.PlaylistEntry
	err      error
}

type playlistDeleted struct {
	result *library.Result
	err    error
}

type exportComplete struct {
	result *tasks.BulkExportResult
	err    error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []*models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsFetched{playlists, err}}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(playlist *models.Playlist, entries []models.PlaylistEntry, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: tracksFetched{playlist, entries, err}}
}

// playlistDeletedMsg is the constructor for [MsgPlaylistDeleted]
func playlistDeletedMsg(result *library.Result, err error) Msg {
	return Msg{kind: MsgPlaylistDeleted, data: playlistDeleted{result, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *tasks.BulkExportResult, err error) Msg {
	return Msg{kind: MsgExportComplete, data: exportComplete{result, err}}
}

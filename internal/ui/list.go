package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/tracklist/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist *models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name() }
func (i playlistItem) Title() string       { return i.playlist.Name() }
func (i playlistItem) Description() string {
	return "created " + i.playlist.CreatedAt().Format("Jan 2, 2006")
}

// trackItem wraps [models.PlaylistEntry] to implement [list.Item].
type trackItem struct {
	entry models.PlaylistEntry
}

func (i trackItem) FilterValue() string { return i.entry.Title }
func (i trackItem) Title() string       { return i.entry.Title }
func (i trackItem) Description() string {
	return fmt.Sprintf("%s • %d/%d", i.entry.Artist, i.entry.Rating, models.MaxRating)
}

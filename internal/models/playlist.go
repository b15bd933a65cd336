package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tracklist/internal/shared"
)

// Playlist is a named, owner-scoped collection of tracks. Names are unique per owner.
type Playlist struct {
	base
	userID string
	name   string
}

func NewPlaylist(sequence int, userID, name string) *Playlist {
	return &Playlist{base: newBase(sequence), userID: userID, name: name}
}

func (p *Playlist) UserID() string { return p.userID }
func (p *Playlist) Name() string   { return p.name }

// OwnedBy reports whether userID owns the playlist.
func (p *Playlist) OwnedBy(userID string) bool {
	return userID != "" && p.userID == userID
}

func (p *Playlist) Validate() error {
	if strings.TrimSpace(p.name) == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	if p.userID == "" {
		return fmt.Errorf("%w: playlist %q has no owner", shared.ErrInvalidInput, p.name)
	}
	return nil
}

func (p *Playlist) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
	}{p.id, p.name, p.createdAt})
}

// PlaylistEntry is a playlist member joined with its artist.
type PlaylistEntry struct {
	TrackID string    `json:"track_id"`
	Title   string    `json:"title"`
	Artist  string    `json:"artist"`
	Rating  Rating    `json:"rating"`
	AddedAt time.Time `json:"added_at"`
}

// PlaylistExport represents a playlist with its complete track listing.
type PlaylistExport struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Owner      string          `json:"owner,omitempty"`
	Tracks     []PlaylistEntry `json:"tracks"`
	ExportedAt time.Time       `json:"exported_at"`
}

// AverageRating returns the mean rating across all entries, or 0 for an empty playlist.
func (e *PlaylistExport) AverageRating() float64 {
	if len(e.Tracks) == 0 {
		return 0
	}
	sum := 0
	for _, t := range e.Tracks {
		sum += t.Rating.Int()
	}
	return float64(sum) / float64(len(e.Tracks))
}

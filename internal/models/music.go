package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tracklist/internal/shared"
)

// Artist is a performer. Names are matched exactly, including case.
type Artist struct {
	base
	name string
}

func NewArtist(sequence int, name string) *Artist {
	return &Artist{base: newBase(sequence), name: name}
}

func (a *Artist) Name() string { return a.name }

func (a *Artist) Validate() error {
	if strings.TrimSpace(a.name) == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrInvalidInput)
	}
	return nil
}

func (a *Artist) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}{a.id, a.name})
}

// Track is a song identified by its title alone.
//
// Re-adding a known title overwrites its rating but never rebinds the artist.
type Track struct {
	base
	title    string
	artistID string
	rating   Rating
}

func NewTrack(sequence int, title, artistID string, rating Rating) *Track {
	return &Track{base: newBase(sequence), title: title, artistID: artistID, rating: rating}
}

func (t *Track) Title() string    { return t.title }
func (t *Track) ArtistID() string { return t.artistID }
func (t *Track) Rating() Rating   { return t.rating }

// SetRating overwrites the rating and bumps the update timestamp.
func (t *Track) SetRating(r Rating) {
	t.rating = r
	t.touch()
}

func (t *Track) Validate() error {
	if strings.TrimSpace(t.title) == "" {
		return fmt.Errorf("%w: track title is required", shared.ErrInvalidInput)
	}
	if t.artistID == "" {
		return fmt.Errorf("%w: track %q has no artist", shared.ErrInvalidInput, t.title)
	}
	if !t.rating.Valid() {
		return fmt.Errorf("%w: %d", shared.ErrInvalidRating, t.rating)
	}
	return nil
}

func (t *Track) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		ArtistID  string    `json:"artist_id"`
		Rating    Rating    `json:"rating"`
		UpdatedAt time.Time `json:"updated_at"`
	}{t.id, t.title, t.artistID, t.rating, t.updatedAt})
}

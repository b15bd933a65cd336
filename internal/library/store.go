package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/repositories"
	"github.com/desertthunder/tracklist/internal/shared"
)

// Store provides get-or-create access to artists and tracks.
type Store struct {
	artists *repositories.ArtistRepository
	tracks  *repositories.TrackRepository
	logger  *log.Logger
}

// NewStore creates a [Store] over db.
func NewStore(db *sql.DB, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		artists: repositories.NewArtistRepository(db),
		tracks:  repositories.NewTrackRepository(db),
		logger:  logger,
	}
}

// GetOrCreateArtist returns the artist with exactly this name, creating it when absent.
func (s *Store) GetOrCreateArtist(ctx context.Context, name string) (*models.Artist, bool, error) {
	artist, created, err := s.artists.GetOrCreate(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Debug("created artist", "name", name, "id", artist.ID())
	}
	return artist, created, nil
}

// GetArtist returns the artist with exactly this name.
func (s *Store) GetArtist(ctx context.Context, name string) (*models.Artist, error) {
	return s.artists.GetByName(ctx, name)
}

// GetOrCreateTrack returns the track with this title, overwriting its rating.
//
// A new track is bound to the existing artist named artistName; when that artist
// does not exist the call fails with [shared.ErrArtistNotFound]. An existing title
// keeps its original artist whatever artistName says.
func (s *Store) GetOrCreateTrack(ctx context.Context, title, artistName string, rating models.Rating) (*models.Track, error) {
	if !rating.Valid() {
		return nil, fmt.Errorf("%w: %d", shared.ErrInvalidRating, rating)
	}

	updated, err := s.tracks.UpdateRating(ctx, title, rating)
	if err != nil {
		return nil, err
	}
	if updated {
		return s.tracks.GetByTitle(ctx, title)
	}

	artist, err := s.artists.GetByName(ctx, artistName)
	if err != nil {
		return nil, err
	}

	track, err := s.tracks.Upsert(ctx, title, artist.ID(), rating)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created track", "title", title, "artist", artistName, "rating", rating)
	return track, nil
}

// UpdateRating overwrites the rating of the track with this title.
//
// It reports false, without error, when there is no such track.
func (s *Store) UpdateRating(ctx context.Context, title string, rating models.Rating) (bool, error) {
	updated, err := s.tracks.UpdateRating(ctx, title, rating)
	if err != nil {
		return false, err
	}
	if !updated {
		s.logger.Debug("rating update skipped; no such track", "title", title)
	}
	return updated, nil
}

// GetTrack returns the track with this title, or [shared.ErrTrackNotFound].
func (s *Store) GetTrack(ctx context.Context, title string) (*models.Track, error) {
	return s.tracks.GetByTitle(ctx, title)
}

// TrackExists reports whether a track with this title is stored.
func (s *Store) TrackExists(ctx context.Context, title string) (bool, error) {
	_, err := s.tracks.GetByTitle(ctx, title)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, shared.ErrTrackNotFound):
		return false, nil
	default:
		return false, err
	}
}

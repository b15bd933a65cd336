package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/shared"
)

const trackColumns = "id, sequence, title, artist_id, rating, created_at, updated_at"

// TrackRepository implements [models.Repository] for [models.Track] persistence.
//
// Tracks are keyed by title: the same title can exist only once regardless of artist.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new [TrackRepository] with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new track. A title that already exists yields [shared.ErrDuplicate] and
// a missing artist yields [shared.ErrArtistNotFound].
func (r *TrackRepository) Create(ctx context.Context, track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO tracks (id, sequence, title, artist_id, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id, sequence, track.Title(), track.ArtistID(), track.Rating().Int(), track.CreatedAt(), track.UpdatedAt(),
	)
	if err != nil {
		return r.insertError(track, err)
	}

	track.SetID(id)
	track.SetSequence(sequence)
	return nil
}

// Upsert inserts a track bound to artistID or, when the title already exists, overwrites
// its rating and leaves the original artist in place.
func (r *TrackRepository) Upsert(ctx context.Context, title, artistID string, rating models.Rating) (*models.Track, error) {
	track := models.NewTrack(0, title, artistID, rating)
	if err := track.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "tracks")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO tracks (id, sequence, title, artist_id, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		shared.GenerateID(), sequence, title, artistID, rating.Int(), track.CreatedAt(), track.UpdatedAt(),
	)
	if err != nil {
		return nil, r.insertError(track, err)
	}

	return r.GetByTitle(ctx, title)
}

// UpdateRating overwrites the rating of the track with this title.
//
// It reports false without error when no such track exists.
func (r *TrackRepository) UpdateRating(ctx context.Context, title string, rating models.Rating) (bool, error) {
	if !rating.Valid() {
		return false, fmt.Errorf("%w: %d", shared.ErrInvalidRating, rating)
	}

	query := `UPDATE tracks SET rating = ?, updated_at = ? WHERE title = ?`

	result, err := r.db.ExecContext(ctx, query, rating.Int(), time.Now().UTC(), title)
	if err != nil {
		return false, fmt.Errorf("failed to update track rating: %w", err)
	}
	return affected(result)
}

// Get retrieves a track by ID
func (r *TrackRepository) Get(ctx context.Context, id string) (*models.Track, error) {
	query := "SELECT " + trackColumns + " FROM tracks WHERE id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByTitle retrieves a track by exact title
func (r *TrackRepository) GetByTitle(ctx context.Context, title string) (*models.Track, error) {
	query := "SELECT " + trackColumns + " FROM tracks WHERE title = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, query, title), title)
}

// List retrieves tracks in creation order. Supports the "artist_id" criterion.
func (r *TrackRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Track, error) {
	query := "SELECT " + trackColumns + " FROM tracks WHERE 1 = 1"
	args := []any{}

	if artistID, ok := criteria["artist_id"].(string); ok && artistID != "" {
		query += " AND artist_id = ?"
		args = append(args, artistID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

func (r *TrackRepository) insertError(track *models.Track, err error) error {
	switch {
	case shared.IsUniqueViolation(err):
		return fmt.Errorf("%w: track %q", shared.ErrDuplicate, track.Title())
	case shared.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: id %s", shared.ErrArtistNotFound, track.ArtistID())
	default:
		return fmt.Errorf("failed to insert track: %w", err)
	}
}

func (r *TrackRepository) scanOne(row *sql.Row, key string) (*models.Track, error) {
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query track: %w", err)
	}
	return track, nil
}

func scanTrack(s scanner) (*models.Track, error) {
	var (
		id        string
		sequence  int
		title     string
		artistID  string
		rating    int
		createdAt time.Time
		updatedAt time.Time
	)

	if err := s.Scan(&id, &sequence, &title, &artistID, &rating, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	track := models.NewTrack(sequence, title, artistID, models.Rating(rating))
	track.SetID(id)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)
	return track, nil
}

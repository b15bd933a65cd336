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

const artistColumns = "id, sequence, name, created_at, updated_at"

// ArtistRepository implements [models.Repository] for [models.Artist] persistence.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new [ArtistRepository] with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts a new artist; a name that already exists yields [shared.ErrDuplicate].
func (r *ArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	created, err := r.insert(ctx, artist)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%w: artist %q", shared.ErrDuplicate, artist.Name())
	}
	return nil
}

// GetOrCreate returns the artist with exactly this name, inserting it when absent.
//
// The boolean reports whether this call created the row.
func (r *ArtistRepository) GetOrCreate(ctx context.Context, name string) (*models.Artist, bool, error) {
	created, err := r.insert(ctx, models.NewArtist(0, name))
	if err != nil {
		return nil, false, err
	}

	artist, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return artist, created, nil
}

// insert writes artist unless the name is taken; it reports whether a row was written.
func (r *ArtistRepository) insert(ctx context.Context, artist *models.Artist) (bool, error) {
	if err := artist.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "artists")
	if err != nil {
		return false, fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO artists (id, sequence, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, id, sequence, artist.Name(), artist.CreatedAt(), artist.UpdatedAt())
	if err != nil {
		return false, fmt.Errorf("failed to insert artist: %w", err)
	}

	created, err := affected(result)
	if err != nil {
		return false, err
	}
	if created {
		artist.SetID(id)
		artist.SetSequence(sequence)
	}
	return created, nil
}

// Get retrieves an artist by ID
func (r *ArtistRepository) Get(ctx context.Context, id string) (*models.Artist, error) {
	query := "SELECT " + artistColumns + " FROM artists WHERE id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByName retrieves an artist by exact (case-sensitive) name
func (r *ArtistRepository) GetByName(ctx context.Context, name string) (*models.Artist, error) {
	query := "SELECT " + artistColumns + " FROM artists WHERE name = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, query, name), name)
}

// List retrieves all artists in creation order. Supports the "name" criterion.
func (r *ArtistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Artist, error) {
	query := "SELECT " + artistColumns + " FROM artists WHERE 1 = 1"
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []*models.Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

func (r *ArtistRepository) scanOne(row *sql.Row, key string) (*models.Artist, error) {
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artist: %w", err)
	}
	return artist, nil
}

func scanArtist(s scanner) (*models.Artist, error) {
	var (
		id        string
		sequence  int
		name      string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := s.Scan(&id, &sequence, &name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	artist := models.NewArtist(sequence, name)
	artist.SetID(id)
	artist.SetCreatedAt(createdAt)
	artist.SetUpdatedAt(updatedAt)
	return artist, nil
}

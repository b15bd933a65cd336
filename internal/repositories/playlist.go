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

const playlistColumns = "id, sequence, user_id, name, created_at, updated_at"

// PlaylistRepository implements [models.Repository] for [models.Playlist] persistence and
// owns the playlist_tracks membership table.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist; a name the owner already uses yields [shared.ErrDuplicate].
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	created, err := r.insert(ctx, playlist)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%w: playlist %q", shared.ErrDuplicate, playlist.Name())
	}
	return nil
}

// GetOrCreate returns the owner's playlist with this name, inserting it when absent.
//
// The boolean reports whether this call created the row.
func (r *PlaylistRepository) GetOrCreate(ctx context.Context, userID, name string) (*models.Playlist, bool, error) {
	created, err := r.insert(ctx, models.NewPlaylist(0, userID, name))
	if err != nil {
		return nil, false, err
	}

	playlist, err := r.GetByName(ctx, userID, name)
	if err != nil {
		return nil, false, err
	}
	return playlist, created, nil
}

func (r *PlaylistRepository) insert(ctx context.Context, playlist *models.Playlist) (bool, error) {
	if err := playlist.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "playlists")
	if err != nil {
		return false, fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO playlists (id, sequence, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, name) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		id, sequence, playlist.UserID(), playlist.Name(), playlist.CreatedAt(), playlist.UpdatedAt(),
	)
	if shared.IsForeignKeyViolation(err) {
		return false, fmt.Errorf("%w: %s", shared.ErrUserNotFound, playlist.UserID())
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert playlist: %w", err)
	}

	created, err := affected(result)
	if err != nil {
		return false, err
	}
	if created {
		playlist.SetID(id)
		playlist.SetSequence(sequence)
	}
	return created, nil
}

// Get retrieves a playlist by ID
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByName retrieves the owner's playlist with this exact name
func (r *PlaylistRepository) GetByName(ctx context.Context, userID, name string) (*models.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE user_id = ? AND name = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, name), name)
}

// List retrieves playlists in creation order. Supports the "user_id" and "name" criteria.
func (r *PlaylistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists WHERE 1 = 1"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// Delete removes a playlist and its membership rows. Tracks and artists are untouched.
//
// It reports false without error when the playlist does not exist.
func (r *PlaylistRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete playlist tracks: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete playlist: %w", err)
	}

	deleted, err := affected(result)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit playlist delete: %w", err)
	}
	return deleted, nil
}

// AddTrack links a track to a playlist. It reports false when the link already existed.
func (r *PlaylistRepository) AddTrack(ctx context.Context, playlistID, trackID string) (bool, error) {
	query := `
		INSERT INTO playlist_tracks (playlist_id, track_id, added_at)
		VALUES (?, ?, ?)
		ON CONFLICT(playlist_id, track_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, playlistID, trackID, time.Now().UTC())
	if shared.IsForeignKeyViolation(err) {
		return false, fmt.Errorf("%w: playlist %s or track %s", shared.ErrPlaylistNotFound, playlistID, trackID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to add track to playlist: %w", err)
	}
	return affected(result)
}

// Tracks lists a playlist's members with their artist names, oldest addition first.
func (r *PlaylistRepository) Tracks(ctx context.Context, playlistID string) ([]models.PlaylistEntry, error) {
	query := `
		SELECT t.id, t.title, a.name, t.rating, pt.added_at
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		JOIN artists a ON a.id = t.artist_id
		WHERE pt.playlist_id = ?
		ORDER BY pt.added_at ASC, t.sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	entries := []models.PlaylistEntry{}
	for rows.Next() {
		var (
			entry  models.PlaylistEntry
			rating int
		)
		if err := rows.Scan(&entry.TrackID, &entry.Title, &entry.Artist, &rating, &entry.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		entry.Rating = models.Rating(rating)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// CountTracks returns the number of tracks in a playlist
func (r *PlaylistRepository) CountTracks(ctx context.Context, playlistID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?", playlistID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count playlist tracks: %w", err)
	}
	return count, nil
}

func (r *PlaylistRepository) scanOne(row *sql.Row, key string) (*models.Playlist, error) {
	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}
	return playlist, nil
}

func scanPlaylist(s scanner) (*models.Playlist, error) {
	var (
		id        string
		sequence  int
		userID    string
		name      string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := s.Scan(&id, &sequence, &userID, &name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	playlist := models.NewPlaylist(sequence, userID, name)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	return playlist, nil
}

package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/repositories"
	"github.com/desertthunder/tracklist/internal/shared"
)

// Notice is a user-facing message produced by an operation.
type Notice string

// NoticeExists reports that the owner already has a playlist called name.
func NoticeExists(name string) Notice {
	return Notice("You already have a playlist called " + name)
}

func NoticeCreated() Notice {
	return "Playlist created!"
}

func NoticeDeleted(name string) Notice {
	return Notice(fmt.Sprintf("Deleted %s from your playlists!", name))
}

func NoticeAdded(title, playlist string, rating models.Rating) Notice {
	return Notice(fmt.Sprintf("%s added to %s with a rating of %d", title, playlist, rating))
}

func NoticeRated(title string) Notice {
	return Notice("Updated rating of " + title)
}

// Result describes the outcome of a playlist operation.
type Result struct {
	Playlist *models.Playlist
	Track    *models.Track
	Created  bool
	Added    bool
	Deleted  bool
	Notices  []Notice
}

func (r *Result) notify(n Notice) {
	r.Notices = append(r.Notices, n)
}

// AddTrack is the input to [PlaylistManager.AddTrackToPlaylist].
type AddTrack struct {
	Title    string
	Artist   string
	Playlist string
	Rating   models.Rating
	OwnerID  string
}

// PlaylistManager manages owner-scoped playlists and their membership.
type PlaylistManager struct {
	store     *Store
	playlists *repositories.PlaylistRepository
	logger    *log.Logger
}

// NewPlaylistManager creates a [PlaylistManager] over db that resolves artists and tracks through store.
func NewPlaylistManager(db *sql.DB, store *Store, logger *log.Logger) *PlaylistManager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistManager{
		store:     store,
		playlists: repositories.NewPlaylistRepository(db),
		logger:    logger,
	}
}

// GetOrCreatePlaylist returns the owner's playlist called name, creating it when absent.
func (m *PlaylistManager) GetOrCreatePlaylist(ctx context.Context, name, ownerID string) (*Result, error) {
	playlist, created, err := m.playlists.GetOrCreate(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}

	result := &Result{Playlist: playlist, Created: created}
	if created {
		m.logger.Info("created playlist", "name", name, "owner", ownerID)
		result.notify(NoticeCreated())
	} else {
		result.notify(NoticeExists(name))
	}
	return result, nil
}

// AddTrackToPlaylist resolves the artist and track (overwriting the rating), then adds the
// track to the owner's playlist unless it is already a member.
//
// The playlist must already exist for this owner, otherwise [shared.ErrPlaylistNotFound].
// The confirmation notice is emitted on every call, including repeats.
func (m *PlaylistManager) AddTrackToPlaylist(ctx context.Context, in AddTrack) (*Result, error) {
	if !in.Rating.Valid() {
		return nil, fmt.Errorf("%w: %d", shared.ErrInvalidRating, in.Rating)
	}

	if _, _, err := m.store.GetOrCreateArtist(ctx, in.Artist); err != nil {
		return nil, err
	}

	track, err := m.store.GetOrCreateTrack(ctx, in.Title, in.Artist, in.Rating)
	if err != nil {
		return nil, err
	}

	playlist, err := m.playlists.GetByName(ctx, in.OwnerID, in.Playlist)
	if err != nil {
		return nil, err
	}

	added, err := m.playlists.AddTrack(ctx, playlist.ID(), track.ID())
	if err != nil {
		return nil, err
	}

	result := &Result{Playlist: playlist, Track: track, Added: added}
	result.notify(NoticeAdded(in.Title, in.Playlist, in.Rating))
	return result, nil
}

// DeletePlaylist removes the owner's playlist called name and its membership rows.
//
// A missing playlist is not an error: the result has Deleted false and no notice.
func (m *PlaylistManager) DeletePlaylist(ctx context.Context, name, ownerID string) (*Result, error) {
	playlist, err := m.playlists.GetByName(ctx, ownerID, name)
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		return &Result{}, nil
	}
	if err != nil {
		return nil, err
	}

	deleted, err := m.playlists.Delete(ctx, playlist.ID())
	if err != nil {
		return nil, err
	}

	result := &Result{Playlist: playlist, Deleted: deleted}
	if deleted {
		m.logger.Info("deleted playlist", "name", name, "owner", ownerID)
		result.notify(NoticeDeleted(name))
	}
	return result, nil
}

// ListPlaylists returns every playlist owned by ownerID.
func (m *PlaylistManager) ListPlaylists(ctx context.Context, ownerID string) ([]*models.Playlist, error) {
	playlists, err := m.playlists.List(ctx, map[string]any{"user_id": ownerID})
	if err != nil {
		return nil, err
	}
	if playlists == nil {
		playlists = []*models.Playlist{}
	}
	return playlists, nil
}

// ListPlaylistTracks returns the members of a playlist with their artist names.
func (m *PlaylistManager) ListPlaylistTracks(ctx context.Context, playlistID string) ([]models.PlaylistEntry, error) {
	return m.playlists.Tracks(ctx, playlistID)
}

// GetPlaylistByID returns a playlist by id only when ownerID owns it; other owners
// see [shared.ErrPlaylistNotFound].
func (m *PlaylistManager) GetPlaylistByID(ctx context.Context, playlistID, ownerID string) (*models.Playlist, error) {
	playlist, err := m.playlists.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if !playlist.OwnedBy(ownerID) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return playlist, nil
}

// GetPlaylistByName returns the owner's playlist called name.
func (m *PlaylistManager) GetPlaylistByName(ctx context.Context, name, ownerID string) (*models.Playlist, error) {
	return m.playlists.GetByName(ctx, ownerID, name)
}

// UpdateRating overwrites a track's rating and reports whether a track matched.
func (m *PlaylistManager) UpdateRating(ctx context.Context, title string, rating models.Rating) (*Result, error) {
	updated, err := m.store.UpdateRating(ctx, title, rating)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if updated {
		result.notify(NoticeRated(title))
	}
	return result, nil
}

// ExportPlaylist returns a playlist together with all of its entries.
func (m *PlaylistManager) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	playlist, err := m.playlists.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	entries, err := m.playlists.Tracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	return &models.PlaylistExport{
		ID:         playlist.ID(),
		Name:       playlist.Name(),
		Owner:      playlist.UserID(),
		Tracks:     entries,
		ExportedAt: time.Now().UTC(),
	}, nil
}

package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tracklist/internal/library"
	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/services"
	"github.com/desertthunder/tracklist/internal/shared"
)

// PlaylistSource is the playlist store the engine works against.
//
// [library.PlaylistManager] implements it.
type PlaylistSource interface {
	ListPlaylists(ctx context.Context, ownerID string) ([]*models.Playlist, error)
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)
	GetOrCreatePlaylist(ctx context.Context, name, ownerID string) (*library.Result, error)
	AddTrackToPlaylist(ctx context.Context, in library.AddTrack) (*library.Result, error)
}

// PlaylistEngine runs bulk playlist operations.
type PlaylistEngine struct {
	playlists PlaylistSource
	metadata  services.MetadataService
	logger    *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine. metadata may be nil when no operation needs it.
func NewPlaylistEngine(playlists PlaylistSource, metadata services.MetadataService, logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistEngine{
		playlists: playlists,
		metadata:  metadata,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SeedResult reports what [PlaylistEngine.SeedFromChart] did.
type SeedResult struct {
	Playlist *models.Playlist
	Created  bool
	Added    int // Tracks that were not yet members
	Existing int // Tracks already in the playlist (rating still overwritten)
	Failed   []SeedFailure
}

// SeedFailure is one charted track that could not be added.
type SeedFailure struct {
	Track services.TopTrack
	Error error
}

// SeedFromChart adds every current top track to the owner's playlist called name, creating it if needed.
//
// Each track is stored with rating. A track that fails is recorded and the rest still run.
func (e *PlaylistEngine) SeedFromChart(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	ownerID, name string,
	rating models.Rating,
) (*SeedResult, error) {
	if e.metadata == nil {
		return nil, fmt.Errorf("%w: metadata service not initialized", shared.ErrServiceUnavailable)
	}
	if !rating.Valid() {
		return nil, fmt.Errorf("%w: %d", shared.ErrInvalidRating, rating)
	}

	e.sendProgress(progress, fetchChartUpdate(e.metadata.Name()))
	top, err := e.metadata.TopTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top tracks: %w", err)
	}

	created, err := e.playlists.GetOrCreatePlaylist(ctx, name, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare playlist: %w", err)
	}

	result := &SeedResult{Playlist: created.Playlist, Created: created.Created}
	e.sendProgress(progress, createPlaylistUpdate(created.Playlist, created.Created))

	for i, track := range top {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		added, err := e.playlists.AddTrackToPlaylist(ctx, library.AddTrack{
			Title:    track.Name,
			Artist:   track.Artist,
			Playlist: name,
			Rating:   rating,
			OwnerID:  ownerID,
		})
		e.sendProgress(progress, addTrackUpdate(i+1, len(top), track, err))

		switch {
		case err != nil:
			e.logger.Warn("failed to seed track", "track", track.Label(), "error", err)
			result.Failed = append(result.Failed, SeedFailure{Track: track, Error: err})
		case added.Added:
			result.Added++
		default:
			result.Existing++
		}
	}

	return result, nil
}

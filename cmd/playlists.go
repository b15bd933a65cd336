package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tracklist/internal/formatter"
	"github.com/desertthunder/tracklist/internal/library"
	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/shared"
	"github.com/desertthunder/tracklist/internal/tasks"
)

// playlistArg returns the trimmed "name" argument, which every playlist subcommand but add requires.
func playlistArg(cmd *cli.Command) (string, error) {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return "", fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}
	return name, nil
}

// openAs opens the database and resolves the --user owner.
func (r *Runner) openAs(ctx context.Context, cmd *cli.Command) (*models.User, error) {
	if err := r.open(ctx, cmd); err != nil {
		return nil, err
	}
	return r.owner(ctx, cmd)
}

func (r *Runner) writeNotices(result *library.Result) {
	for _, n := range result.Notices {
		r.writePlain("%s\n", n)
	}
}

// PlaylistCreate creates a playlist, or reports that the owner already has one by that name.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name, err := playlistArg(cmd)
	if err != nil {
		return err
	}

	user, err := r.openAs(ctx, cmd)
	if err != nil {
		return err
	}

	result, err := r.playlists.GetOrCreatePlaylist(ctx, name, user.ID())
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	r.writeNotices(result)
	return nil
}

// PlaylistList prints the owner's playlists with their track counts.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	user, err := r.openAs(ctx, cmd)
	if err != nil {
		return err
	}

	playlists, err := r.playlists.ListPlaylists(ctx, user.ID())
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		entries, err := r.playlists.ListPlaylistTracks(ctx, p.ID())
		if err != nil {
			return fmt.Errorf("failed to count tracks of %s: %w", p.Name(), err)
		}
		r.writePlain("%d. %s (%d tracks)\n", i+1, p.Name(), len(entries))
		r.writePlain("   ID: %s\n", p.ID())
	}
	return nil
}

// PlaylistTracks prints the members of one of the owner's playlists.
func (r *Runner) PlaylistTracks(ctx context.Context, cmd *cli.Command) error {
	name, err := playlistArg(cmd)
	if err != nil {
		return err
	}

	user, err := r.openAs(ctx, cmd)
	if err != nil {
		return err
	}

	playlist, err := r.playlists.GetPlaylistByName(ctx, name, user.ID())
	if err != nil {
		return err
	}

	entries, err := r.playlists.ListPlaylistTracks(ctx, playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlainHeader(playlist.Name())
	if len(entries) == 0 {
		r.writePlain("This playlist is empty.\n")
		return nil
	}
	for i, e := range entries {
		r.writePlain("%d. %s - %s (%d/10)\n", i+1, e.Artist, e.Title, e.Rating)
	}
	return nil
}

// PlaylistAdd stores the track with its rating and adds it to the named playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	artist := strings.TrimSpace(cmd.StringArg("artist"))
	if title == "" || artist == "" {
		return fmt.Errorf("%w: track title and artist are required", shared.ErrMissingArgument)
	}

	rating, err := models.NewRating(cmd.Int("rating"))
	if err != nil {
		return err
	}

	user, err := r.openAs(ctx, cmd)
	if err != nil {
		return err
	}

	result, err := r.playlists.AddTrackToPlaylist(ctx, library.AddTrack{
		Title:    title,
		Artist:   artist,
		Playlist: cmd.String("playlist"),
		Rating:   rating,
		OwnerID:  user.ID(),
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", title, err)
	}

	r.writeNotices(result)
	if !result.Added {
		r.writePlain("(already in %s, rating updated)\n", result.Playlist.Name())
	}
	return nil
}

// PlaylistDelete deletes the owner's playlist by name. Deleting a missing playlist does nothing.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	name, err := playlistArg(cmd)
	if err != nil {
		return err
	}

	user, err := r.openAs(ctx, cmd)
	if err != nil {
		return err
	}

	result, err := r.playlists.DeletePlaylist(ctx, name, user.ID())
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	if !result.Deleted {
		return r.writePlain("No playlist called %s\n", name)
	}
	r.writeNotices(result)
	return nil
}

// PlaylistRate overwrites the rating of a known track.
func (r *Runner) PlaylistRate(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	if title == "" {
		return fmt.Errorf("%w: track title is required", shared.ErrMissingArgument)
	}

	rating, err := models.ParseRating(cmd.StringArg("rating"))
	if err != nil {
		return err
	}

	if err := r.open(ctx, cmd); err != nil {
		return err
	}

	result, err := r.playlists.UpdateRating(ctx, title, rating)
	if err != nil {
		return fmt.Errorf("failed to rate %s: %w", title, err)
	}

	if len(result.Notices) == 0 {
		return r.writePlain("No track called %s\n", title)
	}
	r.writeNotices(result)
	return nil
}

// PlaylistExport writes one of the owner's playlists to disk in the chosen format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	name, err := playlistArg(cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	user, err := r.openAs(ctx, cmd)
	if err != nil {
		return err
	}

	playlist, err := r.playlists.GetPlaylistByName(ctx, name, user.ID())
	if err != nil {
		return err
	}

	export, err := r.playlists.ExportPlaylist(ctx, playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}
	export.Owner = user.Username()

	base := filepath.Join(cmd.String("output"), formatter.Basename(export))

	var files []string
	switch format {
	case formatter.FormatCSV:
		res, err := formatter.WriteCSVExport(export, base)
		if err != nil {
			return err
		}
		files = []string{res.TracksFile, res.MetadataFile}
	case formatter.FormatMarkdown:
		opts := formatter.MarkdownOpts{OutputDir: base, Client: r.httpClient}
		if cmd.Bool("cover") && len(export.Tracks) > 0 {
			first := export.Tracks[0]
			if info, err := r.metadata.TrackInfo(ctx, first.Title, first.Artist); err == nil {
				opts.ImageURL = info.AlbumArtURL
			} else {
				r.logger.Warn("no cover found", "playlist", export.Name, "error", err)
			}
		}
		res, err := formatter.WriteMarkdownExport(ctx, export, opts)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			r.logger.Warn("cover image skipped", "playlist", export.Name, "error", w)
		}
		files = res.Files
	case formatter.FormatText:
		path, err := formatter.WriteTextExport(export, base+"_tracks.txt")
		if err != nil {
			return err
		}
		files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(export, base+".json")
		if err != nil {
			return err
		}
		files = []string{path}
	}

	r.writePlain("✓ Exported %s (%d tracks)\n", export.Name, len(export.Tracks))
	for _, f := range files {
		r.writePlain("  → %s\n", f)
	}
	return nil
}

// PlaylistSeed fills a playlist from the current top tracks chart.
func (r *Runner) PlaylistSeed(ctx context.Context, cmd *cli.Command) error {
	name, err := playlistArg(cmd)
	if err != nil {
		return err
	}

	rating, err := models.NewRating(cmd.Int("rating"))
	if err != nil {
		return err
	}

	user, err := r.openAs(ctx, cmd)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 20)
	done := r.followProgress(progressCh)

	result, err := r.engine.SeedFromChart(ctx, progressCh, user.ID(), name, rating)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("Seeded %s: %d added, %d already present, %d failed",
		result.Playlist.Name(), result.Added, result.Existing, len(result.Failed))
	for _, f := range result.Failed {
		r.writePlain("  ✗ %s: %v\n", f.Track.Label(), f.Error)
	}
	return nil
}

// Export runs a concurrent export of the owner's playlists and prints a summary.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	user, err := r.openAs(ctx, cmd)
	if err != nil {
		return err
	}

	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = fmt.Sprintf("tracklist_export_%d", time.Now().Unix())
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.followProgress(progressCh)

	result, err := r.engine.BulkExport(ctx, progressCh, user.ID(), tasks.BulkExportOpts{
		Format:      format,
		OutputDir:   outputDir,
		PlaylistIDs: cmd.StringSlice("playlist"),
		NumWorkers:  cmd.Int("workers"),
		RateLimit:   r.config.Credentials.LastFM.RateLimit,
		Covers:      cmd.Bool("covers"),
		Client:      r.httpClient,
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlainHeader("Export Summary")
	r.writePlain("Total:      %d\n", result.TotalPlaylists)
	r.writePlain("Successful: %d\n", result.SuccessfulExports)
	r.writePlain("Failed:     %d\n", result.FailedExports)
	r.writePlain("Output:     %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest:   %s\n", result.ManifestPath)
	}
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %s\n", res.PlaylistName, res.ErrorMessage)
		}
	}
	return nil
}

// followProgress prints updates until ch is closed, then closes the returned channel.
func (r *Runner) followProgress(ch <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			switch update.Phase {
			case tasks.FetchPlaylists, tasks.FetchChart:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			default:
				if update.Total > 0 {
					r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
				} else {
					r.writePlain("  %s\n", update.Message)
				}
			}
		}
	}()
	return done
}

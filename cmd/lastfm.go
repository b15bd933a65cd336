package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tracklist/internal/shared"
)

// LastFMTop prints the current top tracks chart.
func (r *Runner) LastFMTop(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx, cmd); err != nil {
		return err
	}

	tracks, err := r.metadata.TopTracks(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch top tracks: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlain("Top %d tracks on %s:\n\n", len(tracks), r.metadata.Name())
	for i, t := range tracks {
		r.writePlain("%2d. %s\n", i+1, t.Label())
	}
	return nil
}

// LastFMArtist prints an artist's biography and similar artists.
func (r *Runner) LastFMArtist(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrMissingArgument)
	}

	if err := r.open(ctx, cmd); err != nil {
		return err
	}

	info, err := r.metadata.ArtistInfo(ctx, name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, cmd.Bool("pretty"))
	}

	r.writePlainHeader(info.Name)
	r.writePlain("%s\n", info.Bio)
	if info.ImageURL != "" {
		r.writePlain("\nImage: %s\n", info.ImageURL)
	}
	if len(info.Similar) > 0 {
		r.writePlainln("Similar artists:")
		for _, s := range info.Similar {
			r.writePlain("  • %s\n", s)
		}
	}
	return nil
}

// LastFMTrack prints a track's summary and album art.
func (r *Runner) LastFMTrack(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	artist := strings.TrimSpace(cmd.StringArg("artist"))
	if title == "" || artist == "" {
		return fmt.Errorf("%w: track title and artist are required", shared.ErrMissingArgument)
	}

	if err := r.open(ctx, cmd); err != nil {
		return err
	}

	info, err := r.metadata.TrackInfo(ctx, title, artist)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, cmd.Bool("pretty"))
	}

	r.writePlainHeader(info.Name + " by " + info.Artist)
	r.writePlain("%s\n", info.Summary)
	if info.AlbumArtURL != "" {
		r.writePlain("\nAlbum art: %s\n", info.AlbumArtURL)
	}
	if info.URL != "" {
		r.writePlain("Link: %s\n", info.URL)
	}
	return nil
}

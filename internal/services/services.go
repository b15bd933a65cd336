package services

import (
	"context"
)

// MetadataService looks up artists and tracks in an external music catalogue.
type MetadataService interface {
	// TopTracks returns up to ten of the most played tracks for the configured country, in upstream order.
	TopTracks(ctx context.Context) ([]TopTrack, error)

	// ArtistInfo returns the biography, image and similar artists for name.
	ArtistInfo(ctx context.Context, name string) (*ArtistInfo, error)

	// TrackInfo returns the summary and album art for title by artist.
	TrackInfo(ctx context.Context, title, artist string) (*TrackInfo, error)

	// Name returns the name of the catalogue (e.g. "Last.fm")
	Name() string
}

// TopTrack is a (track, artist) pair from a chart.
type TopTrack struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// Label renders the pair as "<track> - <artist>".
func (t TopTrack) Label() string {
	return t.Name + " - " + t.Artist
}

// ArtistInfo is the cleaned result of an artist lookup.
type ArtistInfo struct {
	Name     string   `json:"name"`
	Bio      string   `json:"bio"`
	ImageURL string   `json:"image_url"`
	Similar  []string `json:"similar"`
}

// TrackInfo is the cleaned result of a track lookup.
type TrackInfo struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Summary     string `json:"summary"`
	AlbumArtURL string `json:"album_art_url"`
	URL         string `json:"url"`
}

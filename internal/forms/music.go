package forms

import (
	"net/url"

	"github.com/desertthunder/tracklist/internal/models"
)

// ArtistLookup asks for an artist to look up.
type ArtistLookup struct {
	Artist string
}

func ArtistLookupFromValues(values url.Values) ArtistLookup {
	return ArtistLookup{Artist: value(values, "artist")}
}

func (f ArtistLookup) Validate() *Validation {
	v := &Validation{}
	v.required("artist", f.Artist, "An artist name is required!")
	return v
}

func (ArtistLookup) Describe() []Field {
	return []Field{
		{Name: "artist", Label: "Enter the name of the artist you want to learn more about: ", Type: "text", Required: true},
	}
}

// TrackLookup asks for a track and its artist.
type TrackLookup struct {
	Track  string
	Artist string
}

func TrackLookupFromValues(values url.Values) TrackLookup {
	return TrackLookup{Track: value(values, "track"), Artist: value(values, "artist")}
}

func (f TrackLookup) Validate() *Validation {
	v := &Validation{}
	v.required("track", f.Track, "A track name is required!")
	v.required("artist", f.Artist, "An artist name is required!")
	return v
}

func (TrackLookup) Describe() []Field {
	return []Field{
		{Name: "track", Label: "What is the name of the song you want to learn more about? ", Type: "text", Required: true},
		{Name: "artist", Label: "What is the name of the artist whose song you are looking for? ", Type: "text", Required: true},
	}
}

// CreatePlaylist names a new playlist.
type CreatePlaylist struct {
	Name string
}

func CreatePlaylistFromValues(values url.Values) CreatePlaylist {
	return CreatePlaylist{Name: value(values, "name")}
}

func (f CreatePlaylist) Validate() *Validation {
	v := &Validation{}
	if v.required("name", f.Name, "A playlist name is required!") {
		v.maxLength("name", f.Name)
	}
	return v
}

func (CreatePlaylist) Describe() []Field {
	return []Field{
		{Name: "name", Label: "Please enter the name of the playlist you would like to create: ", Type: "text", Required: true},
	}
}

// AddTrack picks one of the user's playlists and rates the track being added.
type AddTrack struct {
	PlaylistPick string
	Rating       models.Rating
	RatingInput  string
}

func AddTrackFromValues(values url.Values) AddTrack {
	return AddTrack{PlaylistPick: value(values, "playlist_pick"), RatingInput: value(values, "rating")}
}

// Validate checks the pick against choices, the owner's playlists, and parses the rating.
func (f *AddTrack) Validate(choices []Choice) *Validation {
	v := &Validation{}

	if v.required("playlist_pick", f.PlaylistPick, "Please pick a playlist.") {
		found := false
		for _, c := range choices {
			if c.Value == f.PlaylistPick {
				found = true
				break
			}
		}
		if !found {
			v.Add("playlist_pick", CodeInvalidChoice, "Not a valid choice")
		}
	}

	f.Rating = v.rating("rating", f.RatingInput)
	return v
}

func (AddTrack) Describe(choices []Choice) []Field {
	return []Field{
		{Name: "playlist_pick", Label: "Love this track? Add it to one of your playlists: ", Type: "select", Required: true, Choices: choices},
		{Name: "rating", Label: "What rating would you give this song? ", Type: "number", Required: true},
	}
}

// UpdateRating sets a new rating for a track.
type UpdateRating struct {
	Rating      models.Rating
	RatingInput string
}

func UpdateRatingFromValues(values url.Values) UpdateRating {
	return UpdateRating{RatingInput: value(values, "new_rating")}
}

func (f *UpdateRating) Validate() *Validation {
	v := &Validation{}
	f.Rating = v.rating("new_rating", f.RatingInput)
	return v
}

func (UpdateRating) Describe() []Field {
	return []Field{
		{Name: "new_rating", Label: "What would you like the new rating of this song to be? ", Type: "number", Required: true},
	}
}

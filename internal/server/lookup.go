package server

import (
	"net/http"

	"github.com/desertthunder/tracklist/internal/forms"
)

const (
	artistNotFound = "Sorry, we could not find the artist you are looking for - make sure your spelling and punctuation is correct!"
	trackNotFound  = "Sorry, we could not find the track you were looking for"
)

// searchArtist shows the artist form, or looks the artist up when one is given.
func (a *App) searchArtist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respond(w, http.StatusBadRequest, nil, "Malformed form body")
		return
	}

	form := forms.ArtistLookupFromValues(r.Form)
	if form.Artist == "" {
		if r.Method == http.MethodPost {
			respondInvalid(w, http.StatusBadRequest, form.Validate())
			return
		}
		respond(w, http.StatusOK, map[string]any{"fields": form.Describe()})
		return
	}
	a.lookupArtist(w, r, form.Artist)
}

func (a *App) artistResult(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respond(w, http.StatusBadRequest, nil, "Malformed form body")
		return
	}

	form := forms.ArtistLookupFromValues(r.Form)
	if v := form.Validate(); !v.Valid() {
		writeJSON(w, http.StatusBadRequest, Envelope{Notices: v.Messages(), Errors: v.Errors})
		return
	}
	a.lookupArtist(w, r, form.Artist)
}

func (a *App) lookupArtist(w http.ResponseWriter, r *http.Request, name string) {
	info, err := a.deps.Metadata.ArtistInfo(r.Context(), name)
	if err != nil {
		a.deps.Logger.Warn("artist lookup failed", "artist", name, "error", err)
		respond(w, http.StatusNotFound, nil, artistNotFound)
		return
	}
	respond(w, http.StatusOK, map[string]any{"artist": info})
}

// searchTrack shows the track form, or looks the track up when both fields are given.
func (a *App) searchTrack(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respond(w, http.StatusBadRequest, nil, "Malformed form body")
		return
	}

	form := forms.TrackLookupFromValues(r.Form)
	if form.Track == "" && form.Artist == "" && r.Method == http.MethodGet {
		respond(w, http.StatusOK, map[string]any{"fields": form.Describe()})
		return
	}
	if v := form.Validate(); !v.Valid() {
		respondInvalid(w, http.StatusBadRequest, v)
		return
	}

	info, err := a.deps.Metadata.TrackInfo(r.Context(), form.Track, form.Artist)
	if err != nil {
		a.deps.Logger.Warn("track lookup failed", "track", form.Track, "artist", form.Artist, "error", err)
		respond(w, http.StatusNotFound, nil, trackNotFound)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"track":   info,
		"add_url": "/add_track/" + pathEscape(form.Artist) + "/" + pathEscape(form.Track),
	})
}

type topSong struct {
	Name string `json:"name"`
}

// topSongs answers the chart widget. Failures yield an empty list.
func (a *App) topSongs(w http.ResponseWriter, r *http.Request) {
	songs := []topSong{}

	top, err := a.deps.Metadata.TopTracks(r.Context())
	if err != nil {
		a.deps.Logger.Warn("top tracks failed", "error", err)
		top = nil
	}
	for _, t := range top {
		songs = append(songs, topSong{Name: t.Label()})
	}

	writeJSON(w, http.StatusOK, map[string][]topSong{"topsongs": songs})
}

package server

import (
	"errors"
	"net/http"

	"github.com/desertthunder/tracklist/internal/forms"
	"github.com/desertthunder/tracklist/internal/library"
	"github.com/desertthunder/tracklist/internal/shared"
)

func (a *App) createPlaylist(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		respond(w, http.StatusOK, map[string]any{"fields": forms.CreatePlaylist{}.Describe()})
		return
	}

	if err := r.ParseForm(); err != nil {
		respond(w, http.StatusBadRequest, nil, "Malformed form body")
		return
	}

	form := forms.CreatePlaylistFromValues(r.PostForm)
	if v := form.Validate(); !v.Valid() {
		respondInvalid(w, http.StatusBadRequest, v)
		return
	}

	result, err := a.deps.Playlists.GetOrCreatePlaylist(r.Context(), form.Name, identity(r).UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respond(w, status, map[string]any{"playlist": result.Playlist, "created": result.Created}, notices(result)...)
}

// playlists lists the caller's playlists. POST with name deletes one.
func (a *App) playlists(w http.ResponseWriter, r *http.Request) {
	owner := identity(r).UserID

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			respond(w, http.StatusBadRequest, nil, "Malformed form body")
			return
		}
		name := r.PostForm.Get("name")
		if name == "" {
			v := &forms.Validation{}
			v.Add("name", forms.CodeRequired, "A playlist name is required!")
			respondInvalid(w, http.StatusBadRequest, v)
			return
		}
		a.deleteByName(w, r, name)
		return
	}

	playlists, err := a.deps.Playlists.ListPlaylists(r.Context(), owner)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"playlists": playlists})
}

func (a *App) playlist(w http.ResponseWriter, r *http.Request) {
	id := Vars(r)["id"]

	playlist, err := a.deps.Playlists.GetPlaylistByID(r.Context(), id, identity(r).UserID)
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		respond(w, http.StatusNotFound, nil, "Playlist not found")
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}

	tracks, err := a.deps.Playlists.ListPlaylistTracks(r.Context(), playlist.ID())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"playlist": playlist, "tracks": tracks})
}

func (a *App) addTrack(w http.ResponseWriter, r *http.Request) {
	vars := Vars(r)
	artist, title := vars["artist"], vars["track"]
	owner := identity(r).UserID

	owned, err := a.deps.Playlists.ListPlaylists(r.Context(), owner)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	choices := make([]forms.Choice, len(owned))
	for i, p := range owned {
		choices[i] = forms.Choice{Value: p.ID(), Label: p.Name()}
	}

	form := forms.AddTrackFromValues(nil)
	if r.Method == http.MethodGet {
		respond(w, http.StatusOK, map[string]any{"artist": artist, "track": title, "fields": form.Describe(choices)})
		return
	}

	if err := r.ParseForm(); err != nil {
		respond(w, http.StatusBadRequest, nil, "Malformed form body")
		return
	}
	form = forms.AddTrackFromValues(r.PostForm)
	if v := form.Validate(choices); !v.Valid() {
		respondInvalid(w, http.StatusBadRequest, v)
		return
	}

	playlist, err := a.deps.Playlists.GetPlaylistByID(r.Context(), form.PlaylistPick, owner)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	result, err := a.deps.Playlists.AddTrackToPlaylist(r.Context(), library.AddTrack{
		Title:    title,
		Artist:   artist,
		Playlist: playlist.Name(),
		Rating:   form.Rating,
		OwnerID:  owner,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"playlist": result.Playlist,
		"track":    result.Track,
		"added":    result.Added,
	}, notices(result)...)
}

func (a *App) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	a.deleteByName(w, r, Vars(r)["name"])
}

// deleteByName removes the caller's playlist. A missing playlist is a silent no-op.
func (a *App) deleteByName(w http.ResponseWriter, r *http.Request, name string) {
	result, err := a.deps.Playlists.DeletePlaylist(r.Context(), name, identity(r).UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"deleted": result.Deleted, "next": "/playlists"}, notices(result)...)
}

func (a *App) updateRating(w http.ResponseWriter, r *http.Request) {
	title := Vars(r)["title"]

	if r.Method == http.MethodGet {
		respond(w, http.StatusOK, map[string]any{"title": title, "fields": forms.UpdateRating{}.Describe()})
		return
	}

	if err := r.ParseForm(); err != nil {
		respond(w, http.StatusBadRequest, nil, "Malformed form body")
		return
	}

	form := forms.UpdateRatingFromValues(r.PostForm)
	if v := form.Validate(); !v.Valid() {
		respondInvalid(w, http.StatusBadRequest, v)
		return
	}

	result, err := a.deps.Playlists.UpdateRating(r.Context(), title, form.Rating)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"title": title, "updated": len(result.Notices) > 0}, notices(result)...)
}

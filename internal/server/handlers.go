package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/desertthunder/tracklist/internal/auth"
	"github.com/desertthunder/tracklist/internal/forms"
	"github.com/desertthunder/tracklist/internal/shared"
)

const serviceName = "tracklist"

// App holds the route handlers.
type App struct {
	deps Deps
}

// Register mounts every route on router.
func (a *App) Register(router Router) {
	session := func(h http.HandlerFunc) http.Handler { return RequireSession(h) }

	router.Handle("/", http.HandlerFunc(a.index), http.MethodGet)
	router.Handle("/login", http.HandlerFunc(a.login), http.MethodGet, http.MethodPost)
	router.Handle("/logout", session(a.logout), http.MethodGet)
	router.Handle("/register", http.HandlerFunc(a.register), http.MethodGet, http.MethodPost)

	router.Handle("/searchartist", session(a.searchArtist), http.MethodGet, http.MethodPost)
	router.Handle("/artistresult", session(a.artistResult), http.MethodGet, http.MethodPost)
	router.Handle("/searchtrack", session(a.searchTrack), http.MethodGet, http.MethodPost)
	router.Handle("/ajax", http.HandlerFunc(a.topSongs), http.MethodGet)

	router.Handle("/createplaylist", session(a.createPlaylist), http.MethodGet, http.MethodPost)
	router.Handle("/playlists", session(a.playlists), http.MethodGet, http.MethodPost)
	router.Handle("/playlists/{id}", session(a.playlist), http.MethodGet)
	router.Handle("/add_track/{artist}/{track}", session(a.addTrack), http.MethodGet, http.MethodPost)
	router.Handle("/delete/{name}", session(a.deletePlaylist), http.MethodGet, http.MethodPost)
	router.Handle("/update/{title}", session(a.updateRating), http.MethodGet, http.MethodPost)

	router.NotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusNotFound, nil, "Page not found")
	}))
	router.MethodNotAllowed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusMethodNotAllowed, nil, "Method not allowed")
	}))
}

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"service": serviceName, "user": nil}
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		data["user"] = id
	}
	respond(w, http.StatusOK, data)
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))

	if r.Method == http.MethodGet {
		respond(w, http.StatusOK, map[string]any{"fields": forms.Login{}.Describe(), "next": next})
		return
	}

	if err := r.ParseForm(); err != nil {
		respond(w, http.StatusBadRequest, nil, "Malformed form body")
		return
	}

	form := forms.LoginFromValues(r.PostForm)
	if v := form.Validate(); !v.Valid() {
		respondInvalid(w, http.StatusBadRequest, v)
		return
	}

	user, err := a.deps.Auth.Login(r.Context(), form.Email, form.Password)
	if errors.Is(err, shared.ErrInvalidCredentials) {
		respond(w, http.StatusUnauthorized, nil, "Invalid username or password.")
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}

	token, expires, err := a.deps.Sessions.Issue(user)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	http.SetCookie(w, a.deps.Sessions.Cookie(token, expires, form.RememberMe))
	respond(w, http.StatusOK, map[string]any{"user": user, "next": next})
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, a.deps.Sessions.ClearCookie())
	respond(w, http.StatusOK, map[string]string{"next": "/"}, "You have been logged out")
}

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		respond(w, http.StatusOK, map[string]any{"fields": forms.Registration{}.Describe()})
		return
	}

	if err := r.ParseForm(); err != nil {
		respond(w, http.StatusBadRequest, nil, "Malformed form body")
		return
	}

	form := forms.RegistrationFromValues(r.PostForm)
	v, err := form.Validate(r.Context(), a.deps.Auth)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !v.Valid() {
		status := http.StatusBadRequest
		if v.Has("email", forms.CodeTaken) || v.Has("username", forms.CodeTaken) {
			status = http.StatusConflict
		}
		respondInvalid(w, status, v)
		return
	}

	user, err := a.deps.Auth.Register(r.Context(), form.Username, form.Email, form.Password)
	if errors.Is(err, shared.ErrDuplicate) {
		conflict := &forms.Validation{}
		conflict.Add("email", forms.CodeTaken, "Email or username already registered")
		respondInvalid(w, http.StatusConflict, conflict)
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}

	a.deps.Logger.Info("registered user", "username", user.Username())
	respond(w, http.StatusCreated, map[string]any{"user": user, "next": "/login"}, "You may now login!")
}

// fail maps an unexpected error onto a status code.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidRating):
		respond(w, http.StatusBadRequest, nil, err.Error())
	case errors.Is(err, shared.ErrPlaylistNotFound), errors.Is(err, shared.ErrUserNotFound):
		respond(w, http.StatusNotFound, nil, "Not found")
	default:
		a.deps.Logger.Error("request failed", "path", r.URL.Path, "error", err)
		respond(w, http.StatusInternalServerError, nil, "Internal server error")
	}
}

// safeNext keeps only local redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}

package server

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tracklist/internal/auth"
	"github.com/desertthunder/tracklist/internal/shared"
)

const loginRequired = "Please log in to access this page."

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.written = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.written = true
	return r.ResponseWriter.Write(b)
}

// Logging logs method, path, status and duration of every request.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// Recovery turns a panicking handler into a 500 response unless it already started writing one.
func Recovery(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if rv := recover(); rv != nil {
					logger.Error("handler panicked", "path", r.URL.Path, "panic", rv)
					// A response already under way cannot be replaced.
					if !rec.written {
						respond(w, http.StatusInternalServerError, nil, "Internal server error")
					}
				}
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// LoadSession attaches the [auth.Identity] of a valid session cookie to the request context.
//
// Requests without a cookie, or with an invalid or expired one, pass through anonymously.
func LoadSession(sessions *auth.Sessions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions == nil {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(sessions.CookieName())
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := sessions.Verify(cookie.Value)
			if err != nil {
				if errors.Is(err, shared.ErrTokenExpired) {
					http.SetCookie(w, sessions.ClearCookie())
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			respond(w, http.StatusUnauthorized, map[string]string{"login": "/login?next=" + url.QueryEscape(r.URL.RequestURI())}, loginRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

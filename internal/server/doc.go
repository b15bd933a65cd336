// Package server provides the HTTP surface of tracklist: routing, middleware and JSON handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter]
// implements it on top of gorilla/mux so routes can declare path variables
// (/playlists/{id}) and accepted methods.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// Middleware must be registered with Use before the routes it should wrap.
//
// # Sessions
//
// [LoadSession] runs on every request and places the caller's [auth.Identity] in the request
// context when a valid session cookie is present. [RequireSession] rejects requests without one.
// Handlers never consult global state for the current user; they pass Identity.UserID on.
//
// # Responses
//
// Every handler except /ajax answers with the [Envelope] JSON shape:
//
//	{"notices": [...], "errors": [...], "data": ...}
//
// GET on a form route returns the form's field descriptors so a renderer can draw it.
package server
